package entity

// Supplier proveedor del catálogo.
type Supplier struct {
	ID    int64
	Name  string
	Email string
	Phone string
}
