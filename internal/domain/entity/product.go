package entity

// Product producto del catálogo (mantenido por el colaborador de catálogo; aquí solo lectura).
type Product struct {
	ID       int64
	Name     string
	Category string
}
