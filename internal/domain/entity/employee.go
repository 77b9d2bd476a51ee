package entity

import "fmt"

// Roles de actor que entrega el colaborador de autenticación.
const (
	RoleEmpleado = "Empleado"
	RoleJefe     = "Jefe"
	RoleAuxiliar = "Auxiliar"
	RoleGerencia = "Gerencia"
)

// AllRoles los cuatro roles del flujo de compras.
var AllRoles = []string{RoleEmpleado, RoleJefe, RoleAuxiliar, RoleGerencia}

// ParseRole valida el claim de rol (comparación exacta).
func ParseRole(s string) (string, error) {
	for _, r := range AllRoles {
		if r == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("rol desconocido: %q", s)
}

// Employee empleado del catálogo (solicitante, jefe, auxiliar o gerente).
type Employee struct {
	ID   int64
	Name string
	Role string
}
