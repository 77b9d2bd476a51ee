package domain

import (
	"errors"
	"fmt"
)

// Tipos de error del motor de compras (sin dependencias externas).
// Cada *Error apunta a uno de estos sentinelas como Kind, de modo que errors.Is(err, ErrConflict) funciona.
var (
	ErrValidation   = errors.New("entrada inválida")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrInvalidState = errors.New("operación no permitida en el estado actual")
	ErrStorage      = errors.New("error de almacenamiento")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// Error es un error de negocio tipado: Kind es uno de los sentinelas anteriores y Detail un texto legible.
// Err conserva la causa (p. ej. el error de pgx en un StorageError).
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap expone tanto el sentinela como la causa para errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation construye un ValidationError.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}

// NotFound construye un NotFoundError.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Detail: fmt.Sprintf(format, args...)}
}

// Conflict construye un ConflictError.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Detail: fmt.Sprintf(format, args...)}
}

// InvalidState construye un InvalidStateError.
func InvalidState(format string, args ...any) error {
	return &Error{Kind: ErrInvalidState, Detail: fmt.Sprintf(format, args...)}
}

// Storage envuelve un fallo del almacén. Si err ya es un error de negocio tipado se devuelve tal cual.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) || IsKind(err) {
		return err
	}
	return &Error{Kind: ErrStorage, Err: err}
}

// IsKind indica si err pertenece a alguno de los tipos de error del motor.
func IsKind(err error) bool {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInvalidState, ErrStorage, ErrUnauthorized, ErrForbidden} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// Detail devuelve el texto legible del error de negocio, o el mensaje completo si no es tipado.
func Detail(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return err.Error()
}
