package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrSourceUnavailable = errors.New("fuente de datos no disponible")
	ErrSchema            = errors.New("fila con formato inválido")
	ErrOrphanPurchase    = errors.New("compra con código de barras desconocido")
	ErrNoSnapshot        = errors.New("aún no hay snapshot publicado")
	ErrInvalidInput      = errors.New("entrada inválida")
)

// SourceError describe una falla de lectura o de formato en una fuente concreta.
// Line es 0 cuando la falla no está asociada a una fila (ej. archivo inexistente).
type SourceError struct {
	Source string
	Line   int
	Err    error
}

func (e *SourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// SchemaErrorf construye un SourceError que envuelve ErrSchema.
func SchemaErrorf(source string, line int, format string, args ...any) error {
	return &SourceError{
		Source: source,
		Line:   line,
		Err:    fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...)),
	}
}

// UnavailableError construye un SourceError que envuelve ErrSourceUnavailable.
func UnavailableError(source string, cause error) error {
	return &SourceError{
		Source: source,
		Err:    fmt.Errorf("%w: %v", ErrSourceUnavailable, cause),
	}
}

// OrphanPurchaseError lista los códigos de barras comprados que no existen en el catálogo.
type OrphanPurchaseError struct {
	Barcodes []string
}

func (e *OrphanPurchaseError) Error() string {
	return fmt.Sprintf("%v: %s", ErrOrphanPurchase, strings.Join(e.Barcodes, ", "))
}

func (e *OrphanPurchaseError) Unwrap() error { return ErrOrphanPurchase }
