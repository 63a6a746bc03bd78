package repository

import (
	"context"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// LedgerSource define el puerto de lectura del log de compras y del catálogo (DIP).
// Las implementaciones son read-only: nunca modifican las fuentes externas.
//
// Load debe devolver ambos conjuntos completos o un error; nunca datos parciales.
// Errores esperados: domain.ErrSourceUnavailable y domain.ErrSchema (envueltos).
type LedgerSource interface {
	Load(ctx context.Context) (purchases []entity.PurchaseEvent, products []entity.Product, err error)
}
