package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow es una fila del outer join entre compras y catálogo.
// Timestamp, BuyerName y Paid son nil exactamente en las filas de productos sin compras.
type LedgerRow struct {
	Timestamp      *time.Time
	BuyerName      *string
	Barcode        string
	Paid           *bool
	ProductName    string
	UnitPrice      decimal.Decimal
	StockRemaining int
}

// IsPurchase indica si la fila proviene de una compra (y no de un producto nunca comprado).
func (r LedgerRow) IsPurchase() bool { return r.Timestamp != nil }

// Buyer devuelve el nombre del comprador o "" para filas sin compra.
func (r LedgerRow) Buyer() string {
	if r.BuyerName == nil {
		return ""
	}
	return *r.BuyerName
}

// IsUnpaid indica si la fila es una compra todavía no pagada.
func (r LedgerRow) IsUnpaid() bool {
	return r.IsPurchase() && r.Paid != nil && !*r.Paid
}
