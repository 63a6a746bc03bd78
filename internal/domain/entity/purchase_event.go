package entity

import "time"

// PurchaseEvent representa una compra registrada en el log (solo se agregan filas).
// Paid es false hasta que la deuda se salda explícitamente.
type PurchaseEvent struct {
	Timestamp time.Time
	BuyerName string
	Barcode   string
	Paid      bool
}
