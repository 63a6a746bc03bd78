package entity

import "github.com/shopspring/decimal"

// Product representa una entrada del catálogo de bebidas.
// Barcode es la clave única; StockRemaining lo mantiene un sistema externo y no se deriva de las compras.
type Product struct {
	ID             string
	Barcode        string
	Name           string
	UnitPrice      decimal.Decimal
	StockRemaining int
}
