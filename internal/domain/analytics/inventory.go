package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// InventoryItem stock restante de un producto del catálogo.
type InventoryItem struct {
	ProductName    string
	StockRemaining int
	UnitPrice      decimal.Decimal
}

// Inventory agrupa por nombre de producto tomando stock y precio de la primera fila
// (son datos de catálogo, iguales en todas las filas del producto).
// Incluye productos nunca comprados. Orden: nombre descendente (orden de apilado del gráfico).
func Inventory(rows []entity.LedgerRow) []InventoryItem {
	seen := make(map[string]bool)
	items := make([]InventoryItem, 0)
	for _, r := range rows {
		if seen[r.ProductName] {
			continue
		}
		seen[r.ProductName] = true
		items = append(items, InventoryItem{
			ProductName:    r.ProductName,
			StockRemaining: r.StockRemaining,
			UnitPrice:      r.UnitPrice,
		})
	}
	sort.Slice(items, func(a, b int) bool { return items[a].ProductName > items[b].ProductName })
	return items
}
