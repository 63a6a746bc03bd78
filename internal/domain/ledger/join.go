// Package ledger contiene el join de compras contra catálogo y el snapshot
// inmutable que consumen todas las vistas.
package ledger

import (
	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// Join realiza el full outer join de compras contra productos por código de barras.
//
// Orden de salida: una fila por compra (orden del log) seguida de una fila por
// cada producto nunca comprado (orden del catálogo). Una compra cuyo código no
// existe en el catálogo aborta el join con *domain.OrphanPurchaseError.
// Un código duplicado en el catálogo es un error de esquema.
func Join(purchases []entity.PurchaseEvent, products []entity.Product) ([]entity.LedgerRow, error) {
	byBarcode := make(map[string]int, len(products))
	for i, p := range products {
		if _, dup := byBarcode[p.Barcode]; dup {
			return nil, domain.SchemaErrorf("catalog", 0, "código de barras duplicado %q", p.Barcode)
		}
		byBarcode[p.Barcode] = i
	}

	rows := make([]entity.LedgerRow, 0, len(purchases)+len(products))
	purchased := make([]bool, len(products))
	var orphans []string
	seenOrphan := make(map[string]bool)

	for _, ev := range purchases {
		idx, ok := byBarcode[ev.Barcode]
		if !ok {
			if !seenOrphan[ev.Barcode] {
				seenOrphan[ev.Barcode] = true
				orphans = append(orphans, ev.Barcode)
			}
			continue
		}
		purchased[idx] = true
		p := products[idx]

		ts := ev.Timestamp
		buyer := ev.BuyerName
		paid := ev.Paid
		rows = append(rows, entity.LedgerRow{
			Timestamp:      &ts,
			BuyerName:      &buyer,
			Barcode:        ev.Barcode,
			Paid:           &paid,
			ProductName:    p.Name,
			UnitPrice:      p.UnitPrice,
			StockRemaining: p.StockRemaining,
		})
	}
	if len(orphans) > 0 {
		return nil, &domain.OrphanPurchaseError{Barcodes: orphans}
	}

	// Productos sin compras: se conservan con campos de compra nulos (inventario completo).
	for i, p := range products {
		if purchased[i] {
			continue
		}
		rows = append(rows, entity.LedgerRow{
			Barcode:        p.Barcode,
			ProductName:    p.Name,
			UnitPrice:      p.UnitPrice,
			StockRemaining: p.StockRemaining,
		})
	}
	return rows, nil
}
