package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// RevenueSummary ingresos acumulados desde la primera compra registrada.
// Since es nil cuando el ledger no tiene compras.
type RevenueSummary struct {
	Since     *time.Time
	Total     decimal.Decimal
	Purchases int
}

// Revenue suma el precio de todas las compras (pagadas o no).
// Los productos nunca comprados se excluyen, no cuentan como cero.
func Revenue(rows []entity.LedgerRow) RevenueSummary {
	out := RevenueSummary{Total: decimal.Zero}
	var first time.Time
	for _, r := range rows {
		if !r.IsPurchase() {
			continue
		}
		if out.Purchases == 0 || r.Timestamp.Before(first) {
			first = *r.Timestamp
		}
		out.Total = out.Total.Add(r.UnitPrice)
		out.Purchases++
	}
	if out.Purchases > 0 {
		since := dateOnly(first)
		out.Since = &since
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
