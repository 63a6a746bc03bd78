// Package analytics implementa las vistas derivadas del ledger.
//
// Todas las funciones son puras: reciben las filas del snapshot (y, cuando
// aplica, el instante "ahora") y no leen reloj, archivos ni estado global.
// Las filas sin compra (productos nunca comprados) solo cuentan para el inventario.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// Debt deuda acumulada de una persona.
type Debt struct {
	Name       string
	AmountOwed decimal.Decimal
}

// Debts suma el precio de las compras no pagadas por persona.
// Orden: monto descendente; empates por orden de primera aparición en el ledger.
func Debts(rows []entity.LedgerRow) []Debt {
	index := make(map[string]int)
	debts := make([]Debt, 0)
	for _, r := range rows {
		if !r.IsUnpaid() {
			continue
		}
		name := r.Buyer()
		i, ok := index[name]
		if !ok {
			i = len(debts)
			index[name] = i
			debts = append(debts, Debt{Name: name, AmountOwed: decimal.Zero})
		}
		debts[i].AmountOwed = debts[i].AmountOwed.Add(r.UnitPrice)
	}
	sort.SliceStable(debts, func(a, b int) bool {
		return debts[a].AmountOwed.GreaterThan(debts[b].AmountOwed)
	})
	return debts
}
