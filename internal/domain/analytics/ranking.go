package analytics

import (
	"time"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// BestsellerNone es el centinela cuando no hubo compras en el mes en curso.
const BestsellerNone = "N/A"

// Ranked ganador de un conteo (persona o producto).
type Ranked struct {
	Name  string
	Count int
}

// tally acumula un conteo junto con la primera compra para desempatar.
type tally struct {
	name  string
	count int
	first time.Time
}

type tallies struct {
	index map[string]int
	list  []tally
}

func newTallies() *tallies { return &tallies{index: make(map[string]int)} }

func (t *tallies) add(name string, ts time.Time) {
	i, ok := t.index[name]
	if !ok {
		t.index[name] = len(t.list)
		t.list = append(t.list, tally{name: name, count: 1, first: ts})
		return
	}
	t.list[i].count++
	if ts.Before(t.list[i].first) {
		t.list[i].first = ts
	}
}

// winner: mayor conteo; empate → primera compra más antigua; empate → nombre menor.
func (t *tallies) winner() (Ranked, bool) {
	if len(t.list) == 0 {
		return Ranked{}, false
	}
	best := t.list[0]
	for _, c := range t.list[1:] {
		switch {
		case c.count > best.count:
			best = c
		case c.count < best.count:
		case c.first.Before(best.first):
			best = c
		case c.first.Equal(best.first) && c.name < best.name:
			best = c
		}
	}
	return Ranked{Name: best.name, Count: best.count}, true
}

// RoyalBuyer devuelve la persona con más compras de todos los tiempos.
// ok es false si el ledger no tiene compras.
func RoyalBuyer(rows []entity.LedgerRow) (winner Ranked, ok bool) {
	t := newTallies()
	for _, r := range rows {
		if r.IsPurchase() {
			t.add(r.Buyer(), *r.Timestamp)
		}
	}
	return t.winner()
}

// BestsellerOfMonth devuelve el producto más comprado en el mes calendario de now
// (año y mes, en la zona horaria de now). Sin compras en el mes devuelve
// Ranked{Name: BestsellerNone}.
func BestsellerOfMonth(rows []entity.LedgerRow, now time.Time) Ranked {
	year, month := now.Year(), now.Month()
	t := newTallies()
	for _, r := range rows {
		if !r.IsPurchase() {
			continue
		}
		ts := r.Timestamp.In(now.Location())
		if ts.Year() != year || ts.Month() != month {
			continue
		}
		t.add(r.ProductName, ts)
	}
	w, ok := t.winner()
	if !ok {
		return Ranked{Name: BestsellerNone}
	}
	return w
}
