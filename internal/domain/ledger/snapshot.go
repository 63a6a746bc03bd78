package ledger

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// Snapshot es la materialización inmutable del ledger en un tick de refresco.
// Nadie modifica Rows después de NewSnapshot; los lectores pueden compartirlo sin locks.
type Snapshot struct {
	ID        string
	LoadedAt  time.Time
	Purchases int
	Products  int
	rows      []entity.LedgerRow
}

// NewSnapshot copia rows y asigna un ID nuevo.
func NewSnapshot(rows []entity.LedgerRow, purchases, products int, loadedAt time.Time) *Snapshot {
	own := cloneRows(rows)
	return &Snapshot{
		ID:        uuid.NewString(),
		LoadedAt:  loadedAt,
		Purchases: purchases,
		Products:  products,
		rows:      own,
	}
}

// Rows devuelve una copia profunda de las filas; modificarla no altera el snapshot.
func (s *Snapshot) Rows() []entity.LedgerRow { return cloneRows(s.rows) }

// cloneRows copia también los campos puntero de cada fila.
func cloneRows(rows []entity.LedgerRow) []entity.LedgerRow {
	out := make([]entity.LedgerRow, len(rows))
	for i, r := range rows {
		if r.Timestamp != nil {
			ts := *r.Timestamp
			r.Timestamp = &ts
		}
		if r.BuyerName != nil {
			name := *r.BuyerName
			r.BuyerName = &name
		}
		if r.Paid != nil {
			paid := *r.Paid
			r.Paid = &paid
		}
		out[i] = r
	}
	return out
}

// Len cantidad de filas del ledger.
func (s *Snapshot) Len() int { return len(s.rows) }

// Store guarda el snapshot publicado. Swap reemplaza el puntero completo;
// los lectores ven el snapshot anterior o el nuevo, nunca una mezcla.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore construye un store vacío.
func NewStore() *Store { return &Store{} }

// Latest devuelve el snapshot vigente o nil si todavía no hubo un refresco exitoso.
func (s *Store) Latest() *Snapshot { return s.current.Load() }

// Swap publica next y devuelve el snapshot reemplazado.
func (s *Store) Swap(next *Snapshot) *Snapshot { return s.current.Swap(next) }
