// Package refresh recarga periódicamente el ledger completo y publica el
// snapshot resultante.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
	"github.com/jhoicas/getraenkekasse/internal/domain/repository"
	"github.com/jhoicas/getraenkekasse/pkg/logger"
)

// DefaultInterval periodicidad del refresco si no se configura otra.
const DefaultInterval = 15 * time.Minute

// ListenerTimeout plazo de cada listener por snapshot publicado.
const ListenerTimeout = 10 * time.Second

// SnapshotListener recibe cada snapshot recién publicado (ej. espejo en Redis).
// Un error del listener se registra pero no invalida el snapshot.
type SnapshotListener interface {
	SnapshotPublished(ctx context.Context, snap *ledger.Snapshot) error
}

// Status estado observable del último refresco.
type Status struct {
	SnapshotID          string
	Ticks               int
	LastAttemptAt       time.Time
	LastSuccessAt       time.Time
	LastFailureAt       time.Time
	LastError           string
	ConsecutiveFailures int
}

// Scheduler dispara Load → Join → Swap en un intervalo fijo.
//
// El primer tick corre al iniciar Run para que haya ledger antes del primer intervalo.
// Los ticks se serializan: un refresco manual y uno periódico nunca se pisan.
// Si un tick falla se conserva el snapshot anterior y el timer sigue corriendo.
type Scheduler struct {
	source    repository.LedgerSource
	store     *ledger.Store
	interval  time.Duration
	log       *logger.Logger
	now       func() time.Time
	listeners []SnapshotListener

	mu     sync.Mutex
	status atomic.Pointer[Status]
}

// Option configura opciones del Scheduler.
type Option func(*Scheduler)

// WithClock reemplaza time.Now (tests, zona horaria fija).
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithListener agrega un listener de publicación.
func WithListener(l SnapshotListener) Option {
	return func(s *Scheduler) { s.listeners = append(s.listeners, l) }
}

// NewScheduler construye el scheduler. interval <= 0 usa DefaultInterval.
func NewScheduler(
	source repository.LedgerSource,
	store *ledger.Store,
	interval time.Duration,
	log *logger.Logger,
	opts ...Option,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Scheduler{
		source:   source,
		store:    store,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.status.Store(&Status{})
	return s
}

// AddListener registra un listener después de construir el scheduler.
func (s *Scheduler) AddListener(l SnapshotListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Interval periodicidad efectiva.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Status devuelve una copia del estado actual.
func (s *Scheduler) Status() Status { return *s.status.Load() }

// Run ejecuta el primer tick inmediatamente y luego uno por intervalo hasta que ctx termine.
// Los errores de cada tick quedan aislados en ese tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info().Dur("interval", s.interval).Msg("scheduler de refresco iniciado")
	_, _ = s.RefreshNow(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler de refresco detenido")
			return
		case <-t.C:
			_, _ = s.RefreshNow(ctx)
		}
	}
}

// RefreshNow corre un tick de forma síncrona y devuelve el snapshot publicado.
// Ante error el snapshot vigente no cambia. Los listeners se notifican fuera del
// lock de ticks, cada uno con un plazo de ListenerTimeout.
func (s *Scheduler) RefreshNow(ctx context.Context) (*ledger.Snapshot, error) {
	snap, listeners, err := s.tick(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range listeners {
		s.notify(ctx, l, snap)
	}
	return snap, nil
}

// tick publica el snapshot bajo el lock y devuelve los listeners a notificar.
func (s *Scheduler) tick(ctx context.Context) (*ledger.Snapshot, []SnapshotListener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	snap, err := s.build(ctx, started)
	if err != nil {
		s.recordFailure(started, err)
		s.log.Error().Err(err).
			Int("consecutive_failures", s.Status().ConsecutiveFailures).
			Msg("refresco fallido, se conserva el snapshot anterior")
		return nil, nil, err
	}

	prev := s.store.Swap(snap)
	s.recordSuccess(started, snap)

	ev := s.log.Info().
		Str("snapshot_id", snap.ID).
		Int("purchases", snap.Purchases).
		Int("products", snap.Products).
		Int("rows", snap.Len()).
		Dur("duration", s.now().Sub(started))
	if prev != nil {
		ev = ev.Str("previous_snapshot_id", prev.ID)
	}
	ev.Msg("snapshot publicado")

	listeners := make([]SnapshotListener, len(s.listeners))
	copy(listeners, s.listeners)
	return snap, listeners, nil
}

func (s *Scheduler) notify(ctx context.Context, l SnapshotListener, snap *ledger.Snapshot) {
	lctx, cancel := context.WithTimeout(ctx, ListenerTimeout)
	defer cancel()
	if err := l.SnapshotPublished(lctx, snap); err != nil {
		s.log.Warn().Err(err).Str("snapshot_id", snap.ID).Msg("listener de snapshot falló")
	}
}

func (s *Scheduler) build(ctx context.Context, at time.Time) (*ledger.Snapshot, error) {
	purchases, products, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: cargar fuentes: %w", err)
	}
	rows, err := ledger.Join(purchases, products)
	if err != nil {
		return nil, fmt.Errorf("refresh: join: %w", err)
	}
	return ledger.NewSnapshot(rows, len(purchases), len(products), at), nil
}

func (s *Scheduler) recordSuccess(at time.Time, snap *ledger.Snapshot) {
	st := s.Status()
	st.Ticks++
	st.SnapshotID = snap.ID
	st.LastAttemptAt = at
	st.LastSuccessAt = at
	st.LastError = ""
	st.ConsecutiveFailures = 0
	s.status.Store(&st)
}

func (s *Scheduler) recordFailure(at time.Time, err error) {
	st := s.Status()
	st.Ticks++
	st.LastAttemptAt = at
	st.LastFailureAt = at
	st.LastError = err.Error()
	st.ConsecutiveFailures++
	s.status.Store(&st)
}
