package refresh_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/getraenkekasse/internal/application/refresh"
	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
	"github.com/jhoicas/getraenkekasse/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

// fakeSource devuelve el contenido configurado; err tiene prioridad.
type fakeSource struct {
	mu        sync.Mutex
	purchases []entity.PurchaseEvent
	products  []entity.Product
	err       error
	loads     int
}

func (f *fakeSource) Load(context.Context) ([]entity.PurchaseEvent, []entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.purchases, f.products, nil
}

func (f *fakeSource) set(purchases []entity.PurchaseEvent, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = purchases
	f.err = err
}

func (f *fakeSource) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

type recordingListener struct {
	mu    sync.Mutex
	ids   []string
	fails bool
}

func (r *recordingListener) SnapshotPublished(_ context.Context, snap *ledger.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, snap.ID)
	if r.fails {
		return errors.New("redis caído")
	}
	return nil
}

// blockingListener se queda bloqueado en la primera notificación hasta release.
type blockingListener struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *blockingListener) SnapshotPublished(ctx context.Context, _ *ledger.Snapshot) error {
	first := false
	b.once.Do(func() { first = true })
	if !first {
		return nil
	}
	close(b.entered)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func newSource() *fakeSource {
	return &fakeSource{
		products: []entity.Product{
			{ID: "1", Barcode: "001", Name: "Cola", UnitPrice: decimal.RequireFromString("1.50"), StockRemaining: 20},
			{ID: "2", Barcode: "002", Name: "Mate", UnitPrice: decimal.RequireFromString("2.00"), StockRemaining: 5},
		},
		purchases: []entity.PurchaseEvent{
			{Timestamp: t0, BuyerName: "Alice", Barcode: "001"},
		},
	}
}

func fixedClock() time.Time { return t0 }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRefreshNow_PublicaSnapshot(t *testing.T) {
	src := newSource()
	store := ledger.NewStore()
	listener := &recordingListener{}
	s := refresh.NewScheduler(src, store, time.Minute, logger.Nop(),
		refresh.WithClock(fixedClock), refresh.WithListener(listener))

	snap, err := s.RefreshNow(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Same(t, snap, store.Latest())
	assert.Equal(t, 1, snap.Purchases)
	assert.Equal(t, 2, snap.Products)
	assert.Equal(t, 2, snap.Len(), "1 compra + Mate sin compras")
	assert.Equal(t, t0, snap.LoadedAt)
	assert.Equal(t, []string{snap.ID}, listener.ids)

	st := s.Status()
	assert.Equal(t, 1, st.Ticks)
	assert.Equal(t, snap.ID, st.SnapshotID)
	assert.Equal(t, t0, st.LastSuccessAt)
	assert.Zero(t, st.ConsecutiveFailures)
}

func TestRefreshNow_FallaConservaSnapshotAnterior(t *testing.T) {
	src := newSource()
	store := ledger.NewStore()
	s := refresh.NewScheduler(src, store, time.Minute, logger.Nop(), refresh.WithClock(fixedClock))

	first, err := s.RefreshNow(context.Background())
	require.NoError(t, err)

	src.set(nil, domain.UnavailableError("purchase.txt", errors.New("no such file")))
	_, err = s.RefreshNow(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Same(t, first, store.Latest())

	st := s.Status()
	assert.Equal(t, 2, st.Ticks)
	assert.Equal(t, 1, st.ConsecutiveFailures)
	assert.NotEmpty(t, st.LastError)
	assert.Equal(t, first.ID, st.SnapshotID)
}

func TestRefreshNow_CompraHuerfana(t *testing.T) {
	src := newSource()
	store := ledger.NewStore()
	s := refresh.NewScheduler(src, store, time.Minute, logger.Nop())

	first, err := s.RefreshNow(context.Background())
	require.NoError(t, err)

	src.set([]entity.PurchaseEvent{{Timestamp: t0, BuyerName: "Bob", Barcode: "999"}}, nil)
	_, err = s.RefreshNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrOrphanPurchase)
	assert.Same(t, first, store.Latest(), "el snapshot publicado no cambia")

	// El siguiente tick con datos válidos se recupera.
	src.set(newSource().purchases, nil)
	next, err := s.RefreshNow(context.Background())
	require.NoError(t, err)
	assert.Same(t, next, store.Latest())
	assert.Zero(t, s.Status().ConsecutiveFailures)
}

func TestRefreshNow_ErrorDelListenerNoInvalidaSnapshot(t *testing.T) {
	store := ledger.NewStore()
	listener := &recordingListener{fails: true}
	s := refresh.NewScheduler(newSource(), store, time.Minute, logger.Nop())
	s.AddListener(listener)

	snap, err := s.RefreshNow(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, store.Latest())
	assert.Len(t, listener.ids, 1)
}

func TestRefreshNow_ListenerLentoNoBloqueaOtroTick(t *testing.T) {
	store := ledger.NewStore()
	listener := &blockingListener{entered: make(chan struct{}), release: make(chan struct{})}
	s := refresh.NewScheduler(newSource(), store, time.Minute, logger.Nop(), refresh.WithListener(listener))

	firstDone := make(chan *ledger.Snapshot, 1)
	go func() {
		snap, _ := s.RefreshNow(context.Background())
		firstDone <- snap
	}()
	<-listener.entered

	// Con el primer listener todavía bloqueado, un refresco manual termina.
	second, err := s.RefreshNow(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, store.Latest())
	assert.Equal(t, 2, s.Status().Ticks)

	close(listener.release)
	select {
	case first := <-firstDone:
		require.NotNil(t, first)
		assert.NotEqual(t, first.ID, second.ID)
	case <-time.After(time.Second):
		t.Fatal("el primer RefreshNow no terminó")
	}
}

func TestNewScheduler_IntervaloPorDefecto(t *testing.T) {
	s := refresh.NewScheduler(newSource(), ledger.NewStore(), 0, nil)
	assert.Equal(t, refresh.DefaultInterval, s.Interval())
}

func TestRun_PrimerTickInmediatoYPeriodico(t *testing.T) {
	src := newSource()
	store := ledger.NewStore()
	s := refresh.NewScheduler(src, store, 20*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.Latest() != nil }, time.Second, 5*time.Millisecond,
		"el primer tick corre sin esperar el intervalo")
	require.Eventually(t, func() bool { return src.loadCount() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run no terminó al cancelar el contexto")
	}
}
