package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/getraenkekasse/internal/application/dto"
	"github.com/jhoicas/getraenkekasse/internal/application/refresh"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
)

var _ refresh.SnapshotListener = (*Mirror)(nil)

// SummaryCache destino externo del resumen (Redis o noop).
type SummaryCache interface {
	SetSummary(ctx context.Context, summary *dto.DashboardSummaryDTO, ttl time.Duration) error
}

// NoopSummaryCache descarta el resumen (espejo deshabilitado).
type NoopSummaryCache struct{}

func (NoopSummaryCache) SetSummary(context.Context, *dto.DashboardSummaryDTO, time.Duration) error {
	return nil
}

// Mirror publica el resumen de cada snapshot nuevo en un SummaryCache para
// capas de presentación que corren en otro proceso.
type Mirror struct {
	publisher *Publisher
	cache     SummaryCache
	ttl       time.Duration
}

// NewMirror construye el espejo. ttl debería cubrir al menos dos intervalos de refresco.
func NewMirror(publisher *Publisher, cache SummaryCache, ttl time.Duration) *Mirror {
	return &Mirror{publisher: publisher, cache: cache, ttl: ttl}
}

// SnapshotPublished implementa refresh.SnapshotListener.
func (m *Mirror) SnapshotPublished(ctx context.Context, snap *ledger.Snapshot) error {
	summary := m.publisher.summaryOf(snap, m.publisher.now())
	if err := m.cache.SetSummary(ctx, summary, m.ttl); err != nil {
		return fmt.Errorf("dashboard: espejo del resumen: %w", err)
	}
	return nil
}
