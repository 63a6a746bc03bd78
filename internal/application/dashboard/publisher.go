// Package dashboard expone las vistas del último snapshot a la capa de presentación.
//
// Las vistas se calculan bajo demanda (pull) desde el snapshot vigente; no hay
// caché de vistas más allá del propio snapshot.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/getraenkekasse/internal/application/dto"
	"github.com/jhoicas/getraenkekasse/internal/application/refresh"
	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/analytics"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
	"github.com/jhoicas/getraenkekasse/pkg/locale"
)

// SnapshotReader fuente del snapshot publicado (ledger.Store).
type SnapshotReader interface {
	Latest() *ledger.Snapshot
}

// RefreshStatusReader estado del scheduler (refresh.Scheduler).
type RefreshStatusReader interface {
	Status() refresh.Status
	Interval() time.Duration
}

// DebtReportGenerator genera el PDF de la lista de deudas.
type DebtReportGenerator interface {
	GenerateDebtReportPDF(ctx context.Context, report dto.DebtReport) ([]byte, error)
}

// Publisher calcula las vistas desde el snapshot vigente.
type Publisher struct {
	snapshots   SnapshotReader
	status      RefreshStatusReader
	labels      locale.Labels
	now         func() time.Time
	reportTitle string
	pdf         DebtReportGenerator
}

// Option configura el Publisher.
type Option func(*Publisher)

// WithClock reemplaza time.Now; define el "mes en curso" del bestseller.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// WithStatus habilita SnapshotStatus.
func WithStatus(s RefreshStatusReader) Option {
	return func(p *Publisher) { p.status = s }
}

// WithDebtReport habilita DebtReportPDF.
func WithDebtReport(gen DebtReportGenerator, title string) Option {
	return func(p *Publisher) {
		p.pdf = gen
		p.reportTitle = title
	}
}

// NewPublisher construye el publicador.
func NewPublisher(snapshots SnapshotReader, labels locale.Labels, opts ...Option) *Publisher {
	p := &Publisher{
		snapshots: snapshots,
		labels:    labels,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Publisher) latest() (*ledger.Snapshot, error) {
	snap := p.snapshots.Latest()
	if snap == nil {
		return nil, domain.ErrNoSnapshot
	}
	return snap, nil
}

// ── Metadatos ─────────────────────────────────────────────────────────────────

// Snapshot devuelve los metadatos del snapshot vigente.
func (p *Publisher) Snapshot() (*dto.SnapshotDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	out := snapshotDTO(snap)
	return &out, nil
}

// SnapshotStatus metadatos del snapshot (o nil) más el estado del scheduler. Nunca falla.
func (p *Publisher) SnapshotStatus() dto.SnapshotStatusDTO {
	var out dto.SnapshotStatusDTO
	if snap := p.snapshots.Latest(); snap != nil {
		s := snapshotDTO(snap)
		out.Snapshot = &s
	}
	if p.status != nil {
		st := p.status.Status()
		out.Refresh = dto.RefreshStatusDTO{
			Interval:            p.status.Interval().String(),
			Ticks:               st.Ticks,
			LastAttemptAt:       timePtr(st.LastAttemptAt),
			LastSuccessAt:       timePtr(st.LastSuccessAt),
			LastFailureAt:       timePtr(st.LastFailureAt),
			LastError:           st.LastError,
			ConsecutiveFailures: st.ConsecutiveFailures,
		}
	}
	return out
}

// ── Vistas ────────────────────────────────────────────────────────────────────

// Debts lista de deudas pendientes.
func (p *Publisher) Debts() (*dto.DebtsDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	debts, total := debtsDTO(analytics.Debts(snap.Rows()))
	return &dto.DebtsDTO{SnapshotID: snap.ID, Debts: debts, Total: total}, nil
}

// Revenue resumen de ingresos.
func (p *Publisher) Revenue() (*dto.RevenueDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	out := p.revenueDTO(analytics.Revenue(snap.Rows()))
	return &out, nil
}

// RoyalBuyer persona con más compras; nil sin error si el ledger no tiene compras.
func (p *Publisher) RoyalBuyer() (*dto.RoyalBuyerDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	return p.royalDTO(snap), nil
}

// Bestseller producto más comprado del mes en curso.
func (p *Publisher) Bestseller() (*dto.BestsellerDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	out := p.bestsellerDTO(snap, p.now())
	return &out, nil
}

// Timeline compras agrupadas por fecha, hora, día de la semana o mes.
func (p *Publisher) Timeline(mode analytics.Mode) (*dto.TimelineDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	buckets := analytics.Timeline(snap.Rows(), mode)
	out := &dto.TimelineDTO{
		Mode:    string(mode),
		Buckets: make([]dto.TimelineBucketDTO, 0, len(buckets)),
	}
	for _, b := range buckets {
		key, label := p.bucketLabel(mode, b)
		out.Buckets = append(out.Buckets, dto.TimelineBucketDTO{Key: key, Label: label, Count: b.Count})
		out.Total += b.Count
	}
	return out, nil
}

// Inventory stock restante por producto, incluidos los nunca comprados.
func (p *Publisher) Inventory() ([]dto.InventoryItemDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	return inventoryDTO(analytics.Inventory(snap.Rows())), nil
}

// PersonProductStats totales y proporciones de consumo por persona y producto.
func (p *Publisher) PersonProductStats() (*dto.PersonProductStatsDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	stats := analytics.PersonProductStats(snap.Rows())

	out := &dto.PersonProductStatsDTO{
		Absolute: make([]dto.PersonTotalDTO, 0, len(stats.Absolute)),
		Products: stats.Products,
		Relative: make(map[string][]dto.PersonShareDTO, len(stats.Relative)),
	}
	for _, a := range stats.Absolute {
		out.Absolute = append(out.Absolute, dto.PersonTotalDTO{Name: a.Name, Total: a.Total})
	}
	for product, shares := range stats.Relative {
		list := make([]dto.PersonShareDTO, 0, len(shares))
		for _, s := range shares {
			list = append(list, dto.PersonShareDTO{Name: s.Name, Count: s.Count, Share: s.Share})
		}
		out.Relative[product] = list
	}
	return out, nil
}

// Summary todas las tarjetas del dashboard calculadas sobre un mismo snapshot.
func (p *Publisher) Summary() (*dto.DashboardSummaryDTO, error) {
	snap, err := p.latest()
	if err != nil {
		return nil, err
	}
	return p.summaryOf(snap, p.now()), nil
}

// summaryOf calcula las vistas en paralelo; todas leen el mismo snapshot inmutable.
func (p *Publisher) summaryOf(snap *ledger.Snapshot, now time.Time) *dto.DashboardSummaryDTO {
	rows := snap.Rows()

	debtsCh := make(chan []dto.DebtDTO, 1)
	revenueCh := make(chan dto.RevenueDTO, 1)
	royalCh := make(chan *dto.RoyalBuyerDTO, 1)
	bestCh := make(chan dto.BestsellerDTO, 1)
	invCh := make(chan []dto.InventoryItemDTO, 1)

	go func() {
		debts, _ := debtsDTO(analytics.Debts(rows))
		debtsCh <- debts
	}()
	go func() { revenueCh <- p.revenueDTO(analytics.Revenue(rows)) }()
	go func() { royalCh <- p.royalDTO(snap) }()
	go func() { bestCh <- p.bestsellerDTO(snap, now) }()
	go func() { invCh <- inventoryDTO(analytics.Inventory(rows)) }()

	return &dto.DashboardSummaryDTO{
		Snapshot:    snapshotDTO(snap),
		GeneratedAt: now,
		Debts:       <-debtsCh,
		Revenue:     <-revenueCh,
		RoyalBuyer:  <-royalCh,
		Bestseller:  <-bestCh,
		Inventory:   <-invCh,
	}
}

// DebtReportPDF genera la lista de deudas imprimible. Devuelve bytes y nombre de archivo.
func (p *Publisher) DebtReportPDF(ctx context.Context) ([]byte, string, error) {
	if p.pdf == nil {
		return nil, "", fmt.Errorf("dashboard: generador de PDF no configurado")
	}
	snap, err := p.latest()
	if err != nil {
		return nil, "", err
	}
	debts := analytics.Debts(snap.Rows())
	total := decimal.Zero
	report := dto.DebtReport{
		Title:       p.reportTitle,
		SnapshotID:  snap.ID,
		GeneratedAt: p.labels.Date(snap.LoadedAt) + " " + snap.LoadedAt.Format("15:04"),
		Debts:       make([]dto.DebtReportLine, 0, len(debts)),
	}
	for _, d := range debts {
		total = total.Add(d.AmountOwed)
		report.Debts = append(report.Debts, dto.DebtReportLine{Name: d.Name, Amount: p.labels.Money(d.AmountOwed)})
	}
	report.TotalLabel = p.labels.Money(total)

	pdf, err := p.pdf.GenerateDebtReportPDF(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("dashboard: generar PDF: %w", err)
	}
	filename := fmt.Sprintf("schulden-%s.pdf", snap.LoadedAt.Format("2006-01-02"))
	return pdf, filename, nil
}

// ── Mapeo dominio → DTO ───────────────────────────────────────────────────────

func snapshotDTO(snap *ledger.Snapshot) dto.SnapshotDTO {
	return dto.SnapshotDTO{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt,
		Purchases:  snap.Purchases,
		Products:   snap.Products,
		Rows:       snap.Len(),
	}
}

func debtsDTO(debts []analytics.Debt) ([]dto.DebtDTO, decimal.Decimal) {
	out := make([]dto.DebtDTO, 0, len(debts))
	total := decimal.Zero
	for _, d := range debts {
		out = append(out, dto.DebtDTO{Name: d.Name, AmountOwed: d.AmountOwed.Round(2)})
		total = total.Add(d.AmountOwed)
	}
	return out, total.Round(2)
}

func (p *Publisher) revenueDTO(r analytics.RevenueSummary) dto.RevenueDTO {
	out := dto.RevenueDTO{
		TotalAmount: r.Total.Round(2),
		TotalLabel:  p.labels.Money(r.Total),
		Purchases:   r.Purchases,
	}
	if r.Since != nil {
		out.SinceDate = r.Since.Format("2006-01-02")
		out.SinceLabel = p.labels.Date(*r.Since)
	}
	return out
}

func (p *Publisher) royalDTO(snap *ledger.Snapshot) *dto.RoyalBuyerDTO {
	w, ok := analytics.RoyalBuyer(snap.Rows())
	if !ok {
		return nil
	}
	return &dto.RoyalBuyerDTO{Name: w.Name, Count: w.Count, Label: p.labels.Pieces(w.Name, w.Count)}
}

func (p *Publisher) bestsellerDTO(snap *ledger.Snapshot, now time.Time) dto.BestsellerDTO {
	w := analytics.BestsellerOfMonth(snap.Rows(), now)
	return dto.BestsellerDTO{ProductName: w.Name, Count: w.Count, Month: p.labels.Month(now.Month())}
}

func inventoryDTO(items []analytics.InventoryItem) []dto.InventoryItemDTO {
	out := make([]dto.InventoryItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.InventoryItemDTO{
			ProductName:    it.ProductName,
			StockRemaining: it.StockRemaining,
			UnitPrice:      it.UnitPrice,
		})
	}
	return out
}

// bucketLabel devuelve la clave canónica y la etiqueta localizada de un bucket.
func (p *Publisher) bucketLabel(mode analytics.Mode, b analytics.Bucket) (key, label string) {
	switch mode {
	case analytics.ModeHour:
		return strconv.Itoa(b.Key), fmt.Sprintf("%02d:00", b.Key)
	case analytics.ModeWeekday:
		wd := time.Weekday(b.Key)
		iso := int(wd)
		if wd == time.Sunday {
			iso = 7
		}
		return strconv.Itoa(iso), p.labels.Weekday(wd)
	case analytics.ModeMonth:
		return strconv.Itoa(b.Key), p.labels.Month(time.Month(b.Key))
	default:
		return b.Date.Format("2006-01-02"), p.labels.Date(b.Date)
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
