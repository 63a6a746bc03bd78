package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Snapshot ──────────────────────────────────────────────────────────────────

// SnapshotDTO metadatos del snapshot sobre el que se calcularon las vistas.
type SnapshotDTO struct {
	SnapshotID string    `json:"snapshot_id"`
	LoadedAt   time.Time `json:"loaded_at"`
	Purchases  int       `json:"purchases"`
	Products   int       `json:"products"`
	Rows       int       `json:"rows"`
}

// RefreshStatusDTO estado del scheduler de refresco.
type RefreshStatusDTO struct {
	Interval            string     `json:"interval"`
	Ticks               int        `json:"ticks"`
	LastAttemptAt       *time.Time `json:"last_attempt_at,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
}

// SnapshotStatusDTO respuesta de GET /api/snapshot. Snapshot es null antes del primer refresco exitoso.
type SnapshotStatusDTO struct {
	Snapshot *SnapshotDTO     `json:"snapshot"`
	Refresh  RefreshStatusDTO `json:"refresh"`
}

// ── Vistas ────────────────────────────────────────────────────────────────────

// DebtDTO deuda pendiente de una persona.
type DebtDTO struct {
	Name       string          `json:"name"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
}

// DebtsDTO lista de deudas ordenada de mayor a menor.
type DebtsDTO struct {
	SnapshotID string          `json:"snapshot_id"`
	Debts      []DebtDTO       `json:"debts"`
	Total      decimal.Decimal `json:"total"`
}

// RevenueDTO ingresos desde la primera compra. SinceDate vacío = sin compras.
type RevenueDTO struct {
	SinceDate   string          `json:"since_date,omitempty"`  // YYYY-MM-DD
	SinceLabel  string          `json:"since_label,omitempty"` // formato del idioma, ej. "02.01.2006"
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalLabel  string          `json:"total_label"` // ej. "12.50 €"
	Purchases   int             `json:"purchases"`
}

// RoyalBuyerDTO persona con más compras de todos los tiempos.
type RoyalBuyerDTO struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Label string `json:"label"` // ej. "Alice (42 St.)"
}

// BestsellerDTO producto más comprado del mes en curso. ProductName = "N/A" si no hubo compras.
type BestsellerDTO struct {
	ProductName string `json:"product_name"`
	Count       int    `json:"count"`
	Month       string `json:"month"` // etiqueta localizada del mes evaluado
}

// TimelineBucketDTO una categoría de la línea de tiempo.
type TimelineBucketDTO struct {
	Key   string `json:"key"`   // canónico: 2006-01-02, 0..23, 1..7 (lunes=1), 1..12
	Label string `json:"label"` // localizado
	Count int    `json:"count"`
}

// TimelineDTO compras agrupadas según Mode.
type TimelineDTO struct {
	Mode    string              `json:"mode"`
	Buckets []TimelineBucketDTO `json:"buckets"`
	Total   int                 `json:"total"`
}

// InventoryItemDTO stock restante de un producto.
type InventoryItemDTO struct {
	ProductName    string          `json:"product_name"`
	StockRemaining int             `json:"stock_remaining"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// PersonTotalDTO total de bebidas por persona.
type PersonTotalDTO struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// PersonShareDTO proporción de un producto dentro de las bebidas de una persona.
type PersonShareDTO struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// PersonProductStatsDTO quién bebe qué. Cada lista de Relative sigue el orden de Absolute.
type PersonProductStatsDTO struct {
	Absolute []PersonTotalDTO            `json:"absolute"`
	Products []string                    `json:"products"`
	Relative map[string][]PersonShareDTO `json:"relative"`
}

// DashboardSummaryDTO respuesta de GET /api/views/summary: todas las tarjetas en una sola lectura.
type DashboardSummaryDTO struct {
	Snapshot    SnapshotDTO        `json:"snapshot"`
	GeneratedAt time.Time          `json:"generated_at"`
	Debts       []DebtDTO          `json:"debts"`
	Revenue     RevenueDTO         `json:"revenue"`
	RoyalBuyer  *RoyalBuyerDTO     `json:"royal_buyer"`
	Bestseller  BestsellerDTO      `json:"bestseller"`
	Inventory   []InventoryItemDTO `json:"inventory"`
}

// ── Reporte PDF ───────────────────────────────────────────────────────────────

// DebtReport datos para imprimir la lista de deudas.
type DebtReport struct {
	Title       string
	SnapshotID  string
	GeneratedAt string // ya formateada en el idioma configurado
	Debts       []DebtReportLine
	TotalLabel  string
}

// DebtReportLine una fila del reporte con el monto ya formateado.
type DebtReportLine struct {
	Name   string
	Amount string
}
