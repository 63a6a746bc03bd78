package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
	"github.com/jhoicas/getraenkekasse/internal/application/dto"
	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
	apphttp "github.com/jhoicas/getraenkekasse/internal/interfaces/http"
	"github.com/jhoicas/getraenkekasse/pkg/locale"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2024, 3, 5, 21, 0, 0, 0, time.UTC)

// fakeRefresher publica el snapshot preparado o devuelve err.
type fakeRefresher struct {
	store *ledger.Store
	next  *ledger.Snapshot
	err   error
	calls int
}

func (f *fakeRefresher) RefreshNow(context.Context) (*ledger.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.store.Swap(f.next)
	return f.next, nil
}

type stubPDF struct{}

func (stubPDF) GenerateDebtReportPDF(context.Context, dto.DebtReport) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

func scenarioSnapshot(t *testing.T) *ledger.Snapshot {
	t.Helper()
	products := []entity.Product{
		{ID: "1", Barcode: "001", Name: "Cola", UnitPrice: decimal.RequireFromString("1.50"), StockRemaining: 20},
		{ID: "2", Barcode: "002", Name: "Mate", UnitPrice: decimal.RequireFromString("2.00"), StockRemaining: 5},
		{ID: "3", Barcode: "003", Name: "Water", UnitPrice: decimal.RequireFromString("0.80"), StockRemaining: 10},
	}
	purchases := []entity.PurchaseEvent{
		{Timestamp: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), BuyerName: "Alice", Barcode: "001"},
		{Timestamp: time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC), BuyerName: "Alice", Barcode: "001"},
		{Timestamp: time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC), BuyerName: "Bob", Barcode: "002", Paid: true},
	}
	rows, err := ledger.Join(purchases, products)
	require.NoError(t, err)
	return ledger.NewSnapshot(rows, len(purchases), len(products), now)
}

// buildTestApp arma la app con un store opcionalmente ya publicado.
func buildTestApp(t *testing.T, published bool) (*fiber.App, *ledger.Store, *fakeRefresher) {
	t.Helper()
	store := ledger.NewStore()
	snap := scenarioSnapshot(t)
	if published {
		store.Swap(snap)
	}
	labels, err := locale.For("de")
	require.NoError(t, err)

	pub := dashboard.NewPublisher(store, labels,
		dashboard.WithClock(func() time.Time { return now }),
		dashboard.WithDebtReport(stubPDF{}, "Getränkekasse"),
	)
	refresher := &fakeRefresher{store: store, next: snap}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Publisher: pub, Refresher: refresher})
	return app, store, refresher
}

func do(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestViews_SinSnapshotDevuelve503(t *testing.T) {
	app, _, _ := buildTestApp(t, false)

	for _, path := range []string{
		"/api/views/debts", "/api/views/revenue", "/api/views/royal-buyer",
		"/api/views/bestseller", "/api/views/timeline", "/api/views/inventory",
		"/api/views/person-stats", "/api/views/summary", "/api/reports/debts.pdf",
	} {
		resp := do(t, app, http.MethodGet, path)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode, path)
		body := decode[dto.ErrorResponse](t, resp)
		assert.Equal(t, "NO_SNAPSHOT", body.Code, path)
	}
}

func TestViews_Debts(t *testing.T) {
	app, _, _ := buildTestApp(t, true)

	resp := do(t, app, http.MethodGet, "/api/views/debts")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[dto.DebtsDTO](t, resp)
	require.Len(t, body.Debts, 1)
	assert.Equal(t, "Alice", body.Debts[0].Name)
	assert.True(t, decimal.RequireFromString("3").Equal(body.Debts[0].AmountOwed))
}

func TestViews_Timeline(t *testing.T) {
	app, _, _ := buildTestApp(t, true)

	resp := do(t, app, http.MethodGet, "/api/views/timeline?mode=hour")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[dto.TimelineDTO](t, resp)
	assert.Equal(t, "hour", body.Mode)
	assert.Len(t, body.Buckets, 24)
	assert.Equal(t, 3, body.Total)

	resp = do(t, app, http.MethodGet, "/api/views/timeline?mode=decade")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestViews_RoyalBuyerYSummary(t *testing.T) {
	app, _, _ := buildTestApp(t, true)

	resp := do(t, app, http.MethodGet, "/api/views/royal-buyer")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	royal := decode[map[string]*dto.RoyalBuyerDTO](t, resp)
	require.NotNil(t, royal["royal_buyer"])
	assert.Equal(t, "Alice", royal["royal_buyer"].Name)

	resp = do(t, app, http.MethodGet, "/api/views/summary")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := decode[dto.DashboardSummaryDTO](t, resp)
	assert.Equal(t, "Cola", summary.Bestseller.ProductName)
	assert.Len(t, summary.Inventory, 3)
}

func TestReports_DebtsPDF(t *testing.T) {
	app, _, _ := buildTestApp(t, true)

	resp := do(t, app, http.MethodGet, "/api/reports/debts.pdf")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "schulden-2024-03-05.pdf")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 stub", string(raw))
}

func TestSnapshot_EstadoYRefresco(t *testing.T) {
	app, store, refresher := buildTestApp(t, false)

	resp := do(t, app, http.MethodGet, "/api/snapshot")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[dto.SnapshotStatusDTO](t, resp).Snapshot)

	resp = do(t, app, http.MethodPost, "/api/refresh")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode[dto.SnapshotDTO](t, resp)
	assert.Equal(t, store.Latest().ID, body.SnapshotID)
	assert.Equal(t, 3, body.Purchases)
	assert.Equal(t, 1, refresher.calls)
}

func TestSnapshot_RefrescoFallido(t *testing.T) {
	app, _, refresher := buildTestApp(t, true)
	refresher.err = &domain.OrphanPurchaseError{Barcodes: []string{"999"}}

	resp := do(t, app, http.MethodPost, "/api/refresh")
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "REFRESH_FAILED", body.Code)
	assert.Contains(t, body.Message, "999")

	refresher.err = errors.New("algo inesperado")
	resp = do(t, app, http.MethodPost, "/api/refresh")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
