package flatfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/analytics"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
	"github.com/jhoicas/getraenkekasse/internal/infrastructure/flatfile"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const products = `1,001,Cola,1.50,20
2,002,Mate,2.00,5
3,003,Water,0.80,10
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newLoader(t *testing.T, purchases, catalog string) *flatfile.Loader {
	t.Helper()
	dir := t.TempDir()
	l, err := flatfile.NewLoader(flatfile.Config{
		PurchasePath: writeFile(t, dir, "purchase.txt", purchases),
		ProductPath:  writeFile(t, dir, "produkt.txt", catalog),
		Location:     time.UTC,
	})
	require.NoError(t, err)
	return l
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestLoad_ArchivosValidos(t *testing.T) {
	l := newLoader(t, `2024-03-04 10:00:00,Alice,001,0
2024-03-04T11:15:00, Alice ,001,
2024-03-05 20:00,Bob,002,1
`, products)

	purchases, catalog, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, purchases, 3)
	require.Len(t, catalog, 3)

	assert.Equal(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), purchases[0].Timestamp)
	assert.Equal(t, "Alice", purchases[1].BuyerName, "los campos se recortan")
	assert.False(t, purchases[1].Paid, "campo vacío = no pagado")
	assert.True(t, purchases[2].Paid)

	assert.Equal(t, "Cola", catalog[0].Name)
	assert.True(t, decimal.RequireFromString("1.50").Equal(catalog[0].UnitPrice))
	assert.Equal(t, 10, catalog[2].StockRemaining)
}

func TestLoad_TimestampsConOffsetSeLlevanALaZonaConfigurada(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)
	dir := t.TempDir()
	l, err := flatfile.NewLoader(flatfile.Config{
		// Ambas compras son las 10:00 en hora local.
		PurchasePath: writeFile(t, dir, "purchase.txt", `2024-05-01 10:00:00,Alice,001,0
2024-05-01T08:00:00Z,Bob,001,0
`),
		ProductPath: writeFile(t, dir, "produkt.txt", products),
		Location:    cest,
	})
	require.NoError(t, err)

	purchases, catalog, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	for _, p := range purchases {
		assert.Equal(t, cest, p.Timestamp.Location())
		assert.Equal(t, 10, p.Timestamp.Hour())
	}

	rows, err := ledger.Join(purchases, catalog)
	require.NoError(t, err)

	dates := analytics.Timeline(rows, analytics.ModeDate)
	require.Len(t, dates, 1, "un solo bucket para el mismo día local")
	assert.Equal(t, 2, dates[0].Count)

	hours := analytics.Timeline(rows, analytics.ModeHour)
	assert.Equal(t, 2, hours[10].Count)
	assert.Zero(t, hours[8].Count)
}

func TestLoad_ArchivosVacios(t *testing.T) {
	purchases, catalog, err := newLoader(t, "", "").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, purchases)
	assert.Empty(t, catalog)
}

func TestLoad_ErroresDeEsquema(t *testing.T) {
	cases := map[string]struct {
		purchases, catalog string
		line               int
	}{
		"columnas de más":    {"2024-03-04 10:00:00,Alice,001,0,extra\n", products, 1},
		"columnas de menos":  {"2024-03-04 10:00:00,Alice,001,0\n2024-03-04 10:00:00,Bob\n", products, 2},
		"timestamp inválido": {"ayer,Alice,001,0\n", products, 1},
		"pago inválido":      {"2024-03-04 10:00:00,Alice,001,quizás\n", products, 1},
		"nombre vacío":       {"2024-03-04 10:00:00,,001,0\n", products, 1},
		"precio no numérico": {"", "1,001,Cola,barato,20\n", 1},
		"stock no numérico":  {"", "1,001,Cola,1.50,muchas\n", 1},
		"código repetido":    {"", "1,001,Cola,1.50,20\n2,001,Cola Zero,1.50,20\n", 2},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := newLoader(t, tc.purchases, tc.catalog).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSchema)

			var srcErr *domain.SourceError
			require.True(t, errors.As(err, &srcErr))
			assert.Equal(t, tc.line, srcErr.Line)
		})
	}
}

func TestLoad_ArchivoInexistente(t *testing.T) {
	l, err := flatfile.NewLoader(flatfile.Config{
		PurchasePath: filepath.Join(t.TempDir(), "no-existe.txt"),
		ProductPath:  filepath.Join(t.TempDir(), "tampoco.txt"),
	})
	require.NoError(t, err)

	_, _, err = l.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestLoad_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("2024-03-04 10:00:00,Jürgen,001,0\n")
	require.NoError(t, err)
	catalog, err := charmap.ISO8859_1.NewEncoder().String("1,001,Spezi Größe L,1.50,20\n")
	require.NoError(t, err)

	dir := t.TempDir()
	l, err := flatfile.NewLoader(flatfile.Config{
		PurchasePath: writeFile(t, dir, "purchase.txt", raw),
		ProductPath:  writeFile(t, dir, "produkt.txt", catalog),
		Encoding:     "latin1",
		Location:     time.UTC,
	})
	require.NoError(t, err)

	purchases, products, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jürgen", purchases[0].BuyerName)
	assert.Equal(t, "Spezi Größe L", products[0].Name)
}

func TestNewLoader_CodificacionNoSoportada(t *testing.T) {
	_, err := flatfile.NewLoader(flatfile.Config{Encoding: "ebcdic"})
	assert.Error(t, err)
}

func TestLoad_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newLoader(t, "2024-03-04 10:00:00,Alice,001,0\n", products).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
