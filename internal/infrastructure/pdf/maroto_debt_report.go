// Package pdf genera la lista de deudas imprimible ("Prangerliste").
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                    │  Fecha del snapshot     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: #  | Nombre                          | Deuda        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	│  FOOTER: snapshot_id                                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
	"github.com/jhoicas/getraenkekasse/internal/application/dto"
)

var _ dashboard.DebtReportGenerator = (*MarotoDebtReportGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 128, Green: 32, Blue: 32}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoDebtReportGenerator implementa dashboard.DebtReportGenerator usando Maroto v2.
type MarotoDebtReportGenerator struct{}

// NewMarotoDebtReportGenerator construye el generador.
func NewMarotoDebtReportGenerator() *MarotoDebtReportGenerator { return &MarotoDebtReportGenerator{} }

// GenerateDebtReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoDebtReportGenerator) GenerateDebtReportPDF(_ context.Context, report dto.DebtReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 11}).
		WithTitle(report.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(report.Debts) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(report.TotalLabel))
	m.AddRows(line.NewRow(6))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New("Snapshot "+report.SnapshotID, props.Text{Size: 7, Color: colorGray}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(report dto.DebtReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(text.New(report.Title, props.Text{
			Style: fontstyle.Bold, Size: 18, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New(report.GeneratedAt, props.Text{
			Size: 9, Align: align.Right, Top: 6, Color: colorGray,
		})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: a, Top: 2,
		}))
	}
	return row.New(9).Add(
		h("#", 1, align.Center),
		h("Name", 7, align.Left),
		h("Schulden", 4, align.Right),
	)
}

func tableRows(lines []dto.DebtReportLine) []core.Row {
	if len(lines) == 0 {
		return []core.Row{row.New(9).Add(col.New(12).Add(text.New("Keine offenen Schulden", props.Text{
			Align: align.Center, Top: 2, Color: colorGray,
		})))}
	}
	out := make([]core.Row, 0, len(lines))
	for i, l := range lines {
		out = append(out, row.New(8).Add(
			col.New(1).Add(text.New(strconv.Itoa(i+1), props.Text{Size: 10, Align: align.Center, Top: 1.5})),
			col.New(7).Add(text.New(l.Name, props.Text{Size: 10, Top: 1.5})),
			col.New(4).Add(text.New(l.Amount, props.Text{Size: 10, Align: align.Right, Top: 1.5})),
		))
	}
	return out
}

func totalRow(total string) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New("Summe", props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2, Right: 2,
		})),
		col.New(4).Add(text.New(total, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2, Color: colorPrimary,
		})),
	)
}
