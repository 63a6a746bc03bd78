// Package flatfile lee el log de compras y el catálogo de productos desde
// archivos de texto separados por comas, sin cabecera, tal como los escribe
// el kiosco de la caja.
package flatfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
	"github.com/jhoicas/getraenkekasse/internal/domain/repository"
)

var _ repository.LedgerSource = (*Loader)(nil)

const (
	purchaseColumns = 4 // timestamp, nombre, código de barras, pagado
	productColumns  = 5 // id, código de barras, nombre, precio, stock
)

// Formatos de fecha aceptados en el log de compras, en orden de prueba.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
}

// Config rutas y codificación de los archivos.
type Config struct {
	PurchasePath string
	ProductPath  string
	Encoding     string         // utf-8 (default) | iso-8859-1 | latin1 | windows-1252
	Location     *time.Location // zona para timestamps sin offset; nil = time.Local
}

// Loader implementación de repository.LedgerSource sobre archivos planos.
type Loader struct {
	cfg Config
}

// NewLoader valida la codificación y construye el loader.
func NewLoader(cfg Config) (*Loader, error) {
	if _, err := decoderFor(cfg.Encoding); err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Loader{cfg: cfg}, nil
}

// Load lee ambos archivos completos. Cualquier fila inválida aborta la carga entera.
func (l *Loader) Load(ctx context.Context) ([]entity.PurchaseEvent, []entity.Product, error) {
	purchases, err := l.loadPurchases(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := l.loadProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return purchases, products, nil
}

func (l *Loader) loadPurchases(ctx context.Context) ([]entity.PurchaseEvent, error) {
	var out []entity.PurchaseEvent
	err := l.readRecords(ctx, l.cfg.PurchasePath, purchaseColumns, func(line int, rec []string) error {
		ts, err := parseTimestamp(rec[0], l.cfg.Location)
		if err != nil {
			return domain.SchemaErrorf(l.cfg.PurchasePath, line, "timestamp inválido %q", rec[0])
		}
		if rec[1] == "" {
			return domain.SchemaErrorf(l.cfg.PurchasePath, line, "nombre vacío")
		}
		if rec[2] == "" {
			return domain.SchemaErrorf(l.cfg.PurchasePath, line, "código de barras vacío")
		}
		paid, err := parsePaid(rec[3])
		if err != nil {
			return domain.SchemaErrorf(l.cfg.PurchasePath, line, "indicador de pago inválido %q", rec[3])
		}
		out = append(out, entity.PurchaseEvent{
			Timestamp: ts,
			BuyerName: rec[1],
			Barcode:   rec[2],
			Paid:      paid,
		})
		return nil
	})
	return out, err
}

func (l *Loader) loadProducts(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	seen := make(map[string]int)
	err := l.readRecords(ctx, l.cfg.ProductPath, productColumns, func(line int, rec []string) error {
		if rec[1] == "" {
			return domain.SchemaErrorf(l.cfg.ProductPath, line, "código de barras vacío")
		}
		if prev, dup := seen[rec[1]]; dup {
			return domain.SchemaErrorf(l.cfg.ProductPath, line, "código de barras %q repetido (línea %d)", rec[1], prev)
		}
		seen[rec[1]] = line
		price, err := decimal.NewFromString(rec[3])
		if err != nil {
			return domain.SchemaErrorf(l.cfg.ProductPath, line, "precio no numérico %q", rec[3])
		}
		stock, err := strconv.Atoi(rec[4])
		if err != nil {
			return domain.SchemaErrorf(l.cfg.ProductPath, line, "stock no numérico %q", rec[4])
		}
		out = append(out, entity.Product{
			ID:             rec[0],
			Barcode:        rec[1],
			Name:           rec[2],
			UnitPrice:      price,
			StockRemaining: stock,
		})
		return nil
	})
	return out, err
}

// readRecords abre path, decodifica y entrega cada fila (con campos recortados) a fn.
func (l *Loader) readRecords(ctx context.Context, path string, columns int, fn func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return domain.UnavailableError(path, err)
	}
	defer f.Close()

	dec, _ := decoderFor(l.cfg.Encoding)
	var src io.Reader = f
	if dec != nil {
		src = transform.NewReader(f, dec.NewDecoder())
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // la cantidad de columnas se valida con mensaje propio
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return domain.SchemaErrorf(path, perr.Line, "%v", perr.Err)
			}
			return domain.UnavailableError(path, err)
		}
		line, _ := r.FieldPos(0)
		if len(rec) != columns {
			return domain.SchemaErrorf(path, line, "se esperaban %d columnas, hay %d", columns, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// decoderFor devuelve nil para UTF-8 (sin transformación).
func decoderFor(encoding string) (*charmap.Charmap, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("flatfile: codificación no soportada %q", encoding)
}

// parseTimestamp interpreta s en loc si no trae offset y siempre devuelve el
// instante expresado en loc: los buckets por hora y fecha dependen de eso.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q", s)
}

// parsePaid: campo vacío = no pagado.
func parsePaid(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "f", "no", "n", "nein":
		return false, nil
	case "1", "true", "t", "yes", "y", "ja", "j":
		return true, nil
	}
	return false, fmt.Errorf("paid %q", s)
}
