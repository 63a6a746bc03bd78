package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
	"github.com/jhoicas/getraenkekasse/internal/domain/repository"
)

var _ repository.LedgerSource = (*LedgerSource)(nil)

const (
	sourcePurchases = "postgres:purchases"
	sourceProducts  = "postgres:products"
)

// LedgerSource lee compras y catálogo desde PostgreSQL.
// Ambas consultas corren en la misma transacción REPEATABLE READ / READ ONLY,
// así el ledger nunca mezcla un catálogo nuevo con un log viejo.
// Los timestamps se convierten a loc para que horas y días se agrupen en hora local.
type LedgerSource struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewLedgerSource construye el adaptador. loc nil = time.Local.
func NewLedgerSource(pool *pgxpool.Pool, loc *time.Location) *LedgerSource {
	if loc == nil {
		loc = time.Local
	}
	return &LedgerSource{pool: pool, loc: loc}
}

// Load implementa repository.LedgerSource.
func (s *LedgerSource) Load(ctx context.Context) ([]entity.PurchaseEvent, []entity.Product, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, nil, domain.UnavailableError("postgres", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	purchases, err := loadPurchases(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	for i := range purchases {
		purchases[i].Timestamp = purchases[i].Timestamp.In(s.loc)
	}
	products, err := loadProducts(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return purchases, products, nil
}

func loadPurchases(ctx context.Context, q pgx.Tx) ([]entity.PurchaseEvent, error) {
	const query = `
	SELECT purchased_at, buyer_name, barcode, COALESCE(paid, FALSE)
	FROM purchases
	ORDER BY purchased_at, id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, classify(sourcePurchases, err)
	}
	defer rows.Close()

	var list []entity.PurchaseEvent
	line := 0
	for rows.Next() {
		line++
		var ev entity.PurchaseEvent
		if err := rows.Scan(&ev.Timestamp, &ev.BuyerName, &ev.Barcode, &ev.Paid); err != nil {
			return nil, domain.SchemaErrorf(sourcePurchases, line, "scan: %v", err)
		}
		list = append(list, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(sourcePurchases, err)
	}
	return list, nil
}

func loadProducts(ctx context.Context, q pgx.Tx) ([]entity.Product, error) {
	const query = `
	SELECT id::TEXT, barcode, name, price, stock
	FROM products
	ORDER BY id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, classify(sourceProducts, err)
	}
	defer rows.Close()

	var list []entity.Product
	line := 0
	for rows.Next() {
		line++
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name, &p.UnitPrice, &p.StockRemaining); err != nil {
			return nil, domain.SchemaErrorf(sourceProducts, line, "scan: %v", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(sourceProducts, err)
	}
	return list, nil
}

// classify separa errores de esquema SQL (tabla o columna inexistente, clase 42)
// de fallas de conexión.
func classify(source string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "42" {
		return domain.SchemaErrorf(source, 0, "%s (%s)", pgErr.Message, pgErr.Code)
	}
	return domain.UnavailableError(source, err)
}
