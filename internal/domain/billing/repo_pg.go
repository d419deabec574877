package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clindoc/clindoc/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type InvoiceRepoPG struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepoPG(pool *pgxpool.Pool) *InvoiceRepoPG {
	return &InvoiceRepoPG{pool: pool}
}

func (r *InvoiceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const invoiceCols = `id, consultation_id, line_items, subtotal, tax, total, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var lineItems []byte
	err := row.Scan(
		&inv.ID, &inv.ConsultationID, &lineItems,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &inv.LineItems); err != nil {
			return nil, fmt.Errorf("decode line items: %w", err)
		}
	}
	return &inv, nil
}

func (r *InvoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	lineItems, err := json.Marshal(inv.LineItems)
	if err != nil {
		return fmt.Errorf("encode line items: %w", err)
	}
	q := `INSERT INTO invoice (` + invoiceCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.conn(ctx).Exec(ctx, q,
		inv.ID, inv.ConsultationID, lineItems,
		inv.Subtotal, inv.Tax, inv.Total, inv.CreatedAt,
	)
	return err
}

func (r *InvoiceRepoPG) GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*Invoice, error) {
	q := fmt.Sprintf("SELECT %s FROM invoice WHERE consultation_id = $1", invoiceCols)
	return scanInvoice(r.conn(ctx).QueryRow(ctx, q, consultationID))
}

func (r *InvoiceRepoPG) List(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM invoice").Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM invoice ORDER BY created_at DESC LIMIT $1 OFFSET $2", invoiceCols)
	rows, err := r.conn(ctx).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, rows.Err()
}
