package ledger

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

type LedgerRepoPG struct {
	pool *pgxpool.Pool
}

func NewLedgerRepoPG(pool *pgxpool.Pool) *LedgerRepoPG {
	return &LedgerRepoPG{pool: pool}
}

func (r *LedgerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// seq is assigned by the database on insert and is the authoritative chain
// order; lexicographic ts ordering is not trusted for chain reads.
const entryCols = `seq, id, consultation_id, event_type, actor_id, actor_role, payload, ts, hash, previous_hash`

func scanEntry(row pgx.Row) (*AuditEntry, error) {
	var e AuditEntry
	var payload []byte
	err := row.Scan(
		&e.Seq, &e.ID, &e.ConsultationID, &e.EventType, &e.ActorID, &e.ActorRole,
		&payload, &e.Timestamp, &e.Hash, &e.PreviousHash,
	)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}
	return &e, nil
}

func (r *LedgerRepoPG) Append(ctx context.Context, e *AuditEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	q := `INSERT INTO audit_entry (id, consultation_id, event_type, actor_id, actor_role, payload, ts, hash, previous_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.conn(ctx).Exec(ctx, q,
		e.ID, e.ConsultationID, e.EventType, e.ActorID, e.ActorRole,
		payload, e.Timestamp, e.Hash, e.PreviousHash,
	)
	return err
}

func (r *LedgerRepoPG) GetLatest(ctx context.Context, consultationID uuid.UUID) (*AuditEntry, error) {
	q := fmt.Sprintf("SELECT %s FROM audit_entry WHERE consultation_id = $1 ORDER BY seq DESC LIMIT 1", entryCols)
	e, err := scanEntry(r.conn(ctx).QueryRow(ctx, q, consultationID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *LedgerRepoPG) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*AuditEntry, error) {
	q := fmt.Sprintf("SELECT %s FROM audit_entry WHERE consultation_id = $1 ORDER BY seq ASC", entryCols)
	rows, err := r.conn(ctx).Query(ctx, q, consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*AuditEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *LedgerRepoPG) List(ctx context.Context, limit, offset int) ([]*AuditEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM audit_entry").Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_entry ORDER BY seq DESC LIMIT $1 OFFSET $2", entryCols)
	rows, err := r.conn(ctx).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AuditEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
