package safety

import (
	"context"
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

type AlertRepoPG struct {
	pool *pgxpool.Pool
}

func NewAlertRepoPG(pool *pgxpool.Pool) *AlertRepoPG {
	return &AlertRepoPG{pool: pool}
}

func (r *AlertRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const alertCols = `id, consultation_id, alert_type, severity, title, description,
	drug_a, drug_b, mechanism, alternatives, acknowledged, created_at`

func scanAlert(row pgx.Row) (*SafetyAlert, error) {
	var a SafetyAlert
	err := row.Scan(
		&a.ID, &a.ConsultationID, &a.AlertType, &a.Severity, &a.Title, &a.Description,
		&a.DrugA, &a.DrugB, &a.Mechanism, &a.Alternatives, &a.Acknowledged, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AlertRepoPG) Create(ctx context.Context, a *SafetyAlert) error {
	q := `INSERT INTO safety_alert (` + alertCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.conn(ctx).Exec(ctx, q,
		a.ID, a.ConsultationID, a.AlertType, a.Severity, a.Title, a.Description,
		a.DrugA, a.DrugB, a.Mechanism, a.Alternatives, a.Acknowledged, a.CreatedAt,
	)
	return err
}

func (r *AlertRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SafetyAlert, error) {
	q := fmt.Sprintf("SELECT %s FROM safety_alert WHERE id = $1", alertCols)
	return scanAlert(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *AlertRepoPG) SetAcknowledged(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, "UPDATE safety_alert SET acknowledged = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AlertRepoPG) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*SafetyAlert, error) {
	q := fmt.Sprintf("SELECT %s FROM safety_alert WHERE consultation_id = $1 ORDER BY created_at ASC", alertCols)
	rows, err := r.conn(ctx).Query(ctx, q, consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SafetyAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *AlertRepoPG) List(ctx context.Context, limit, offset int) ([]*SafetyAlert, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM safety_alert").Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM safety_alert ORDER BY created_at DESC LIMIT $1 OFFSET $2", alertCols)
	rows, err := r.conn(ctx).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SafetyAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
