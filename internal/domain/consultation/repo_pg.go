package consultation

import (
	"context"
	"fmt"
	"time"

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

type ConsultationRepoPG struct {
	pool *pgxpool.Pool
}

func NewConsultationRepoPG(pool *pgxpool.Pool) *ConsultationRepoPG {
	return &ConsultationRepoPG{pool: pool}
}

func (r *ConsultationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const consultationCols = `id, patient_id, practitioner_id, status, started_at, ended_at,
	duration_ms, transcript, allergies, prescriptions, created_at, updated_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(
		&c.ID, &c.PatientID, &c.PractitionerID, &c.Status, &c.StartedAt, &c.EndedAt,
		&c.DurationMs, &c.Transcript, &c.Allergies, &c.Prescriptions, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConsultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	q := `INSERT INTO consultation (` + consultationCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.conn(ctx).Exec(ctx, q,
		c.ID, c.PatientID, c.PractitionerID, c.Status, c.StartedAt, c.EndedAt,
		c.DurationMs, c.Transcript, c.Allergies, c.Prescriptions, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ConsultationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	q := fmt.Sprintf("SELECT %s FROM consultation WHERE id = $1", consultationCols)
	return scanConsultation(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *ConsultationRepoPG) Update(ctx context.Context, c *Consultation) error {
	c.UpdatedAt = time.Now().UTC()
	q := `UPDATE consultation SET
		status = $2, ended_at = $3, duration_ms = $4, transcript = $5,
		allergies = $6, prescriptions = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.conn(ctx).Exec(ctx, q,
		c.ID, c.Status, c.EndedAt, c.DurationMs, c.Transcript,
		c.Allergies, c.Prescriptions, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ConsultationRepoPG) List(ctx context.Context, limit, offset int) ([]*Consultation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM consultation").Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM consultation ORDER BY started_at DESC LIMIT $1 OFFSET $2", consultationCols)
	rows, err := r.conn(ctx).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
