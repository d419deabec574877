package ledger

import (
	"context"

	"github.com/google/uuid"
)

type LedgerRepository interface {
	Append(ctx context.Context, e *AuditEntry) error
	GetLatest(ctx context.Context, consultationID uuid.UUID) (*AuditEntry, error)
	ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*AuditEntry, error)
	List(ctx context.Context, limit, offset int) ([]*AuditEntry, int, error)
}
