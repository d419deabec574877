package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists finalized invoices. One invoice per consultation.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*Invoice, int, error)
}
