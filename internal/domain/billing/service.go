package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrAlreadyInvoiced is returned when finalizing a consultation that already
// has an invoice.
var ErrAlreadyInvoiced = errors.New("consultation already invoiced")

type Service struct {
	invoices InvoiceRepository
}

func NewService(invoices InvoiceRepository) *Service {
	return &Service{invoices: invoices}
}

// Preview computes a billing draft without persisting anything. The same
// inputs always produce the same draft.
func (s *Service) Preview(durationMs int64, transcript string, existingItems []BillingItem) BillingDraft {
	return Compute(durationMs, transcript, existingItems)
}

// Finalize computes the final draft for a completed consultation and stores it
// as the consultation's invoice. At most one invoice exists per consultation.
func (s *Service) Finalize(ctx context.Context, consultationID uuid.UUID, durationMs int64, transcript string, existingItems []BillingItem) (*Invoice, error) {
	existing, err := s.invoices.GetByConsultation(ctx, consultationID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check invoice: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyInvoiced
	}

	draft := Compute(durationMs, transcript, existingItems)
	inv := &Invoice{
		ID:             uuid.New(),
		ConsultationID: consultationID,
		LineItems:      draft.LineItems,
		Subtotal:       draft.Subtotal,
		Tax:            draft.Tax,
		Total:          draft.Total,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("store invoice: %w", err)
	}
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, consultationID uuid.UUID) (*Invoice, error) {
	return s.invoices.GetByConsultation(ctx, consultationID)
}

func (s *Service) ListInvoices(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	return s.invoices.List(ctx, limit, offset)
}
