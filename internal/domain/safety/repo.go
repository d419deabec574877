package safety

import (
	"context"

	"github.com/google/uuid"
)

type AlertRepository interface {
	Create(ctx context.Context, a *SafetyAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*SafetyAlert, error)
	SetAcknowledged(ctx context.Context, id uuid.UUID) error
	ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*SafetyAlert, error)
	List(ctx context.Context, limit, offset int) ([]*SafetyAlert, int, error)
}
