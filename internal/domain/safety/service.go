package safety

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	alerts AlertRepository
}

func NewService(alerts AlertRepository) *Service {
	return &Service{alerts: alerts}
}

// RunCheck screens the prescription, persists every resulting alert with the
// unacknowledged default, and returns them sorted for display.
func (s *Service) RunCheck(ctx context.Context, consultationID uuid.UUID, prescribedMeds, patientAllergies []string) ([]*SafetyAlert, error) {
	alerts := Check(prescribedMeds, patientAllergies, consultationID)
	for _, a := range alerts {
		a.Acknowledged = false
		if err := s.alerts.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("store alert: %w", err)
		}
	}
	SortBySeverity(alerts)
	return alerts, nil
}

func (s *Service) GetAlert(ctx context.Context, id uuid.UUID) (*SafetyAlert, error) {
	return s.alerts.GetByID(ctx, id)
}

// Acknowledge marks an alert as reviewed. The transition is one-way; there is
// no un-acknowledge.
func (s *Service) Acknowledge(ctx context.Context, id uuid.UUID) (*SafetyAlert, error) {
	if err := s.alerts.SetAcknowledged(ctx, id); err != nil {
		return nil, err
	}
	return s.alerts.GetByID(ctx, id)
}

func (s *Service) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*SafetyAlert, error) {
	alerts, err := s.alerts.ListByConsultation(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	SortBySeverity(alerts)
	return alerts, nil
}

func (s *Service) ListAlerts(ctx context.Context, limit, offset int) ([]*SafetyAlert, int, error) {
	return s.alerts.List(ctx, limit, offset)
}
