package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clindoc/clindoc/internal/domain/billing"
	"github.com/clindoc/clindoc/internal/domain/ledger"
	"github.com/clindoc/clindoc/internal/domain/safety"
)

// Actor identifies who performed an operation, for the audit trail.
type Actor struct {
	ID   string
	Role ledger.ActorRole
}

// Service orchestrates the consultation lifecycle. Every state change appends
// a ledger event; safety screening and billing are advisory and must never
// block the clinical action that triggered them.
type Service struct {
	repo    ConsultationRepository
	ledger  *ledger.Service
	safety  *safety.Service
	billing *billing.Service
	log     zerolog.Logger
}

func NewService(repo ConsultationRepository, led *ledger.Service, saf *safety.Service, bil *billing.Service, log zerolog.Logger) *Service {
	return &Service{repo: repo, ledger: led, safety: saf, billing: bil, log: log}
}

// record appends a ledger event for the consultation. Append failures are
// surfaced to the caller: an action that cannot be audited must not succeed
// silently.
func (s *Service) record(ctx context.Context, consultationID uuid.UUID, eventType ledger.EventType, actor Actor, payload map[string]interface{}) error {
	if _, err := s.ledger.Record(ctx, consultationID, eventType, actor.ID, actor.Role, payload); err != nil {
		return fmt.Errorf("append %s: %w", eventType, err)
	}
	return nil
}

func (s *Service) Start(ctx context.Context, patientID, practitionerID string, allergies []string, actor Actor) (*Consultation, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patientId is required")
	}
	if practitionerID == "" {
		return nil, fmt.Errorf("practitionerId is required")
	}

	now := time.Now().UTC()
	c := &Consultation{
		ID:             uuid.New(),
		PatientID:      patientID,
		PractitionerID: practitionerID,
		Status:         StatusActive,
		StartedAt:      now,
		Allergies:      allergies,
		Prescriptions:  []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create consultation: %w", err)
	}

	err := s.record(ctx, c.ID, ledger.EventConsultationStarted, actor, map[string]interface{}{
		"patientId":      patientID,
		"practitionerId": practitionerID,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Consultation, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// RecordFieldUpdate applies an EMR field change. The transcript field replaces
// the stored transcript wholesale; clients send the full text as it grows.
func (s *Service) RecordFieldUpdate(ctx context.Context, id uuid.UUID, field string, value interface{}, actor Actor) (*Consultation, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required")
	}
	c, err := s.activeConsultation(ctx, id)
	if err != nil {
		return nil, err
	}

	if field == "transcript" {
		text, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("transcript value must be a string")
		}
		c.Transcript = text
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("update consultation: %w", err)
		}
	}

	err = s.record(ctx, id, ledger.EventEMRFieldUpdated, actor, map[string]interface{}{
		"field": field,
		"value": value,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// AddPrescription records the medication, then screens the full prescription
// list against the patient's allergies. A failed screening is logged and the
// prescription still goes through; each stored alert gets its own ledger event.
func (s *Service) AddPrescription(ctx context.Context, id uuid.UUID, medication string, actor Actor) (*Consultation, []*safety.SafetyAlert, error) {
	if medication == "" {
		return nil, nil, fmt.Errorf("medication is required")
	}
	c, err := s.activeConsultation(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	c.Prescriptions = append(c.Prescriptions, medication)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("update consultation: %w", err)
	}

	err = s.record(ctx, id, ledger.EventPrescriptionAdded, actor, map[string]interface{}{
		"medication": medication,
	})
	if err != nil {
		return nil, nil, err
	}

	alerts, err := s.safety.RunCheck(ctx, id, c.Prescriptions, c.Allergies)
	if err != nil {
		s.log.Error().Err(err).Str("consultation_id", id.String()).
			Msg("safety check failed, prescription recorded without screening")
		return c, nil, nil
	}
	for _, a := range alerts {
		err := s.record(ctx, id, ledger.EventSafetyAlertTriggered, actor, map[string]interface{}{
			"alertId":  a.ID.String(),
			"type":     string(a.AlertType),
			"severity": string(a.Severity),
			"title":    a.Title,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return c, alerts, nil
}

// AcknowledgeAlert marks the alert reviewed and records the acknowledgement.
func (s *Service) AcknowledgeAlert(ctx context.Context, alertID uuid.UUID, actor Actor) (*safety.SafetyAlert, error) {
	a, err := s.safety.Acknowledge(ctx, alertID)
	if err != nil {
		return nil, err
	}
	err = s.record(ctx, a.ConsultationID, ledger.EventSafetyAlertAcknowledged, actor, map[string]interface{}{
		"alertId": alertID.String(),
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// OverrideAlert acknowledges the alert and records the practitioner's reason
// for proceeding despite it. The reason is mandatory.
func (s *Service) OverrideAlert(ctx context.Context, alertID uuid.UUID, reason string, actor Actor) (*safety.SafetyAlert, error) {
	if reason == "" {
		return nil, fmt.Errorf("reason is required")
	}
	a, err := s.safety.Acknowledge(ctx, alertID)
	if err != nil {
		return nil, err
	}
	err = s.record(ctx, a.ConsultationID, ledger.EventAlertOverridden, actor, map[string]interface{}{
		"alertId": alertID.String(),
		"reason":  reason,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) RecordConsent(ctx context.Context, id uuid.UUID, consentType string, granted bool, actor Actor) error {
	if consentType == "" {
		return fmt.Errorf("consentType is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.record(ctx, id, ledger.EventConsentRecorded, actor, map[string]interface{}{
		"consentType": consentType,
		"granted":     granted,
	})
}

func (s *Service) RecordDocumentAccess(ctx context.Context, id uuid.UUID, documentID string, actor Actor) error {
	if documentID == "" {
		return fmt.Errorf("documentId is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.record(ctx, id, ledger.EventDocumentAccessed, actor, map[string]interface{}{
		"documentId": documentID,
	})
}

func (s *Service) RecordSummarySent(ctx context.Context, id uuid.UUID, channel, recipient string, actor Actor) error {
	if channel == "" {
		return fmt.Errorf("channel is required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.record(ctx, id, ledger.EventSummarySentToPatient, actor, map[string]interface{}{
		"channel":   channel,
		"recipient": recipient,
	})
}

func (s *Service) RecordICDMapping(ctx context.Context, id uuid.UUID, term, code string, actor Actor) error {
	if term == "" || code == "" {
		return fmt.Errorf("term and code are required")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.record(ctx, id, ledger.EventICDCodeMapped, actor, map[string]interface{}{
		"term": term,
		"code": code,
	})
}

// PreviewBilling derives the current draft from the consultation's elapsed
// time and transcript. Read-only: no ledger event, nothing persisted.
func (s *Service) PreviewBilling(ctx context.Context, id uuid.UUID) (billing.BillingDraft, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return billing.BillingDraft{}, err
	}
	return s.billing.Preview(c.ElapsedMs(time.Now().UTC()), c.Transcript, nil), nil
}

// End completes the consultation, freezes its duration, appends the end event,
// and finalizes the invoice. A billing failure is logged without undoing the
// completed consultation.
func (s *Service) End(ctx context.Context, id uuid.UUID, actor Actor) (*Consultation, *billing.Invoice, error) {
	c, err := s.activeConsultation(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	c.Status = StatusCompleted
	c.EndedAt = &now
	c.DurationMs = now.Sub(c.StartedAt).Milliseconds()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("update consultation: %w", err)
	}

	err = s.record(ctx, id, ledger.EventConsultationEnded, actor, map[string]interface{}{
		"durationMs": c.DurationMs,
	})
	if err != nil {
		return nil, nil, err
	}

	inv, err := s.billing.Finalize(ctx, id, c.DurationMs, c.Transcript, nil)
	if err != nil {
		s.log.Error().Err(err).Str("consultation_id", id.String()).
			Msg("invoice finalization failed, consultation ended without invoice")
		return c, nil, nil
	}
	return c, inv, nil
}

func (s *Service) activeConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusActive {
		return nil, fmt.Errorf("consultation %s is not active", id)
	}
	return c, nil
}
