package consultation

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clindoc/clindoc/internal/domain/billing"
	"github.com/clindoc/clindoc/internal/domain/ledger"
	"github.com/clindoc/clindoc/internal/domain/safety"
)

type mockConsultationRepo struct {
	byID  map[uuid.UUID]*Consultation
	order []uuid.UUID
}

func newMockConsultationRepo() *mockConsultationRepo {
	return &mockConsultationRepo{byID: map[uuid.UUID]*Consultation{}}
}

func (m *mockConsultationRepo) Create(ctx context.Context, c *Consultation) error {
	cp := *c
	m.byID[c.ID] = &cp
	m.order = append(m.order, c.ID)
	return nil
}

func (m *mockConsultationRepo) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *mockConsultationRepo) Update(ctx context.Context, c *Consultation) error {
	if _, ok := m.byID[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *mockConsultationRepo) List(ctx context.Context, limit, offset int) ([]*Consultation, int, error) {
	var out []*Consultation
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out, len(out), nil
}

type mockLedgerRepo struct {
	mu      sync.Mutex
	entries []*ledger.AuditEntry
}

func (m *mockLedgerRepo) Append(ctx context.Context, e *ledger.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockLedgerRepo) GetLatest(ctx context.Context, consultationID uuid.UUID) (*ledger.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].ConsultationID == consultationID {
			return m.entries[i], nil
		}
	}
	return nil, nil
}

func (m *mockLedgerRepo) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*ledger.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ledger.AuditEntry
	for _, e := range m.entries {
		if e.ConsultationID == consultationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLedgerRepo) List(ctx context.Context, limit, offset int) ([]*ledger.AuditEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, len(m.entries), nil
}

func (m *mockLedgerRepo) eventTypes(consultationID uuid.UUID) []ledger.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.EventType
	for _, e := range m.entries {
		if e.ConsultationID == consultationID {
			out = append(out, e.EventType)
		}
	}
	return out
}

type mockAlertRepo struct {
	alerts map[uuid.UUID]*safety.SafetyAlert
	failed bool
}

var errAlertStore = pgx.ErrTxClosed

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{alerts: map[uuid.UUID]*safety.SafetyAlert{}}
}

func (m *mockAlertRepo) Create(ctx context.Context, a *safety.SafetyAlert) error {
	if m.failed {
		return errAlertStore
	}
	m.alerts[a.ID] = a
	return nil
}

func (m *mockAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (*safety.SafetyAlert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAlertRepo) SetAcknowledged(ctx context.Context, id uuid.UUID) error {
	a, ok := m.alerts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Acknowledged = true
	return nil
}

func (m *mockAlertRepo) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*safety.SafetyAlert, error) {
	var out []*safety.SafetyAlert
	for _, a := range m.alerts {
		if a.ConsultationID == consultationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAlertRepo) List(ctx context.Context, limit, offset int) ([]*safety.SafetyAlert, int, error) {
	var out []*safety.SafetyAlert
	for _, a := range m.alerts {
		out = append(out, a)
	}
	return out, len(out), nil
}

type mockInvoiceRepo struct {
	byConsultation map[uuid.UUID]*billing.Invoice
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{byConsultation: map[uuid.UUID]*billing.Invoice{}}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *billing.Invoice) error {
	m.byConsultation[inv.ConsultationID] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByConsultation(ctx context.Context, consultationID uuid.UUID) (*billing.Invoice, error) {
	inv, ok := m.byConsultation[consultationID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return inv, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, limit, offset int) ([]*billing.Invoice, int, error) {
	var out []*billing.Invoice
	for _, inv := range m.byConsultation {
		out = append(out, inv)
	}
	return out, len(out), nil
}

type fixture struct {
	svc      *Service
	repo     *mockConsultationRepo
	ledger   *mockLedgerRepo
	alerts   *mockAlertRepo
	invoices *mockInvoiceRepo
}

func newFixture() *fixture {
	repo := newMockConsultationRepo()
	led := &mockLedgerRepo{}
	alerts := newMockAlertRepo()
	invoices := newMockInvoiceRepo()
	svc := NewService(repo,
		ledger.NewService(led),
		safety.NewService(alerts),
		billing.NewService(invoices),
		zerolog.Nop(),
	)
	return &fixture{svc: svc, repo: repo, ledger: led, alerts: alerts, invoices: invoices}
}

var doctor = Actor{ID: "dr-patel", Role: ledger.RoleDoctor}

func TestService_Start(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.svc.Start(ctx, "pat-1", "dr-patel", []string{"penicillin"}, doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != StatusActive {
		t.Errorf("expected active status, got %s", c.Status)
	}
	if len(c.Allergies) != 1 {
		t.Errorf("expected allergies stored, got %v", c.Allergies)
	}

	events := f.ledger.eventTypes(c.ID)
	if len(events) != 1 || events[0] != ledger.EventConsultationStarted {
		t.Errorf("expected CONSULTATION_STARTED event, got %v", events)
	}
	if f.ledger.entries[0].PreviousHash != ledger.GenesisHash {
		t.Error("expected first event to link to genesis")
	}
}

func TestService_StartRequiresParticipants(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, "", "dr-patel", nil, doctor); err == nil {
		t.Error("expected error for missing patient")
	}
	if _, err := f.svc.Start(ctx, "pat-1", "", nil, doctor); err == nil {
		t.Error("expected error for missing practitioner")
	}
}

func TestService_AddPrescriptionTriggersScreening(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.svc.Start(ctx, "pat-1", "dr-patel", []string{"penicillin"}, doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, alerts, err := f.svc.AddPrescription(ctx, c.ID, "Amoxicillin 500mg", doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Prescriptions) != 1 {
		t.Errorf("expected prescription recorded, got %v", updated.Prescriptions)
	}
	if len(alerts) != 1 || alerts[0].AlertType != safety.AlertTypeAllergy {
		t.Fatalf("expected one allergy alert, got %v", alerts)
	}

	events := f.ledger.eventTypes(c.ID)
	want := []ledger.EventType{
		ledger.EventConsultationStarted,
		ledger.EventPrescriptionAdded,
		ledger.EventSafetyAlertTriggered,
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), events)
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("event %d: got %s, want %s", i, events[i], w)
		}
	}
}

func TestService_AddPrescriptionSurvivesScreeningFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.svc.Start(ctx, "pat-1", "dr-patel", []string{"penicillin"}, doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.alerts.failed = true
	updated, alerts, err := f.svc.AddPrescription(ctx, c.ID, "Amoxicillin", doctor)
	if err != nil {
		t.Fatalf("screening failure must not block the prescription: %v", err)
	}
	if len(updated.Prescriptions) != 1 {
		t.Error("expected prescription recorded despite screening failure")
	}
	if alerts != nil {
		t.Errorf("expected no alerts on screening failure, got %v", alerts)
	}
}

func TestService_AcknowledgeAndOverrideAlert(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, _ := f.svc.Start(ctx, "pat-1", "dr-patel", []string{"penicillin"}, doctor)
	_, alerts, err := f.svc.AddPrescription(ctx, c.ID, "Amoxicillin", doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	a, err := f.svc.AcknowledgeAlert(ctx, alerts[0].ID, doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Acknowledged {
		t.Error("expected alert acknowledged")
	}

	if _, err := f.svc.OverrideAlert(ctx, alerts[0].ID, "", doctor); err == nil {
		t.Error("expected error for empty override reason")
	}
	if _, err := f.svc.OverrideAlert(ctx, alerts[0].ID, "benefit outweighs risk", doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := f.ledger.eventTypes(c.ID)
	last := events[len(events)-1]
	if last != ledger.EventAlertOverridden {
		t.Errorf("expected ALERT_OVERRIDDEN last, got %s", last)
	}
}

func TestService_RecordFieldUpdateTranscript(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, _ := f.svc.Start(ctx, "pat-1", "dr-patel", nil, doctor)

	updated, err := f.svc.RecordFieldUpdate(ctx, c.ID, "transcript", "patient reports headache", doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Transcript != "patient reports headache" {
		t.Errorf("expected transcript replaced, got %q", updated.Transcript)
	}

	stored, _ := f.repo.GetByID(ctx, c.ID)
	if stored.Transcript != "patient reports headache" {
		t.Error("expected transcript persisted")
	}

	events := f.ledger.eventTypes(c.ID)
	if events[len(events)-1] != ledger.EventEMRFieldUpdated {
		t.Errorf("expected EMR_FIELD_UPDATED event, got %v", events)
	}
}

func TestService_LifecycleEventsRequireConsultation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	missing := uuid.New()

	if err := f.svc.RecordConsent(ctx, missing, "data_sharing", true, doctor); err == nil {
		t.Error("expected error for unknown consultation")
	}
	if err := f.svc.RecordDocumentAccess(ctx, missing, "doc-1", doctor); err == nil {
		t.Error("expected error for unknown consultation")
	}
	if err := f.svc.RecordSummarySent(ctx, missing, "email", "pat@example.com", doctor); err == nil {
		t.Error("expected error for unknown consultation")
	}
	if err := f.svc.RecordICDMapping(ctx, missing, "migraine", "G43.9", doctor); err == nil {
		t.Error("expected error for unknown consultation")
	}
}

func TestService_EndFreezesAndInvoices(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, _ := f.svc.Start(ctx, "pat-1", "dr-patel", nil, doctor)
	if _, err := f.svc.RecordFieldUpdate(ctx, c.ID, "transcript", "performed an ecg", doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done, inv, err := f.svc.End(ctx, c.ID, doctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected completed status, got %s", done.Status)
	}
	if done.EndedAt == nil {
		t.Error("expected end time set")
	}
	if inv == nil {
		t.Fatal("expected invoice finalized")
	}

	billedECG := false
	for _, it := range inv.LineItems {
		if it.Description == "ECG (12-lead)" {
			billedECG = true
		}
	}
	if !billedECG {
		t.Error("expected transcript procedure on the invoice")
	}

	// Ending again must fail: the consultation is no longer active.
	if _, _, err := f.svc.End(ctx, c.ID, doctor); err == nil {
		t.Error("expected error ending a completed consultation")
	}

	events := f.ledger.eventTypes(c.ID)
	if events[len(events)-1] != ledger.EventConsultationEnded {
		t.Errorf("expected CONSULTATION_ENDED last, got %v", events)
	}

	valid, _, err := ledger.NewService(f.ledger).Verify(ctx, c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected chain to verify across the full lifecycle")
	}
}

func TestService_ActionsRejectedOnCompletedConsultation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, _ := f.svc.Start(ctx, "pat-1", "dr-patel", nil, doctor)
	if _, _, err := f.svc.End(ctx, c.ID, doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := f.svc.AddPrescription(ctx, c.ID, "Metformin", doctor); err == nil {
		t.Error("expected error prescribing on completed consultation")
	}
	if _, err := f.svc.RecordFieldUpdate(ctx, c.ID, "transcript", "late note", doctor); err == nil {
		t.Error("expected error updating completed consultation")
	}
}

func TestService_PreviewBilling(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, _ := f.svc.Start(ctx, "pat-1", "dr-patel", nil, doctor)
	if _, err := f.svc.RecordFieldUpdate(ctx, c.ID, "transcript", "urine test collected", doctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := f.svc.PreviewBilling(ctx, c.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(draft.LineItems) != 3 {
		t.Errorf("expected base, time, and urinalysis lines, got %d", len(draft.LineItems))
	}
	if len(f.invoices.byConsultation) != 0 {
		t.Error("preview must not persist an invoice")
	}
}
