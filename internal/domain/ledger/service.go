package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Service appends to and verifies per-consultation audit chains. Appends for
// one consultation are serialized through a per-consultation mutex: every
// entry depends on the previous entry's hash, so two concurrent appends to the
// same chain would otherwise both claim the same previous_hash and break
// verifiability. Different consultations never contend.
type Service struct {
	repo LedgerRepository

	mu     sync.Mutex
	chains map[uuid.UUID]*sync.Mutex
}

func NewService(repo LedgerRepository) *Service {
	return &Service{
		repo:   repo,
		chains: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) chainLock(consultationID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.chains[consultationID]
	if !ok {
		l = &sync.Mutex{}
		s.chains[consultationID] = l
	}
	return l
}

// Record appends one event to a consultation's chain and returns the stored
// entry. The previous hash is read under the chain lock so the single-writer
// invariant holds across goroutines within this process.
func (s *Service) Record(ctx context.Context, consultationID uuid.UUID, eventType EventType, actorID string, actorRole ActorRole, payload map[string]interface{}) (*AuditEntry, error) {
	if consultationID == uuid.Nil {
		return nil, fmt.Errorf("consultation_id is required")
	}
	if !ValidEventType(eventType) {
		return nil, fmt.Errorf("invalid event type: %s", eventType)
	}
	if actorID == "" {
		return nil, fmt.Errorf("actor_id is required")
	}

	lock := s.chainLock(consultationID)
	lock.Lock()
	defer lock.Unlock()

	prev := GenesisHash
	latest, err := s.repo.GetLatest(ctx, consultationID)
	if err != nil {
		return nil, fmt.Errorf("load chain head: %w", err)
	}
	if latest != nil {
		prev = latest.Hash
	}

	entry := NewEntry(prev, eventType, consultationID, actorID, actorRole, payload)
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append entry: %w", err)
	}
	return entry, nil
}

// Entries returns a consultation's chain in append order.
func (s *Service) Entries(ctx context.Context, consultationID uuid.UUID) ([]*AuditEntry, error) {
	return s.repo.ListByConsultation(ctx, consultationID)
}

// Verify loads a consultation's chain and checks its integrity. The bool is
// the verdict; the error covers only storage failures.
func (s *Service) Verify(ctx context.Context, consultationID uuid.UUID) (bool, int, error) {
	entries, err := s.repo.ListByConsultation(ctx, consultationID)
	if err != nil {
		return false, 0, err
	}
	return VerifyChain(entries), len(entries), nil
}

// ListEntries returns entries across all consultations, newest first.
func (s *Service) ListEntries(ctx context.Context, limit, offset int) ([]*AuditEntry, int, error) {
	return s.repo.List(ctx, limit, offset)
}
