package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenesisHash is the previous_hash of the first entry in every chain. External
// verifiers must use the same sentinel.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// timestampLayout is the wire format for entry timestamps (RFC 3339, UTC).
// The fractional second is fixed-width: RFC3339Nano trims trailing zeros,
// which makes lexicographic order diverge from chronological order whenever
// one fraction is a prefix of another (".1234Z" sorts after ".12345Z").
// Stored timestamps must sort correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// canonicalJSON serializes a payload with stable key ordering. encoding/json
// sorts map keys at every nesting level, so two semantically identical payloads
// always produce identical bytes regardless of insertion order. A nil payload
// canonicalizes to an empty object so that "no payload" hashes consistently.
func canonicalJSON(payload map[string]interface{}) string {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		// Payloads are built from JSON-decoded values or string/number
		// literals, which always marshal. Fall back to an empty object
		// rather than poisoning the chain with a partial serialization.
		return "{}"
	}
	return string(b)
}

// ComputeHash derives the hash of one audit entry. The hash covers the
// previous entry's hash, so modifying any entry invalidates every entry after
// it. Pure function: identical inputs always yield an identical hex digest.
//
//	SHA-256(previous_hash | event_type | canonical_json(payload) | timestamp)
func ComputeHash(previousHash string, eventType EventType, payload map[string]interface{}, timestamp string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", previousHash, eventType, canonicalJSON(payload), timestamp)
	return hex.EncodeToString(h.Sum(nil))
}

// NewEntry builds a fully populated, hash-linked audit entry. The caller passes
// the hash of the chain's current last entry (or GenesisHash for the first).
// The entry is not persisted here; storage is the repository's concern.
func NewEntry(previousHash string, eventType EventType, consultationID uuid.UUID, actorID string, actorRole ActorRole, payload map[string]interface{}) *AuditEntry {
	ts := time.Now().UTC().Format(timestampLayout)
	return &AuditEntry{
		ID:             uuid.New(),
		ConsultationID: consultationID,
		EventType:      eventType,
		ActorID:        actorID,
		ActorRole:      actorRole,
		Payload:        payload,
		Timestamp:      ts,
		Hash:           ComputeHash(previousHash, eventType, payload, ts),
		PreviousHash:   previousHash,
	}
}

// VerifyChain walks entries in order and reports whether the chain is intact:
// the first entry links to GenesisHash, every later entry links to its
// predecessor's stored hash, and every stored hash matches a fresh
// recomputation from the entry's own fields. An empty chain is vacuously
// valid. Tampering is a boolean result, never an error — callers render a
// "chain broken" state rather than crash.
func VerifyChain(entries []*AuditEntry) bool {
	prev := GenesisHash
	for _, e := range entries {
		if e.PreviousHash != prev {
			return false
		}
		if ComputeHash(e.PreviousHash, e.EventType, e.Payload, e.Timestamp) != e.Hash {
			return false
		}
		prev = e.Hash
	}
	return true
}
