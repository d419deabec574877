package ledger

import (
	"github.com/google/uuid"
)

// EventType classifies the consultation action an audit entry records.
type EventType string

const (
	EventConsultationStarted     EventType = "CONSULTATION_STARTED"
	EventConsultationEnded       EventType = "CONSULTATION_ENDED"
	EventEMRFieldUpdated         EventType = "EMR_FIELD_UPDATED"
	EventSafetyAlertTriggered    EventType = "SAFETY_ALERT_TRIGGERED"
	EventSafetyAlertAcknowledged EventType = "SAFETY_ALERT_ACKNOWLEDGED"
	EventPrescriptionAdded       EventType = "PRESCRIPTION_ADDED"
	EventSummarySentToPatient    EventType = "SUMMARY_SENT_TO_PATIENT"
	EventDocumentAccessed        EventType = "DOCUMENT_ACCESSED"
	EventConsentRecorded         EventType = "CONSENT_RECORDED"
	EventICDCodeMapped           EventType = "ICD_CODE_MAPPED"
	EventAlertOverridden         EventType = "ALERT_OVERRIDDEN"
)

var validEventTypes = map[EventType]bool{
	EventConsultationStarted:     true,
	EventConsultationEnded:       true,
	EventEMRFieldUpdated:         true,
	EventSafetyAlertTriggered:    true,
	EventSafetyAlertAcknowledged: true,
	EventPrescriptionAdded:       true,
	EventSummarySentToPatient:    true,
	EventDocumentAccessed:        true,
	EventConsentRecorded:         true,
	EventICDCodeMapped:           true,
	EventAlertOverridden:         true,
}

// ValidEventType reports whether t is one of the recognized audit event types.
func ValidEventType(t EventType) bool { return validEventTypes[t] }

// ActorRole identifies the kind of user (or system process) that caused an event.
type ActorRole string

const (
	RoleDoctor  ActorRole = "doctor"
	RoleNurse   ActorRole = "nurse"
	RoleAdmin   ActorRole = "admin"
	RolePatient ActorRole = "patient"
	RoleSystem  ActorRole = "system"
)

var validActorRoles = map[ActorRole]bool{
	RoleDoctor:  true,
	RoleNurse:   true,
	RoleAdmin:   true,
	RolePatient: true,
	RoleSystem:  true,
}

// ValidActorRole reports whether r is one of the recognized actor roles.
func ValidActorRole(r ActorRole) bool { return validActorRoles[r] }

// AuditEntry maps to the audit_entry table. Entries are append-only: once
// written they are never updated or deleted, and each entry embeds the hash of
// its predecessor so retroactive edits are detectable.
//
// Timestamp is kept as the RFC 3339 UTC string that was hashed, not a
// time.Time, so the hashed bytes survive a database round trip unchanged.
type AuditEntry struct {
	Seq            int64                  `db:"seq" json:"seq"`
	ID             uuid.UUID              `db:"id" json:"id"`
	ConsultationID uuid.UUID              `db:"consultation_id" json:"consultation_id"`
	EventType      EventType              `db:"event_type" json:"event_type"`
	ActorID        string                 `db:"actor_id" json:"actor_id"`
	ActorRole      ActorRole              `db:"actor_role" json:"actor_role"`
	Payload        map[string]interface{} `db:"payload" json:"payload"`
	Timestamp      string                 `db:"ts" json:"timestamp"`
	Hash           string                 `db:"hash" json:"hash"`
	PreviousHash   string                 `db:"previous_hash" json:"previous_hash"`
}
