package consultation

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
}

// ValidStatus reports whether s is a known consultation status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// Consultation maps to the consultation table. The transcript is the full
// running text as last reported by the client; duration_ms is fixed when the
// consultation ends.
type Consultation struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      string     `db:"patient_id" json:"patientId"`
	PractitionerID string     `db:"practitioner_id" json:"practitionerId"`
	Status         string     `db:"status" json:"status"`
	StartedAt      time.Time  `db:"started_at" json:"startedAt"`
	EndedAt        *time.Time `db:"ended_at" json:"endedAt,omitempty"`
	DurationMs     int64      `db:"duration_ms" json:"durationMs"`
	Transcript     string     `db:"transcript" json:"transcript"`
	Allergies      []string   `db:"allergies" json:"allergies"`
	Prescriptions  []string   `db:"prescriptions" json:"prescriptions"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// ElapsedMs returns the duration to bill against: the frozen duration once the
// consultation has ended, the live elapsed time while it is still active.
func (c *Consultation) ElapsedMs(now time.Time) int64 {
	if c.Status == StatusCompleted {
		return c.DurationMs
	}
	return now.Sub(c.StartedAt).Milliseconds()
}
