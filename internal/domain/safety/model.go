package safety

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades how dangerous a matched rule is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRank orders severities for display (lower rank sorts first).
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// AlertType distinguishes the two families of safety findings.
type AlertType string

const (
	AlertTypeAllergy         AlertType = "allergy"
	AlertTypeDrugInteraction AlertType = "drug_interaction"
)

// AllergyRule maps a patient-reported allergy keyword to the medications that
// must never be prescribed with it. Rules are static process-wide state,
// loaded once and never mutated.
type AllergyRule struct {
	AllergyKeyword  string
	Contraindicated []string
	Severity        Severity
	Mechanism       string
	Alternatives    []string
}

// InteractionRule describes a clinically significant risk when two specific
// medications are co-prescribed.
type InteractionRule struct {
	DrugA        string
	DrugB        string
	Severity     Severity
	Title        string
	Mechanism    string
	Alternatives []string
}

// SafetyAlert maps to the safety_alert table.
type SafetyAlert struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConsultationID uuid.UUID `db:"consultation_id" json:"consultation_id"`
	AlertType      AlertType `db:"alert_type" json:"alert_type"`
	Severity       Severity  `db:"severity" json:"severity"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	DrugA          string    `db:"drug_a" json:"drug_a"`
	DrugB          *string   `db:"drug_b" json:"drug_b,omitempty"`
	Mechanism      *string   `db:"mechanism" json:"mechanism,omitempty"`
	Alternatives   []string  `db:"alternatives" json:"alternatives"`
	Acknowledged   bool      `db:"acknowledged" json:"acknowledged"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
