package billing

import (
	"time"

	"github.com/google/uuid"
)

// Category buckets a billing line for reporting.
type Category string

const (
	CategoryConsultation  Category = "consultation"
	CategoryProcedure     Category = "procedure"
	CategoryInvestigation Category = "investigation"
	CategoryMedication    Category = "medication"
	CategoryEquipment     Category = "equipment"
)

// ProcedureRule maps transcript keywords to a fixed-price billable line.
// Rules are static process-wide state, loaded once and never mutated.
type ProcedureRule struct {
	Keywords    []string
	Description string
	UnitPrice   float64
	Category    Category
}

// BillingItem is one priced line on an invoice.
type BillingItem struct {
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unit_price"`
	Total       float64  `json:"total"`
}

// BillingDraft is the full itemized total derived from consultation activity.
// Subtotal = Σ item totals, Tax = round(Subtotal * TaxRate), Total = Subtotal + Tax.
type BillingDraft struct {
	LineItems []BillingItem `json:"line_items"`
	Subtotal  float64       `json:"subtotal"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
}

// Invoice maps to the invoice table: the finalized bill for a consultation.
type Invoice struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	ConsultationID uuid.UUID     `db:"consultation_id" json:"consultation_id"`
	LineItems      []BillingItem `db:"line_items" json:"line_items"`
	Subtotal       float64       `db:"subtotal" json:"subtotal"`
	Tax            float64       `db:"tax" json:"tax"`
	Total          float64       `db:"total" json:"total"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}
