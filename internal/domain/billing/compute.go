package billing

import (
	"math"
	"strings"
)

const (
	baseFeeDescription = "General consultation"
	timeFeeDescription = "Consultation time"
)

// Compute derives a billing draft from the consultation's elapsed time and
// transcript. It is deterministic — identical inputs always produce an
// identical draft — and monotonic: recomputing with a grown transcript and the
// previous draft's line items as existingItems only ever adds lines, never
// removes or duplicates them.
//
// The base fee and time line are regenerated on every call (the time quantity
// tracks the current duration); procedure lines from existingItems are carried
// forward unchanged, and a rule whose description was already billed is never
// added twice even when its keyword reappears in the transcript. That makes
// repeated recomputation idempotent as the transcript grows.
//
// An empty transcript yields just the base fee and the one-minute-floor time
// item. Compute never fails.
func Compute(durationMs int64, transcript string, existingItems []BillingItem) BillingDraft {
	items := []BillingItem{}

	items = append(items, BillingItem{
		Description: baseFeeDescription,
		Category:    CategoryConsultation,
		Quantity:    1,
		UnitPrice:   BaseConsultationFee,
		Total:       BaseConsultationFee,
	})

	minutes := durationMs / 60000
	if minutes < 1 {
		minutes = 1
	}
	items = append(items, BillingItem{
		Description: timeFeeDescription,
		Category:    CategoryConsultation,
		Quantity:    int(minutes),
		UnitPrice:   TimeRatePerMinute,
		Total:       float64(minutes) * TimeRatePerMinute,
	})

	// Carry previously billed procedure lines forward; the base and time
	// lines were just regenerated, so skip their old copies.
	billed := map[string]bool{}
	for _, it := range existingItems {
		if it.Description == baseFeeDescription || it.Description == timeFeeDescription {
			continue
		}
		if billed[it.Description] {
			continue
		}
		billed[it.Description] = true
		items = append(items, it)
	}

	lower := strings.ToLower(transcript)
	for _, rule := range ProcedureRules() {
		if billed[rule.Description] {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				items = append(items, BillingItem{
					Description: rule.Description,
					Category:    rule.Category,
					Quantity:    1,
					UnitPrice:   rule.UnitPrice,
					Total:       rule.UnitPrice,
				})
				break
			}
		}
	}

	var subtotal float64
	for _, it := range items {
		subtotal += it.Total
	}
	tax := math.Round(subtotal * TaxRate)

	return BillingDraft{
		LineItems: items,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal + tax,
	}
}
