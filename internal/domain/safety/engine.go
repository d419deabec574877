package safety

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// normalize lowercases a drug or allergy name and strips everything that is
// not a letter or digit, so "Amoxicillin 500mg" and "amoxicillin" compare
// equal under containment.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matches reports whether two names refer to the same drug under the
// bidirectional substring heuristic. Either direction counts so that both
// brand-plus-dosage forms ("Warfarin 5mg" vs "warfarin") and rule keywords
// that embed the molecule name match.
func matches(a, b string) bool {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// pairKey is the dedup key for an alert: the unordered pair of drug names.
// Two rules that reference the same two drugs collapse to one alert, the
// first one generated, even when their severities differ. That mirrors the
// upstream requirement as stated; see DESIGN.md before changing it.
func pairKey(a, b string) string {
	na, nb := normalize(a), normalize(b)
	if na > nb {
		na, nb = nb, na
	}
	return na + "|" + nb
}

// Check screens prescribed medications against the patient's allergies and
// the static interaction table, returning one alert per triggered rule,
// deduplicated by unordered drug pair. Empty inputs yield an empty result.
// Blank entries are skipped rather than aborting: a partial safety scan is
// strictly better than none. Pure apart from uuid/clock reads; safe for
// concurrent use.
func Check(prescribedMeds, patientAllergies []string, consultationID uuid.UUID) []*SafetyAlert {
	alerts := []*SafetyAlert{}
	seen := map[string]bool{}
	now := time.Now().UTC()

	add := func(a *SafetyAlert) {
		var b string
		if a.DrugB != nil {
			b = *a.DrugB
		}
		key := pairKey(a.DrugA, b)
		if seen[key] {
			return
		}
		seen[key] = true
		alerts = append(alerts, a)
	}

	for _, rule := range AllergyRules() {
		var allergy string
		for _, pa := range patientAllergies {
			if matches(pa, rule.AllergyKeyword) {
				allergy = pa
				break
			}
		}
		if allergy == "" {
			continue
		}
		// One alert per triggered rule: stop at the first prescribed
		// medication that hits any contraindicated keyword.
		for _, med := range prescribedMeds {
			matched := ""
			for _, contra := range rule.Contraindicated {
				if matches(med, contra) {
					matched = contra
					break
				}
			}
			if matched == "" {
				continue
			}
			mechanism := rule.Mechanism
			add(&SafetyAlert{
				ID:             uuid.New(),
				ConsultationID: consultationID,
				AlertType:      AlertTypeAllergy,
				Severity:       rule.Severity,
				Title:          "Allergy conflict: " + rule.AllergyKeyword,
				Description:    "Patient reports " + rule.AllergyKeyword + " allergy; prescribed " + med + " is contraindicated.",
				DrugA:          med,
				Mechanism:      &mechanism,
				Alternatives:   rule.Alternatives,
				CreatedAt:      now,
			})
			break
		}
	}

	for _, rule := range InteractionRules() {
		medA := findMatch(prescribedMeds, rule.DrugA)
		medB := findMatch(prescribedMeds, rule.DrugB)
		if medA == "" || medB == "" {
			continue
		}
		mechanism := rule.Mechanism
		drugB := medB
		add(&SafetyAlert{
			ID:             uuid.New(),
			ConsultationID: consultationID,
			AlertType:      AlertTypeDrugInteraction,
			Severity:       rule.Severity,
			Title:          rule.Title,
			Description:    medA + " and " + medB + " should not be co-prescribed: " + rule.Mechanism,
			DrugA:          medA,
			DrugB:          &drugB,
			Mechanism:      &mechanism,
			Alternatives:   rule.Alternatives,
			CreatedAt:      now,
		})
	}

	return alerts
}

// findMatch returns the first prescribed medication matching keyword, or "".
func findMatch(meds []string, keyword string) string {
	for _, m := range meds {
		if matches(m, keyword) {
			return m
		}
	}
	return ""
}

// SortBySeverity orders alerts critical > high > medium > low, preserving
// generation order within a severity. The engine itself returns rule-table
// order; display ordering is the caller's concern.
func SortBySeverity(alerts []*SafetyAlert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
	})
}
