package safety

import (
	"testing"

	"github.com/google/uuid"
)

func TestCheck_AllergyConflict(t *testing.T) {
	id := uuid.New()
	alerts := Check([]string{"Amoxicillin 500mg"}, []string{"Penicillin"}, id)

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.AlertType != AlertTypeAllergy {
		t.Errorf("expected allergy alert, got %s", a.AlertType)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", a.Severity)
	}
	if a.DrugA != "Amoxicillin 500mg" {
		t.Errorf("expected alert to carry the prescribed name, got %s", a.DrugA)
	}
	if a.ConsultationID != id {
		t.Error("expected alert bound to the consultation")
	}
	if len(a.Alternatives) == 0 {
		t.Error("expected alternatives to be suggested")
	}
}

func TestCheck_DrugInteraction(t *testing.T) {
	alerts := Check([]string{"Warfarin 5mg", "Aspirin 75mg"}, nil, uuid.New())

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.AlertType != AlertTypeDrugInteraction {
		t.Errorf("expected drug_interaction alert, got %s", a.AlertType)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", a.Severity)
	}
	if a.DrugB == nil || *a.DrugB != "Aspirin 75mg" {
		t.Error("expected second drug recorded on the alert")
	}
}

func TestCheck_EmptyInputs(t *testing.T) {
	if got := Check(nil, nil, uuid.New()); len(got) != 0 {
		t.Errorf("expected no alerts for empty inputs, got %d", len(got))
	}
	if got := Check([]string{"Metformin"}, nil, uuid.New()); len(got) != 0 {
		t.Errorf("expected no alerts for a clean prescription, got %d", len(got))
	}
	if got := Check(nil, []string{"penicillin"}, uuid.New()); len(got) != 0 {
		t.Errorf("expected no alerts with nothing prescribed, got %d", len(got))
	}
}

func TestCheck_BlankEntriesSkipped(t *testing.T) {
	alerts := Check([]string{"", "  ", "Warfarin", "Ibuprofen"}, []string{""}, uuid.New())
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert despite blank entries, got %d", len(alerts))
	}
}

func TestCheck_DedupByDrugPair(t *testing.T) {
	// Aspirin allergy plus an aspirin prescription triggers the allergy
	// rule once even though several contraindicated keywords overlap.
	alerts := Check([]string{"Aspirin", "Ibuprofen"}, []string{"aspirin"}, uuid.New())
	byType := map[AlertType]int{}
	for _, a := range alerts {
		byType[a.AlertType]++
	}
	if byType[AlertTypeAllergy] != 1 {
		t.Errorf("expected a single allergy alert, got %d", byType[AlertTypeAllergy])
	}
}

func TestCheck_MultipleRules(t *testing.T) {
	alerts := Check(
		[]string{"Warfarin", "Aspirin", "Tramadol", "Sertraline"},
		[]string{"codeine"},
		uuid.New(),
	)

	// codeine allergy vs tramadol, warfarin+aspirin, tramadol+sertraline.
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
}

func TestMatches_Bidirectional(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Warfarin 5mg", "warfarin", true},
		{"warfarin", "Warfarin 5mg", true},
		{"AMOXICILLIN-500", "amoxicillin", true},
		{"ibuprofen", "naproxen", false},
		{"", "warfarin", false},
	}
	for _, tc := range cases {
		if got := matches(tc.a, tc.b); got != tc.want {
			t.Errorf("matches(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize("Amoxicillin 500mg"); got != "amoxicillin500mg" {
		t.Errorf("unexpected normalization: %q", got)
	}
	if got := normalize("  Co-Trimoxazole "); got != "cotrimoxazole" {
		t.Errorf("unexpected normalization: %q", got)
	}
}

func TestSortBySeverity(t *testing.T) {
	alerts := []*SafetyAlert{
		{Title: "med", Severity: SeverityMedium},
		{Title: "crit", Severity: SeverityCritical},
		{Title: "high-1", Severity: SeverityHigh},
		{Title: "high-2", Severity: SeverityHigh},
	}
	SortBySeverity(alerts)

	want := []string{"crit", "high-1", "high-2", "med"}
	for i, w := range want {
		if alerts[i].Title != w {
			t.Errorf("position %d: got %s, want %s", i, alerts[i].Title, w)
		}
	}
}
