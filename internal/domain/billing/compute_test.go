package billing

import (
	"reflect"
	"testing"
)

func TestCompute_EmptyTranscript(t *testing.T) {
	draft := Compute(10*60000, "", nil)

	if len(draft.LineItems) != 2 {
		t.Fatalf("expected base fee and time item only, got %d items", len(draft.LineItems))
	}
	if draft.LineItems[0].Total != BaseConsultationFee {
		t.Errorf("expected base fee %v, got %v", BaseConsultationFee, draft.LineItems[0].Total)
	}
	if draft.LineItems[1].Quantity != 10 || draft.LineItems[1].Total != 100.0 {
		t.Errorf("expected 10 minutes at %v, got qty=%d total=%v",
			TimeRatePerMinute, draft.LineItems[1].Quantity, draft.LineItems[1].Total)
	}
	if draft.Subtotal != 600.0 {
		t.Errorf("expected subtotal 600, got %v", draft.Subtotal)
	}
	if draft.Tax != 30.0 {
		t.Errorf("expected tax 30, got %v", draft.Tax)
	}
	if draft.Total != 630.0 {
		t.Errorf("expected total 630, got %v", draft.Total)
	}
}

func TestCompute_MinuteFloor(t *testing.T) {
	for _, ms := range []int64{0, 1, 59999} {
		draft := Compute(ms, "", nil)
		if draft.LineItems[1].Quantity != 1 {
			t.Errorf("duration %dms: expected one-minute floor, got qty=%d", ms, draft.LineItems[1].Quantity)
		}
	}
}

func TestCompute_TranscriptProcedures(t *testing.T) {
	draft := Compute(60000, "Ordered an ECG and a blood test; gave a tetanus injection.", nil)

	want := map[string]bool{
		"ECG (12-lead)":            true,
		"Complete blood count":     true,
		"Injection administration": true,
	}
	got := 0
	for _, it := range draft.LineItems[2:] {
		if !want[it.Description] {
			t.Errorf("unexpected line: %s", it.Description)
		}
		got++
	}
	if got != len(want) {
		t.Errorf("expected %d procedure lines, got %d", len(want), got)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a := Compute(5*60000, "ecg and x-ray performed", nil)
	b := Compute(5*60000, "ecg and x-ray performed", nil)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must produce identical drafts")
	}
}

func TestCompute_IdempotentWithExistingItems(t *testing.T) {
	first := Compute(5*60000, "performed an ecg", nil)
	second := Compute(5*60000, "performed an ecg", first.LineItems)

	if !reflect.DeepEqual(first, second) {
		t.Error("recomputing with the previous draft must not change the bill")
	}
}

func TestCompute_MonotonicAsTranscriptGrows(t *testing.T) {
	first := Compute(5*60000, "performed an ecg", nil)
	second := Compute(8*60000, "performed an ecg. applied wound dressing.", first.LineItems)

	descs := map[string]int{}
	for _, it := range second.LineItems {
		descs[it.Description]++
	}
	for d, n := range descs {
		if n != 1 {
			t.Errorf("line %q appears %d times", d, n)
		}
	}
	if descs["ECG (12-lead)"] != 1 {
		t.Error("previously billed procedure must be carried forward")
	}
	if descs["Wound dressing"] != 1 {
		t.Error("newly mentioned procedure must be added")
	}
	if second.LineItems[1].Quantity != 8 {
		t.Errorf("time quantity must track current duration, got %d", second.LineItems[1].Quantity)
	}
	if second.Total <= first.Total {
		t.Error("growing the transcript must not lower the total")
	}
}

func TestCompute_RepeatedKeywordBilledOnce(t *testing.T) {
	draft := Compute(60000, "ecg done. reviewed the ecg. second ecg reading normal.", nil)

	count := 0
	for _, it := range draft.LineItems {
		if it.Description == "ECG (12-lead)" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected one ECG line, got %d", count)
	}
}

func TestCompute_TaxRounding(t *testing.T) {
	// base 500 + 1 minute 10 + urinalysis 200 = 710; 5% = 35.5 rounds to 36.
	draft := Compute(60000, "urine test sent to lab", nil)
	if draft.Subtotal != 710.0 {
		t.Fatalf("expected subtotal 710, got %v", draft.Subtotal)
	}
	if draft.Tax != 36.0 {
		t.Errorf("expected tax rounded to 36, got %v", draft.Tax)
	}
	if draft.Total != 746.0 {
		t.Errorf("expected total 746, got %v", draft.Total)
	}
}

func TestCompute_CaseInsensitiveKeywords(t *testing.T) {
	draft := Compute(60000, "Patient received a VACCINATION today.", nil)
	found := false
	for _, it := range draft.LineItems {
		if it.Description == "Vaccine administration" {
			found = true
		}
	}
	if !found {
		t.Error("keyword matching must ignore case")
	}
}
