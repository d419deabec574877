package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clindoc/clindoc/internal/platform/auth"
)

func TestAudit_RecordsAPIAccess(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations", nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, "dr-patel")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"doctor"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-123")

	var recorded []AccessEntry
	recorder := AccessRecorderFunc(func(entry AccessEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	handler := func(c echo.Context) error {
		return c.String(http.StatusCreated, "created")
	}

	mw := Audit(zerolog.Nop(), recorder)
	h := mw(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorded) != 1 {
		t.Fatalf("expected 1 access entry, got %d", len(recorded))
	}
	entry := recorded[0]
	if entry.UserID != "dr-patel" {
		t.Errorf("expected user dr-patel, got %s", entry.UserID)
	}
	if entry.Resource != "consultations" {
		t.Errorf("expected resource consultations, got %s", entry.Resource)
	}
	if entry.Action != "create" {
		t.Errorf("expected action create, got %s", entry.Action)
	}
	if entry.RequestID != "req-123" {
		t.Errorf("expected req-123, got %s", entry.RequestID)
	}
	if entry.StatusCode != http.StatusCreated {
		t.Errorf("expected status 201, got %d", entry.StatusCode)
	}
}

func TestAudit_ExtractsConsultationID(t *testing.T) {
	id := "7b1c2e48-9a3d-4f6e-8b5a-1c2d3e4f5a6b"
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/consultations/"+id+"/ledger", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var recorded []AccessEntry
	recorder := AccessRecorderFunc(func(entry AccessEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Audit(zerolog.Nop(), recorder)
	h := mw(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorded) != 1 {
		t.Fatalf("expected 1 access entry, got %d", len(recorded))
	}
	if recorded[0].ConsultationID != id {
		t.Errorf("expected consultation id %s, got %s", id, recorded[0].ConsultationID)
	}
	if recorded[0].Action != "read" {
		t.Errorf("expected action read, got %s", recorded[0].Action)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var recorded []AccessEntry
	recorder := AccessRecorderFunc(func(entry AccessEntry) error {
		recorded = append(recorded, entry)
		return nil
	})

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Audit(zerolog.Nop(), recorder)
	h := mw(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recorded) != 0 {
		t.Errorf("expected no access entries for non-API path, got %d", len(recorded))
	}
}

func TestExtractResource(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/consultations", "consultations"},
		{"/api/v1/consultations/abc/ledger", "consultations"},
		{"/api/v1/safety-alerts/abc", "safety-alerts"},
		{"/api/v1/", "unknown"},
	}
	for _, tt := range tests {
		if got := extractResource(tt.path); got != tt.want {
			t.Errorf("extractResource(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
