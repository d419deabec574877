package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clindoc/clindoc/internal/platform/auth"
)

// AccessEntry captures who touched which clinical record, when, and from
// where. It is the HTTP-level access log; the tamper-evident ledger inside the
// domain layer records the clinical events themselves.
type AccessEntry struct {
	UserID         string
	UserRoles      []string
	Resource       string
	ConsultationID string
	Action         string // read, create, update, delete
	IPAddress      string
	UserAgent      string
	Path           string
	Method         string
	Timestamp      time.Time
	RequestID      string
	StatusCode     int
}

// AccessRecorder persists access entries. Tests provide a mock; production
// wiring can fan entries into external audit storage.
type AccessRecorder interface {
	RecordAccess(entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(entry AccessEntry) error {
	return f(entry)
}

// Audit returns middleware that logs every /api/v1 request with the
// authenticated actor, the resource touched, and the consultation it belongs
// to when one appears in the path. If no AccessRecorder is provided it falls
// back to structured zerolog output only.
func Audit(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			// Execute the handler first so we capture the response status
			err := next(c)

			ctx := req.Context()
			entry := AccessEntry{
				UserID:         auth.UserIDFromContext(ctx),
				UserRoles:      auth.RolesFromContext(ctx),
				Resource:       extractResource(path),
				ConsultationID: extractConsultationID(path),
				Action:         httpMethodToAction(req.Method),
				IPAddress:      c.RealIP(),
				UserAgent:      req.UserAgent(),
				Path:           path,
				Method:         req.Method,
				Timestamp:      time.Now().UTC(),
				StatusCode:     c.Response().Status,
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record access entry")
				}
			}

			logger.Info().
				Str("type", "access_audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("consultation_id", entry.ConsultationID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

// httpMethodToAction maps HTTP methods to audit action codes.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource parses the first path segment under /api/v1/, e.g.
// /api/v1/consultations/123/ledger -> consultations.
func extractResource(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}

// extractConsultationID finds the consultation UUID in paths shaped like
// /api/v1/consultations/<uuid>/....
func extractConsultationID(path string) string {
	if !strings.HasPrefix(path, "/api/v1/consultations/") {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/consultations/"), "/")
	if len(segments) > 0 {
		if _, err := uuid.Parse(segments[0]); err == nil {
			return segments[0]
		}
	}
	return ""
}
