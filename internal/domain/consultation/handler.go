package consultation

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/clindoc/clindoc/internal/domain/ledger"
	"github.com/clindoc/clindoc/internal/platform/auth"
	"github.com/clindoc/clindoc/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse", "billing"))
	readGroup.GET("/consultations", h.List)
	readGroup.GET("/consultations/:id", h.Get)
	readGroup.GET("/consultations/:id/billing/preview", h.PreviewBilling)

	clinGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	clinGroup.POST("/consultations", h.Start)
	clinGroup.POST("/consultations/:id/field-updates", h.RecordFieldUpdate)
	clinGroup.POST("/consultations/:id/consents", h.RecordConsent)
	clinGroup.POST("/consultations/:id/documents-accessed", h.RecordDocumentAccess)
	clinGroup.POST("/consultations/:id/summary-sent", h.RecordSummarySent)
	clinGroup.POST("/consultations/:id/icd-codes", h.RecordICDMapping)

	docGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	docGroup.POST("/consultations/:id/prescriptions", h.AddPrescription)
	docGroup.POST("/consultations/:id/end", h.End)
	docGroup.POST("/safety-alerts/:id/acknowledge", h.AcknowledgeAlert)
	docGroup.POST("/safety-alerts/:id/override", h.OverrideAlert)
}

// actorFromContext derives the audit actor from the authenticated request.
// Unknown roles fall back to system so the ledger entry is still valid.
func actorFromContext(ctx context.Context) Actor {
	actor := Actor{ID: auth.UserIDFromContext(ctx), Role: ledger.RoleSystem}
	if actor.ID == "" {
		actor.ID = "system"
	}
	for _, r := range auth.RolesFromContext(ctx) {
		if role := ledger.ActorRole(r); ledger.ValidActorRole(role) {
			actor.Role = role
			break
		}
	}
	return actor
}

type StartRequest struct {
	PatientID      string   `json:"patientId"`
	PractitionerID string   `json:"practitionerId"`
	Allergies      []string `json:"allergies"`
}

type FieldUpdateRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

type PrescriptionRequest struct {
	Medication string `json:"medication"`
}

type ConsentRequest struct {
	ConsentType string `json:"consentType"`
	Granted     bool   `json:"granted"`
}

type DocumentAccessRequest struct {
	DocumentID string `json:"documentId"`
}

type SummarySentRequest struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
}

type ICDMappingRequest struct {
	Term string `json:"term"`
	Code string `json:"code"`
}

type OverrideRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Start(c echo.Context) error {
	var req StartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	cons, err := h.svc.Start(ctx, req.PatientID, req.PractitionerID, req.Allergies, actorFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cons)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cons, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) RecordFieldUpdate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req FieldUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	cons, err := h.svc.RecordFieldUpdate(ctx, id, req.Field, req.Value, actorFromContext(ctx))
	if err != nil {
		return consultationError(err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) AddPrescription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req PrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	cons, alerts, err := h.svc.AddPrescription(ctx, id, req.Medication, actorFromContext(ctx))
	if err != nil {
		return consultationError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"consultation": cons,
		"alerts":       alerts,
	})
}

func (h *Handler) AcknowledgeAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	a, err := h.svc.AcknowledgeAlert(ctx, id, actorFromContext(ctx))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "safety alert not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) OverrideAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req OverrideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.OverrideAlert(ctx, id, req.Reason, actorFromContext(ctx))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "safety alert not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) RecordConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ConsentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.RecordConsent(ctx, id, req.ConsentType, req.Granted, actorFromContext(ctx)); err != nil {
		return consultationError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RecordDocumentAccess(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req DocumentAccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.RecordDocumentAccess(ctx, id, req.DocumentID, actorFromContext(ctx)); err != nil {
		return consultationError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RecordSummarySent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req SummarySentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.RecordSummarySent(ctx, id, req.Channel, req.Recipient, actorFromContext(ctx)); err != nil {
		return consultationError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RecordICDMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ICDMappingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.RecordICDMapping(ctx, id, req.Term, req.Code, actorFromContext(ctx)); err != nil {
		return consultationError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) PreviewBilling(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	draft, err := h.svc.PreviewBilling(c.Request().Context(), id)
	if err != nil {
		return consultationError(err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) End(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	cons, inv, err := h.svc.End(ctx, id, actorFromContext(ctx))
	if err != nil {
		return consultationError(err)
	}
	resp := map[string]interface{}{"consultation": cons}
	if inv != nil {
		resp["invoice"] = inv
	}
	return c.JSON(http.StatusOK, resp)
}

func consultationError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "consultation not found")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
