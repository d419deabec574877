package safety

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	readGroup := api.Group("", auth.RequireRole("admin", "doctor", "nurse", "pharmacist"))
	readGroup.GET("/safety-alerts", h.ListAlerts)
	readGroup.GET("/safety-alerts/:id", h.GetAlert)
	readGroup.GET("/consultations/:id/alerts", h.ListConsultationAlerts)

	writeGroup := api.Group("", auth.RequireRole("admin", "doctor"))
	writeGroup.POST("/safety-checks", h.RunCheck)
}

// CheckRequest is the stateless screening request body.
type CheckRequest struct {
	PrescribedMeds   []string  `json:"prescribedMeds"`
	PatientAllergies []string  `json:"patientAllergies"`
	ConsultationID   uuid.UUID `json:"consultationId"`
}

// RunCheck screens a prescription without touching any consultation state
// beyond storing the generated alerts.
func (h *Handler) RunCheck(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ConsultationID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "consultationId is required")
	}
	alerts, err := h.svc.RunCheck(c.Request().Context(), req.ConsultationID, req.PrescribedMeds, req.PatientAllergies)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (h *Handler) GetAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAlert(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "safety alert not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListConsultationAlerts(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	alerts, err := h.svc.ListByConsultation(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if alerts == nil {
		alerts = []*SafetyAlert{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (h *Handler) ListAlerts(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAlerts(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
