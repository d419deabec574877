package billing

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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
	g := api.Group("", auth.RequireRole("admin", "doctor", "billing"))
	g.POST("/billing/preview", h.Preview)
	g.GET("/invoices", h.ListInvoices)
	g.GET("/consultations/:id/invoice", h.GetInvoice)
}

// PreviewRequest carries the inputs for a stateless billing computation.
type PreviewRequest struct {
	DurationMs    int64         `json:"durationMs"`
	Transcript    string        `json:"transcript"`
	ExistingItems []BillingItem `json:"existingItems"`
}

// Preview recomputes the draft from the supplied inputs without writing
// anything. Clients poll this while the consultation is still running.
func (h *Handler) Preview(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DurationMs < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "durationMs must not be negative")
	}
	draft := h.svc.Preview(req.DurationMs, req.Transcript, req.ExistingItems)
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.GetInvoice(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListInvoices(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
