package records

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/clinic/internal/platform/auth"
	"github.com/dentora/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/records", h.CreateRecord,
		auth.RequireRole("ASSISTANT", "RECEPTIONIST", "DOCTOR"))
	api.GET("/records/:id", h.GetRecord,
		auth.RequireRole("ASSISTANT", "RECEPTIONIST", "DOCTOR"))
	api.POST("/records/:id/approve", h.Approve, auth.RequireRole("DOCTOR"))
	api.POST("/records/:id/reject", h.Reject, auth.RequireRole("DOCTOR"))
	api.GET("/doctors/:id/records", h.ListForDoctor, auth.RequireRole("DOCTOR"))
	api.GET("/doctors/:id/records/summary", h.Summarize, auth.RequireRole("DOCTOR"))
}

// Both the wrong-reviewer and the already-decided outcomes get the same
// client-facing message so the response does not leak which one happened.
const reviewDeniedMsg = "already reviewed or not yours to review"

func httpError(err error) *echo.HTTPError {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, reviewDeniedMsg)
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, reviewDeniedMsg)
	case errors.Is(err, ErrStaffInactive):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "staff member is not active")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func callerStaffID(c echo.Context) (uuid.UUID, error) {
	raw := auth.StaffIDFromContext(c.Request().Context())
	if raw == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing staff identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid staff identity")
	}
	return id, nil
}

func (h *Handler) CreateRecord(c echo.Context) error {
	creator, err := callerStaffID(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.CreateRecord(c.Request().Context(), creator, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reviewer, err := callerStaffID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Approve(c.Request().Context(), id, reviewer)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reviewer, err := callerStaffID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Reject(c.Request().Context(), id, reviewer, body.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	filter, err := ParseFilter(strings.ToUpper(c.QueryParam("filter")))
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForDoctor(c.Request().Context(), id, filter, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Summarize(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	summary, err := h.svc.Summarize(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
