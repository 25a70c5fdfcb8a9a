package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group, policy auth.Policy) {
	api.POST("/patients/:patientID/appointments", h.Book, auth.RequirePermission(policy, auth.PermAppointmentBook))
	api.GET("/patients/:patientID/appointments", h.ListByPatient, auth.RequirePermission(policy, auth.PermAppointmentRead))
	api.GET("/appointments/mine", h.ListMine, auth.RequirePermission(policy, auth.PermAppointmentRead))
	api.GET("/appointments/per-day", h.PerDay, auth.RequirePermission(policy, auth.PermReportRead))
}

func (h *Handler) Book(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.PatientID = patientID

	principal, _ := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Book(c.Request().Context(), &a, principal.UserID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	principal, _ := auth.PrincipalFromContext(c.Request().Context())
	items, total, err := h.svc.ListByBookedBy(c.Request().Context(), principal.UserID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PerDay(c echo.Context) error {
	counts, err := h.svc.PerDay(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if counts == nil {
		counts = []*DayCount{}
	}
	return c.JSON(http.StatusOK, counts)
}
