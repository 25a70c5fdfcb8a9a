package prescription

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/medicalrecord"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(api *echo.Group, policy auth.Policy) {
	api.POST("/medical-records/:recordID/prescriptions", h.Prescribe, auth.RequirePermission(policy, auth.PermPrescriptionWrite))
	api.GET("/medical-records/:recordID/prescriptions", h.ListByMedicalRecord, auth.RequirePermission(policy, auth.PermPrescriptionRead))
	api.GET("/prescriptions", h.List, auth.RequirePermission(policy, auth.PermPrescriptionRead))
	api.GET("/prescriptions/:id", h.Get, auth.RequirePermission(policy, auth.PermPrescriptionRead))
}

func (h *Handler) Prescribe(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("recordID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medical record id")
	}

	var p Prescription
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.MedicalRecordID = recordID

	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.service.Prescribe(c.Request().Context(), &p, principal.UserID); err != nil {
		if errors.Is(err, medicalrecord.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid prescription id")
	}

	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "prescription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get prescription")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByMedicalRecord(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("recordID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid medical record id")
	}

	items, err := h.service.ListByMedicalRecord(c.Request().Context(), recordID)
	if err != nil {
		if errors.Is(err, medicalrecord.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	if items == nil {
		items = []*Prescription{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) List(c echo.Context) error {
	params := pagination.FromContext(c)
	items, total, err := h.service.List(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list prescriptions")
	}
	if items == nil {
		items = []*Prescription{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}
