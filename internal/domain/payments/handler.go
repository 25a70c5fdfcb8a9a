package payments

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the payment endpoints. The callback route must be
// listed in the JWT skipper because the gateway cannot authenticate.
func (h *Handler) RegisterRoutes(api *echo.Group, policy auth.Policy) {
	api.POST("/patients/:patientID/payments/stk-push", h.Initiate, auth.RequirePermission(policy, auth.PermPaymentInitiate))
	api.POST("/payments/callback", h.Callback)
	api.GET("/payments/total-paid", h.TotalPaidAll, auth.RequirePermission(policy, auth.PermReportRead))
	api.GET("/payments/:id", h.Get, auth.RequirePermission(policy, auth.PermPaymentRead))
	api.GET("/patients/:patientID/payments", h.ListByPatient, auth.RequirePermission(policy, auth.PermPaymentRead))
	api.GET("/patients/:patientID/payments/total-paid", h.TotalPaid, auth.RequirePermission(policy, auth.PermPaymentRead))
}

type initiateBody struct {
	Amount      float64 `json:"amount"`
	PhoneNumber string  `json:"phone_number"`
	Description string  `json:"description"`
}

func httpError(err error) error {
	switch KindOf(err) {
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case KindUpstreamAuthError, KindUpstreamUnavailable:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case KindUpstreamRejected:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case KindAlreadyResolved:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case KindMalformedCallback:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "payment operation failed")
}

func (h *Handler) Initiate(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var body initiateBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	t, err := h.service.Initiate(c.Request().Context(), InitiateRequest{
		PatientID:   patientID,
		Amount:      body.Amount,
		PhoneNumber: body.PhoneNumber,
		Description: body.Description,
	}, principal.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusAccepted, t)
}

// Callback receives the gateway's result post. It always acknowledges with
// 200 for recognised outcomes, including replays, so the gateway stops
// retrying; only malformed payloads get a 400.
func (h *Handler) Callback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
	}

	t, err := h.service.Reconcile(c.Request().Context(), body)
	if err != nil {
		switch KindOf(err) {
		case KindAlreadyResolved, KindNotFound:
			return c.JSON(http.StatusOK, map[string]string{"ResultDesc": "Accepted"})
		case KindMalformedCallback:
			return echo.NewHTTPError(http.StatusBadRequest, "malformed callback")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "callback processing failed")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"ResultDesc": "Accepted",
		"status":     t.Status,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid transaction id")
	}

	t, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	params := pagination.FromContext(c)
	items, total, err := h.service.ListByPatient(c.Request().Context(), patientID, params.Limit, params.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list transactions")
	}
	if items == nil {
		items = []*Transaction{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, params.Limit, params.Offset))
}

func (h *Handler) TotalPaid(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	total, err := h.service.TotalPaid(c.Request().Context(), patientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"total_paid": total})
}

// TotalPaidAll reports the hospital-wide collected total for the admin
// dashboard.
func (h *Handler) TotalPaidAll(c echo.Context) error {
	total, err := h.service.TotalPaidAll(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"total_paid": total})
}
