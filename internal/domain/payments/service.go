package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/daraja"
	"github.com/hms/hms/internal/platform/metrics"
)

// Gateway is the slice of the Daraja client the service uses.
type Gateway interface {
	AccessToken(ctx context.Context) (string, error)
	STKPush(ctx context.Context, token string, push daraja.STKPushRequest) (*daraja.STKPushResponse, error)
}

type Service struct {
	transactions Repository
	patients     patient.Repository
	gateway      Gateway
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(transactions Repository, patients patient.Repository, gateway Gateway, logger zerolog.Logger) *Service {
	return &Service{
		transactions: transactions,
		patients:     patients,
		gateway:      gateway,
		logger:       logger,
		now:          time.Now,
	}
}

// InitiateRequest is the caller's view of an STK push. PhoneNumber may be
// empty, in which case the patient's registered number is charged.
type InitiateRequest struct {
	PatientID   uuid.UUID
	Amount      float64
	PhoneNumber string
	Description string
}

// Initiate runs the push flow against the gateway and persists a PENDING
// transaction only when the gateway accepted the request. Nothing is written
// for rejected or failed pushes.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest, initiatedBy uuid.UUID) (*Transaction, error) {
	if req.Amount <= 0 {
		return nil, newError(KindUpstreamRejected, "amount must be positive", nil)
	}

	p, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			metrics.PaymentInitiations.WithLabelValues("not_found").Inc()
			return nil, newError(KindNotFound, fmt.Sprintf("patient %s not found", req.PatientID), err)
		}
		return nil, err
	}

	phone := req.PhoneNumber
	if phone == "" {
		phone = p.PhoneNumber
	}
	desc := req.Description
	if desc == "" {
		desc = "Hospital bill payment"
	}

	token, err := s.gateway.AccessToken(ctx)
	if err != nil {
		metrics.PaymentInitiations.WithLabelValues("auth_error").Inc()
		return nil, newError(KindUpstreamAuthError, "gateway authentication failed", err)
	}

	resp, err := s.gateway.STKPush(ctx, token, daraja.STKPushRequest{
		Amount:           req.Amount,
		PhoneNumber:      phone,
		AccountReference: p.ID.String(),
		TransactionDesc:  desc,
	})
	if err != nil {
		var rejected *daraja.RejectedError
		if errors.As(err, &rejected) {
			metrics.PaymentInitiations.WithLabelValues("rejected").Inc()
			return nil, newError(KindUpstreamRejected, rejected.Message, err)
		}
		metrics.PaymentInitiations.WithLabelValues("unavailable").Inc()
		return nil, newError(KindUpstreamUnavailable, "gateway unreachable", err)
	}
	if !resp.Accepted() {
		metrics.PaymentInitiations.WithLabelValues("rejected").Inc()
		return nil, newError(KindUpstreamRejected,
			fmt.Sprintf("gateway declined push: %s", resp.ResponseDescription), nil)
	}

	t := &Transaction{
		PatientID:         p.ID,
		PhoneNumber:       phone,
		Amount:            req.Amount,
		AccountReference:  p.ID.String(),
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		Status:            StatusPending,
		InitiatedBy:       initiatedBy,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, err
	}

	metrics.PaymentInitiations.WithLabelValues("accepted").Inc()
	s.logger.Info().
		Str("checkout_request_id", t.CheckoutRequestID).
		Str("patient_id", p.ID.String()).
		Float64("amount", t.Amount).
		Msg("stk push accepted")
	return t, nil
}

// Reconcile applies a gateway callback to its pending transaction. The first
// callback settles the row; replays return an already-resolved error without
// mutating anything.
func (s *Service) Reconcile(ctx context.Context, body []byte) (*Transaction, error) {
	result, err := daraja.DecodeCallback(body)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues("malformed").Inc()
		return nil, newError(KindMalformedCallback, "undecodable callback payload", err)
	}

	res := Resolution{
		ResultCode: result.ResultCode,
		ResultDesc: result.ResultDesc,
		ResolvedAt: s.now().UTC(),
	}
	if result.Succeeded() {
		res.Status = StatusSucceeded
		res.Amount = result.Amount
		res.ReceiptNumber = result.ReceiptNumber
		res.PhoneNumber = result.PhoneNumber
	} else {
		res.Status = StatusFailed
	}

	t, err := s.transactions.Resolve(ctx, result.CheckoutRequestID, res)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyResolved):
			metrics.PaymentCallbacks.WithLabelValues("duplicate").Inc()
			s.logger.Info().
				Str("checkout_request_id", result.CheckoutRequestID).
				Msg("callback replay ignored")
			return nil, newError(KindAlreadyResolved,
				fmt.Sprintf("transaction %s already resolved", result.CheckoutRequestID), err)
		case errors.Is(err, ErrNotFound):
			metrics.PaymentCallbacks.WithLabelValues("unmatched").Inc()
			s.logger.Warn().
				Str("checkout_request_id", result.CheckoutRequestID).
				Str("merchant_request_id", result.MerchantRequestID).
				Int("result_code", result.ResultCode).
				Msg("callback for unknown transaction")
			return nil, newError(KindNotFound,
				fmt.Sprintf("no transaction for checkout request %s", result.CheckoutRequestID), err)
		}
		return nil, err
	}

	if t.Status == StatusSucceeded {
		metrics.PaymentCallbacks.WithLabelValues("success").Inc()
	} else {
		metrics.PaymentCallbacks.WithLabelValues("failure").Inc()
	}
	s.logger.Info().
		Str("checkout_request_id", t.CheckoutRequestID).
		Str("status", t.Status).
		Int("result_code", result.ResultCode).
		Msg("transaction reconciled")
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("transaction %s not found", id), err)
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	return s.transactions.ListByPatient(ctx, patientID, limit, offset)
}

// TotalPaid returns the sum of succeeded payments for a patient, zero when
// none exist.
func (s *Service) TotalPaid(ctx context.Context, patientID uuid.UUID) (float64, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return 0, newError(KindNotFound, fmt.Sprintf("patient %s not found", patientID), err)
		}
		return 0, err
	}
	return s.transactions.TotalPaid(ctx, patientID)
}

// TotalPaidAll returns the hospital-wide sum of succeeded payments.
func (s *Service) TotalPaidAll(ctx context.Context) (float64, error) {
	return s.transactions.TotalPaidAll(ctx)
}
