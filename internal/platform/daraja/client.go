// Package daraja is a minimal client for the Safaricom Daraja API: OAuth
// token generation and Lipa na M-Pesa Online (STK push). Callback payload
// decoding lives in callback.go.
package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	tokenPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	// ResponseCodeAccepted is the gateway's "request accepted for processing"
	// response code. Anything else is a decline.
	ResponseCodeAccepted = "0"
)

// Config holds gateway credentials and endpoints.
type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
	RetryAttempts  int
}

// Client talks to the Daraja sandbox or production API. Every call applies
// the configured bounded timeout; an expired deadline surfaces as a plain
// transport error, which callers treat as gateway-unavailable.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
	now    func() time.Time
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
	}
}

// RejectedError indicates the gateway received, processed, and declined a
// push request. It is distinct from transport failures: the gateway was
// reachable and said no.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway rejected request (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway rejected request: %s", e.Message)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken fetches a short-lived bearer credential from the gateway's
// token endpoint using basic auth. No caching: each initiation fetches a
// fresh token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return tr.AccessToken, nil
}

// Password derives the push request signing password for the given instant:
// base64(shortcode || passkey || timestamp), timestamp formatted YYYYMMDDHHMMSS.
func Password(shortcode, passkey string, t time.Time) (password, timestamp string) {
	timestamp = t.Format("20060102150405")
	password = base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
	return password, timestamp
}

// STKPushRequest carries the caller-supplied fields of a push request.
type STKPushRequest struct {
	Amount           float64
	PhoneNumber      string
	AccountReference string
	TransactionDesc  string
}

// STKPushResponse is the gateway's synchronous answer to a push request.
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the gateway accepted the push for processing.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == ResponseCodeAccepted
}

type gatewayErrorBody struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type stkPushBody struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPush submits a CustomerPayBillOnline push request. It retries transport
// failures up to the configured attempt count (default zero: no retries, the
// caller re-initiates with a fresh request). Gateway declines are never
// retried.
func (c *Client) STKPush(ctx context.Context, token string, push STKPushRequest) (*STKPushResponse, error) {
	password, timestamp := Password(c.cfg.Shortcode, c.cfg.Passkey, c.now())

	body := stkPushBody{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            fmt.Sprintf("%.0f", push.Amount),
		PartyA:            push.PhoneNumber,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       push.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  push.AccountReference,
		TransactionDesc:   push.TransactionDesc,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal push request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("retrying stk push")
		}
		resp, err := c.doPush(ctx, token, payload)
		if err == nil {
			return resp, nil
		}
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) doPush(ctx context.Context, token string, payload []byte) (*STKPushResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+stkPushPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read push response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr gatewayErrorBody
		if err := json.Unmarshal(raw, &gwErr); err == nil && gwErr.ErrorMessage != "" {
			return nil, &RejectedError{Code: gwErr.ErrorCode, Message: gwErr.ErrorMessage}
		}
		return nil, fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(raw, &pushResp); err != nil {
		return nil, fmt.Errorf("decode push response: %w", err)
	}
	return &pushResp, nil
}
