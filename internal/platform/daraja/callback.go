package daraja

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedCallback indicates the callback payload is missing fields the
// gateway contract requires.
var ErrMalformedCallback = errors.New("malformed stk callback")

// Positional metadata indices the gateway documents for successful pushes.
// Used only when items carry no Name key.
const (
	metaIdxAmount  = 0
	metaIdxReceipt = 1
	metaIdxPhone   = 4
)

type callbackEnvelope struct {
	Body struct {
		StkCallback stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type stkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *callbackMetadata `json:"CallbackMetadata"`
}

type callbackMetadata struct {
	Item []metadataItem `json:"Item"`
}

type metadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// CallbackResult is the decoded outcome of one push attempt. Amount,
// ReceiptNumber, and PhoneNumber are populated only on success (ResultCode 0).
type CallbackResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            float64
	ReceiptNumber     string
	PhoneNumber       string
}

// Succeeded reports whether the payer authorized the payment.
func (r *CallbackResult) Succeeded() bool {
	return r.ResultCode == 0
}

// DecodeCallback parses the gateway's asynchronous result notification.
// Metadata items are resolved by their declared Name when present, falling
// back to the documented positional indices otherwise. A payload without the
// correlation ids, or a success payload without its metadata, is malformed.
func DecodeCallback(body []byte) (*CallbackResult, error) {
	var env callbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	cb := env.Body.StkCallback
	if cb.CheckoutRequestID == "" || cb.MerchantRequestID == "" {
		return nil, fmt.Errorf("%w: missing correlation identifiers", ErrMalformedCallback)
	}

	result := &CallbackResult{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}

	if cb.ResultCode != 0 {
		return result, nil
	}

	if cb.CallbackMetadata == nil || len(cb.CallbackMetadata.Item) == 0 {
		return nil, fmt.Errorf("%w: success callback without metadata", ErrMalformedCallback)
	}
	items := cb.CallbackMetadata.Item

	amountVal, ok := metaValue(items, "Amount", metaIdxAmount)
	if !ok {
		return nil, fmt.Errorf("%w: metadata missing amount", ErrMalformedCallback)
	}
	amount, err := toFloat(amountVal)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", ErrMalformedCallback, err)
	}

	receiptVal, ok := metaValue(items, "MpesaReceiptNumber", metaIdxReceipt)
	if !ok {
		return nil, fmt.Errorf("%w: metadata missing receipt number", ErrMalformedCallback)
	}

	phoneVal, ok := metaValue(items, "PhoneNumber", metaIdxPhone)
	if !ok {
		return nil, fmt.Errorf("%w: metadata missing phone number", ErrMalformedCallback)
	}

	result.Amount = amount
	result.ReceiptNumber = toString(receiptVal)
	result.PhoneNumber = toString(phoneVal)
	return result, nil
}

// metaValue looks an item up by declared name first, then by the documented
// position for payloads that omit Name keys.
func metaValue(items []metadataItem, name string, index int) (interface{}, bool) {
	named := false
	for _, item := range items {
		if item.Name != "" {
			named = true
		}
		if item.Name == name {
			return item.Value, true
		}
	}
	if !named && index < len(items) {
		return items[index].Value, true
	}
	return nil, false
}

func toFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %v", val, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// Phone numbers arrive as JSON numbers; they are integral.
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
