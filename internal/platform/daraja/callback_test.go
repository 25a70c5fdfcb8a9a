package daraja

import (
	"errors"
	"testing"
)

const successCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 500.00},
					{"Name": "MpesaReceiptNumber", "Value": "QAI2V4XH5T"},
					{"Name": "Balance"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254700000000}
				]
			}
		}
	}
}`

const failureCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user."
		}
	}
}`

func TestDecodeCallback_Success(t *testing.T) {
	result, err := DecodeCallback([]byte(successCallback))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Succeeded() {
		t.Error("expected success result")
	}
	if result.CheckoutRequestID != "ws_CO_191220191020363925" {
		t.Errorf("wrong checkout request id: %s", result.CheckoutRequestID)
	}
	if result.Amount != 500 {
		t.Errorf("expected amount 500, got %v", result.Amount)
	}
	if result.ReceiptNumber != "QAI2V4XH5T" {
		t.Errorf("wrong receipt number: %s", result.ReceiptNumber)
	}
	if result.PhoneNumber != "254700000000" {
		t.Errorf("wrong phone number: %s", result.PhoneNumber)
	}
}

func TestDecodeCallback_Failure(t *testing.T) {
	result, err := DecodeCallback([]byte(failureCallback))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Succeeded() {
		t.Error("expected failure result")
	}
	if result.ResultCode != 1032 {
		t.Errorf("wrong result code: %d", result.ResultCode)
	}
	if result.Amount != 0 || result.ReceiptNumber != "" || result.PhoneNumber != "" {
		t.Error("failure callback must not carry payment metadata")
	}
}

func TestDecodeCallback_PositionalMetadata(t *testing.T) {
	// Some gateway environments omit Name keys; values are positional.
	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "m-1",
				"CheckoutRequestID": "c-1",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {
					"Item": [
						{"Value": 500},
						{"Value": "QAI2V"},
						{"Value": 0},
						{"Value": 20191219102115},
						{"Value": "254700000000"}
					]
				}
			}
		}
	}`
	result, err := DecodeCallback([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Amount != 500 {
		t.Errorf("expected amount 500, got %v", result.Amount)
	}
	if result.ReceiptNumber != "QAI2V" {
		t.Errorf("wrong receipt number: %s", result.ReceiptNumber)
	}
	if result.PhoneNumber != "254700000000" {
		t.Errorf("wrong phone number: %s", result.PhoneNumber)
	}
}

func TestDecodeCallback_Malformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"empty object", `{}`},
		{"missing correlation ids", `{"Body":{"stkCallback":{"ResultCode":0}}}`},
		{"success without metadata", `{"Body":{"stkCallback":{"MerchantRequestID":"m","CheckoutRequestID":"c","ResultCode":0}}}`},
		{"success with empty metadata", `{"Body":{"stkCallback":{"MerchantRequestID":"m","CheckoutRequestID":"c","ResultCode":0,"CallbackMetadata":{"Item":[]}}}}`},
		{"named items missing amount", `{"Body":{"stkCallback":{"MerchantRequestID":"m","CheckoutRequestID":"c","ResultCode":0,"CallbackMetadata":{"Item":[{"Name":"PhoneNumber","Value":254700000000}]}}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCallback([]byte(tc.body))
			if !errors.Is(err, ErrMalformedCallback) {
				t.Errorf("expected ErrMalformedCallback, got %v", err)
			}
		})
	}
}

func TestDecodeCallback_StringAmount(t *testing.T) {
	body := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "m-1",
				"CheckoutRequestID": "c-1",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": "250.50"},
						{"Name": "MpesaReceiptNumber", "Value": "ABC123"},
						{"Name": "PhoneNumber", "Value": "254711111111"}
					]
				}
			}
		}
	}`
	result, err := DecodeCallback([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Amount != 250.50 {
		t.Errorf("expected amount 250.50, got %v", result.Amount)
	}
}
