package domain

import (
	"encoding/json"
	"time"
)

// Credential is a short-lived bearer token for the gateway.
// ExpiresAt already includes the cache's safety margin; a Credential is never
// handed out once that instant has passed.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Valid reports whether the credential can still be used at the given instant.
func (c Credential) Valid(now time.Time) bool {
	return c.AccessToken != "" && now.Before(c.ExpiresAt)
}

// PushRequest is the payload sent to the gateway's STK processrequest endpoint.
// Field names and casing follow the Daraja wire format.
type PushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// PushAck is the gateway's synchronous answer to a push initiation.
// A zero ResponseCode only means the prompt was queued; the final outcome
// arrives later through the callback.
type PushAck struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// StatusQuery is the payload for the STK push query endpoint. Password and
// Timestamp are single-use, derived at the instant of the query.
type StatusQuery struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// CallbackEnvelope is the nested structure the gateway POSTs to /callback.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback carries the final outcome of one push.
type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata is a list of name/value pairs, present on success only.
type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// Metadata item names the gateway uses on successful payments.
const (
	MetaAmount          = "Amount"
	MetaReceiptNumber   = "MpesaReceiptNumber"
	MetaPhoneNumber     = "PhoneNumber"
	MetaTransactionDate = "TransactionDate"
)

// PaymentResult is the flattened outcome relayed to the wallet service.
// Amount keeps the gateway's numeric value untouched; a missing metadata item
// stays nil/empty rather than failing the relay.
type PaymentResult struct {
	CheckoutRequestID string       `json:"checkout_request_id"`
	MerchantRequestID string       `json:"merchant_request_id"`
	ResultCode        int          `json:"result_code"`
	ResultDesc        string       `json:"result_desc"`
	Amount            *json.Number `json:"amount,omitempty"`
	ReceiptNumber     string       `json:"receipt_number,omitempty"`
	PhoneNumber       string       `json:"phone_number,omitempty"`
	TransactionDate   string       `json:"transaction_date,omitempty"`
}

// Succeeded reports whether the payer approved and the payment completed.
func (r PaymentResult) Succeeded() bool {
	return r.ResultCode == 0
}
