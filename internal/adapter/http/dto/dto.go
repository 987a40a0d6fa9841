package dto

import (
	"encoding/json"
	"strings"
)

// PayRequest is the request body for POST /pay. Amount is accepted as either
// a JSON number or a string; validation happens in the push service.
type PayRequest struct {
	Phone       string     `json:"phone"`
	Amount      FlexAmount `json:"amount"`
	Description string     `json:"description"`
}

// FlexAmount captures a JSON number or string as its raw text.
type FlexAmount string

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	token := strings.TrimSpace(string(data))
	if token == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(token, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = FlexAmount(s)
		return nil
	}
	*a = FlexAmount(token)
	return nil
}

func (a FlexAmount) String() string {
	return string(a)
}

// PayResponse is the success body for POST /pay. The gateway-cased fields are
// part of the external contract.
type PayResponse struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	MerchantRequestID string `json:"MerchantRequestID"`
	Message           string `json:"message"`
}

// CallbackAck is the fixed acknowledgement returned to the gateway on every
// POST /callback, regardless of internal outcome.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// TokenResponse is the body for GET /token (debugging affordance).
type TokenResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

// HealthResponse is the body for GET /health. Endpoint values only, never
// secrets.
type HealthResponse struct {
	Status        string             `json:"status"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	GatewayURL    string             `json:"gateway_url"`
	CallbackURL   string             `json:"callback_url"`
	WalletURL     string             `json:"wallet_url"`
	Dependencies  []DependencyStatus `json:"dependencies,omitempty"`
}

type DependencyStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}
