package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_Valid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cred := Credential{AccessToken: "tok", ExpiresAt: now.Add(time.Minute)}
	assert.True(t, cred.Valid(now))

	// Expiry instant itself is already invalid.
	assert.False(t, cred.Valid(now.Add(time.Minute)))
	assert.False(t, cred.Valid(now.Add(2*time.Minute)))

	// Zero-value credential is never valid.
	assert.False(t, Credential{}.Valid(now))
	assert.False(t, Credential{ExpiresAt: now.Add(time.Hour)}.Valid(now))
}

func TestCallbackEnvelope_Unmarshal(t *testing.T) {
	payload := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 500},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254708374149}
					]
				}
			}
		}
	}`

	var env CallbackEnvelope
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&env))

	cb := env.Body.StkCallback
	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)
	assert.Equal(t, 0, cb.ResultCode)
	require.NotNil(t, cb.CallbackMetadata)
	require.Len(t, cb.CallbackMetadata.Item, 4)
	assert.Equal(t, MetaAmount, cb.CallbackMetadata.Item[0].Name)
	assert.Equal(t, json.Number("500"), cb.CallbackMetadata.Item[0].Value)
}

func TestCallbackEnvelope_FailureHasNoMetadata(t *testing.T) {
	payload := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user."
			}
		}
	}`

	var env CallbackEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	cb := env.Body.StkCallback
	assert.Equal(t, 1032, cb.ResultCode)
	assert.Nil(t, cb.CallbackMetadata)
}

func TestPaymentResult_Succeeded(t *testing.T) {
	assert.True(t, PaymentResult{ResultCode: 0}.Succeeded())
	assert.False(t, PaymentResult{ResultCode: 1032}.Succeeded())
}

func TestPaymentResult_AmountRoundTrip(t *testing.T) {
	amount := json.Number("500")
	result := PaymentResult{
		CheckoutRequestID: "ws_CO_1",
		ResultCode:        0,
		Amount:            &amount,
	}

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"amount":500`)
}
