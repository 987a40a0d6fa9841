package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
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
					{"Name": "Amount", "Value": 500},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254708374149}
				]
			}
		}
	}
}`

const cancelledCallback = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 1032,
			"ResultDesc": "Request cancelled by user."
		}
	}
}`

func newRelayFixture(t *testing.T) (*mocks.MockResultForwarder, *mocks.MockDedupeStore, *relayService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	forwarder := mocks.NewMockResultForwarder(ctrl)
	dedupe := mocks.NewMockDedupeStore(ctrl)
	svc := NewRelayService(forwarder, dedupe, newTestLogger()).(*relayService)
	return forwarder, dedupe, svc
}

func TestProcess_SuccessForwardsMetadata(t *testing.T) {
	forwarder, dedupe, svc := newRelayFixture(t)

	dedupe.EXPECT().FirstSeen(gomock.Any(), "ws_CO_191220191020363925", dedupeTTL).Return(true, nil)

	var forwarded domain.PaymentResult
	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, result domain.PaymentResult) error {
			forwarded = result
			return nil
		})

	svc.Process(context.Background(), []byte(successCallback))

	assert.Equal(t, "ws_CO_191220191020363925", forwarded.CheckoutRequestID)
	assert.Equal(t, 0, forwarded.ResultCode)
	require.NotNil(t, forwarded.Amount)
	assert.Equal(t, json.Number("500"), *forwarded.Amount)
	assert.Equal(t, "NLJ7RT61SV", forwarded.ReceiptNumber)
	assert.Equal(t, "254708374149", forwarded.PhoneNumber)
	assert.Equal(t, "20191219102115", forwarded.TransactionDate)
}

func TestProcess_AmountForwardedExactly(t *testing.T) {
	forwarder, dedupe, svc := newRelayFixture(t)

	dedupe.EXPECT().FirstSeen(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, result domain.PaymentResult) error {
			out, err := json.Marshal(result)
			require.NoError(t, err)
			// No unit conversion, no float drift.
			assert.Contains(t, string(out), `"amount":500`)
			return nil
		})

	svc.Process(context.Background(), []byte(successCallback))
}

func TestProcess_FailureResultHasNoMetadata(t *testing.T) {
	forwarder, dedupe, svc := newRelayFixture(t)

	dedupe.EXPECT().FirstSeen(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	var forwarded domain.PaymentResult
	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, result domain.PaymentResult) error {
			forwarded = result
			return nil
		})

	svc.Process(context.Background(), []byte(cancelledCallback))

	assert.Equal(t, 1032, forwarded.ResultCode)
	assert.Equal(t, "Request cancelled by user.", forwarded.ResultDesc)
	assert.Nil(t, forwarded.Amount)
	assert.Empty(t, forwarded.ReceiptNumber)
}

func TestProcess_MissingMetadataItemsTolerated(t *testing.T) {
	forwarder, dedupe, svc := newRelayFixture(t)

	payload := `{
		"Body": {
			"stkCallback": {
				"CheckoutRequestID": "ws_CO_1",
				"ResultCode": 0,
				"ResultDesc": "ok",
				"CallbackMetadata": {"Item": [{"Name": "Amount", "Value": 42}]}
			}
		}
	}`

	dedupe.EXPECT().FirstSeen(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	var forwarded domain.PaymentResult
	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, result domain.PaymentResult) error {
			forwarded = result
			return nil
		})

	svc.Process(context.Background(), []byte(payload))

	require.NotNil(t, forwarded.Amount)
	assert.Equal(t, json.Number("42"), *forwarded.Amount)
	assert.Empty(t, forwarded.ReceiptNumber)
	assert.Empty(t, forwarded.PhoneNumber)
}

func TestProcess_ForwardFailureIsSwallowed(t *testing.T) {
	forwarder, dedupe, svc := newRelayFixture(t)

	dedupe.EXPECT().FirstSeen(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(errors.New("wallet unreachable"))

	// Must not panic or propagate anything.
	svc.Process(context.Background(), []byte(successCallback))
}

func TestProcess_DuplicateCallbackSkipsForward(t *testing.T) {
	_, dedupe, svc := newRelayFixture(t)

	dedupe.EXPECT().FirstSeen(gomock.Any(), "ws_CO_191220191020363925", dedupeTTL).Return(false, nil)
	// No Forward expectation: a forward would fail the controller.

	svc.Process(context.Background(), []byte(successCallback))
}

func TestProcess_DedupeErrorDegradesOpen(t *testing.T) {
	forwarder, dedupe, svc := newRelayFixture(t)

	dedupe.EXPECT().FirstSeen(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil)

	svc.Process(context.Background(), []byte(successCallback))
}

func TestProcess_MalformedPayloadIgnored(t *testing.T) {
	_, _, svc := newRelayFixture(t)

	// Neither dedupe nor forward may be called.
	svc.Process(context.Background(), []byte("not json at all"))
	svc.Process(context.Background(), []byte(`{"Body":{}}`))
}

func TestProcess_NilDedupeStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	forwarder := mocks.NewMockResultForwarder(ctrl)
	forwarder.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil)

	svc := NewRelayService(forwarder, nil, newTestLogger())
	svc.Process(context.Background(), []byte(successCallback))
}
