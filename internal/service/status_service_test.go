package service

import (
	"context"
	"encoding/json"
	"testing"

	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports/mocks"
	"mpesa-push-relay/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestQueryStatus_ReturnsRawBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creds := mocks.NewMockCredentialProvider(ctrl)
	gateway := mocks.NewMockGatewayClient(ctrl)
	svc := NewStatusService(newTestBuilder(), creds, gateway, newTestLogger())

	raw := json.RawMessage(`{"ResponseCode":"0","ResultCode":"1032","ResultDesc":"Request cancelled by user"}`)

	creds.EXPECT().Credential(gomock.Any()).Return(validCred(), nil)
	gateway.EXPECT().QueryStatus(gomock.Any(), "tok", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, query domain.StatusQuery) (json.RawMessage, error) {
			assert.Equal(t, "ws_CO_1", query.CheckoutRequestID)
			assert.Equal(t, "174379", query.BusinessShortCode)
			assert.NotEmpty(t, query.Password)
			assert.Len(t, query.Timestamp, 14)
			return raw, nil
		})

	body, err := svc.QueryStatus(context.Background(), "ws_CO_1")
	require.NoError(t, err)
	// Returned unmodified: code interpretation is the caller's business.
	assert.JSONEq(t, string(raw), string(body))
}

func TestQueryStatus_EmptyCheckoutID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewStatusService(newTestBuilder(),
		mocks.NewMockCredentialProvider(ctrl),
		mocks.NewMockGatewayClient(ctrl),
		newTestLogger())

	_, err := svc.QueryStatus(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "VAL_001"))
}

func TestQueryStatus_CredentialFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creds := mocks.NewMockCredentialProvider(ctrl)
	gateway := mocks.NewMockGatewayClient(ctrl)
	svc := NewStatusService(newTestBuilder(), creds, gateway, newTestLogger())

	creds.EXPECT().Credential(gomock.Any()).Return(domain.Credential{}, apperror.ErrCredentialFetch(assert.AnError))

	_, err := svc.QueryStatus(context.Background(), "ws_CO_1")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "AUTH_001"))
}

func TestQueryStatus_GatewayError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creds := mocks.NewMockCredentialProvider(ctrl)
	gateway := mocks.NewMockGatewayClient(ctrl)
	svc := NewStatusService(newTestBuilder(), creds, gateway, newTestLogger())

	creds.EXPECT().Credential(gomock.Any()).Return(validCred(), nil)
	gateway.EXPECT().QueryStatus(gomock.Any(), "tok", gomock.Any()).
		Return(nil, apperror.ErrGatewayUnreachable(assert.AnError))

	_, err := svc.QueryStatus(context.Background(), "ws_CO_1")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "GW_002"))
}
