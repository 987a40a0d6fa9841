package service

import (
	"context"
	"encoding/json"
	"strings"

	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/apperror"

	"github.com/rs/zerolog"
)

// statusService implements ports.StatusService. It is a thin orchestration
// over the gateway's status-query endpoint: the gateway may legitimately
// answer "still pending" even after the true outcome was delivered through
// the callback, so the raw body is returned unmodified for the caller to
// interpret.
type statusService struct {
	builder     *PushBuilder
	credentials ports.CredentialProvider
	gateway     ports.GatewayClient
	log         zerolog.Logger
}

// NewStatusService creates the status reconciliation service.
func NewStatusService(
	builder *PushBuilder,
	credentials ports.CredentialProvider,
	gateway ports.GatewayClient,
	log zerolog.Logger,
) ports.StatusService {
	return &statusService{
		builder:     builder,
		credentials: credentials,
		gateway:     gateway,
		log:         log,
	}
}

// QueryStatus re-queries the gateway for a previously initiated push.
func (s *statusService) QueryStatus(ctx context.Context, checkoutRequestID string) (json.RawMessage, error) {
	if strings.TrimSpace(checkoutRequestID) == "" {
		return nil, apperror.Validation("Checkout request ID is required")
	}

	cred, err := s.credentials.Credential(ctx)
	if err != nil {
		return nil, err
	}

	// Timestamp and password are single-use, tied to this query's instant.
	query := s.builder.StatusRequest(checkoutRequestID)

	body, err := s.gateway.QueryStatus(ctx, cred.AccessToken, query)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("checkout_request_id", checkoutRequestID).Msg("status query completed")
	return body, nil
}
