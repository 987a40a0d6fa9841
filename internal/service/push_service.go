package service

import (
	"context"

	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/apperror"

	"github.com/rs/zerolog"
)

// pushService implements ports.PushService: build, authenticate, initiate.
type pushService struct {
	builder     *PushBuilder
	credentials ports.CredentialProvider
	gateway     ports.GatewayClient
	log         zerolog.Logger
}

// NewPushService creates the push orchestration service.
func NewPushService(
	builder *PushBuilder,
	credentials ports.CredentialProvider,
	gateway ports.GatewayClient,
	log zerolog.Logger,
) ports.PushService {
	return &pushService{
		builder:     builder,
		credentials: credentials,
		gateway:     gateway,
		log:         log,
	}
}

// InitiatePush validates the caller input and submits an STK push. Validation
// failures short-circuit before any outbound gateway traffic. A 401-class
// rejection forces one credential refresh and a single retry.
func (s *pushService) InitiatePush(ctx context.Context, params ports.PushParams) (*domain.PushAck, error) {
	req, err := s.builder.Build(params.Phone, params.Amount, params.Description)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentials.Credential(ctx)
	if err != nil {
		return nil, err
	}

	ack, err := s.gateway.InitiatePush(ctx, cred.AccessToken, req)
	if apperror.HasCode(err, "GW_401") {
		s.log.Warn().Msg("gateway rejected access token, refreshing and retrying once")
		s.credentials.Invalidate()

		cred, err = s.credentials.Credential(ctx)
		if err != nil {
			return nil, err
		}
		ack, err = s.gateway.InitiatePush(ctx, cred.AccessToken, req)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("checkout_request_id", ack.CheckoutRequestID).
		Str("merchant_request_id", ack.MerchantRequestID).
		Str("phone", req.PhoneNumber).
		Int64("amount", req.Amount).
		Msg("push payment queued")

	return ack, nil
}
