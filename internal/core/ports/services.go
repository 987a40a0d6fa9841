package ports

import (
	"context"
	"encoding/json"
	"time"

	"mpesa-push-relay/internal/core/domain"
)

// GatewayClient executes outbound calls against the payment gateway.
type GatewayClient interface {
	// Authenticate exchanges the pre-shared client identity for a bearer
	// credential. ExpiresAt carries the gateway-advertised lifetime with no
	// margin applied; the credential cache owns the safety margin.
	Authenticate(ctx context.Context) (domain.Credential, error)

	// InitiatePush submits an STK push. A nonzero response code in the body
	// is surfaced as an error; success only means the prompt was queued.
	InitiatePush(ctx context.Context, token string, req domain.PushRequest) (*domain.PushAck, error)

	// QueryStatus asks for the current state of a push and returns the raw
	// gateway body. Advisory only; the callback is the source of truth.
	QueryStatus(ctx context.Context, token string, query domain.StatusQuery) (json.RawMessage, error)
}

// CredentialProvider serves the shared bearer credential, refreshing it when
// absent or expired. Implementations must collapse concurrent refreshes into
// a single gateway fetch.
type CredentialProvider interface {
	Credential(ctx context.Context) (domain.Credential, error)
	// Invalidate drops the cached credential so the next call fetches fresh.
	Invalidate()
}

// ResultForwarder relays a payment result to the downstream wallet service.
type ResultForwarder interface {
	Forward(ctx context.Context, result domain.PaymentResult) error
}

// DedupeStore remembers which checkout identifiers have already been relayed,
// so the gateway's webhook retries cannot double-forward a result.
type DedupeStore interface {
	// FirstSeen returns true when checkoutID has not been recorded yet and
	// atomically records it with the given TTL.
	FirstSeen(ctx context.Context, checkoutID string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// PushService validates caller input and initiates a push payment.
type PushService interface {
	InitiatePush(ctx context.Context, params PushParams) (*domain.PushAck, error)
}

// PushParams is raw caller input; validation and normalization happen inside
// the service.
type PushParams struct {
	Phone       string
	Amount      string
	Description string
}

// RelayService processes one gateway callback: parse, dedupe, forward.
// It never fails toward the inbound caller; the HTTP layer has already acked.
type RelayService interface {
	Process(ctx context.Context, rawPayload []byte)
}

// StatusService re-queries the gateway for the state of a prior push.
type StatusService interface {
	QueryStatus(ctx context.Context, checkoutRequestID string) (json.RawMessage, error)
}
