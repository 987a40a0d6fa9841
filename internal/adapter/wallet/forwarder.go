package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mpesa-push-relay/config"
	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Forwarder relays payment results to the downstream wallet service as a
// single best-effort JSON POST. There is no retry and no durable queue; a
// failed forward is an accepted at-most-once-delivery gap the status query
// exists to reconcile.
type Forwarder struct {
	endpoint   string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewForwarder creates a wallet forwarder from the wallet configuration.
func NewForwarder(cfg config.WalletConfig, log zerolog.Logger) *Forwarder {
	return &Forwarder{
		endpoint:   cfg.CallbackEndpoint(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

var _ ports.ResultForwarder = (*Forwarder)(nil)

// Forward delivers one payment result. Called from the relay's goroutine
// after the gateway has already been acked.
func (f *Forwarder) Forward(ctx context.Context, result domain.PaymentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperror.ErrForwardFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return apperror.ErrForwardFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return apperror.ErrForwardFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperror.ErrForwardFailed(fmt.Errorf("wallet service returned HTTP %d", resp.StatusCode))
	}

	f.log.Debug().
		Str("checkout_request_id", result.CheckoutRequestID).
		Dur("latency", time.Since(start)).
		Msg("wallet forward delivered")
	return nil
}
