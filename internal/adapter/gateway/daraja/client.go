package daraja

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mpesa-push-relay/config"
	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	authPath  = "/oauth/v1/generate?grant_type=client_credentials"
	pushPath  = "/mpesa/stkpush/v1/processrequest"
	queryPath = "/mpesa/stkpushquery/v1/query"
)

// Client executes outbound HTTPS calls against the Daraja gateway. Each call
// carries its own timeout budget; the push budget is the longest since it
// triggers a prompt on the payer's device.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string

	authTimeout  time.Duration
	pushTimeout  time.Duration
	queryTimeout time.Duration

	httpClient *http.Client
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient creates a gateway client from the Daraja configuration.
func NewClient(cfg config.DarajaConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		authTimeout:    cfg.AuthTimeout,
		pushTimeout:    cfg.PushTimeout,
		queryTimeout:   cfg.QueryTimeout,
		httpClient:     &http.Client{},
		log:            log,
		now:            time.Now,
	}
}

var _ ports.GatewayClient = (*Client)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"` // seconds, as a string
}

// gatewayError is the body Daraja returns on non-2xx responses.
type gatewayError struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Authenticate exchanges the pre-shared key pair for a bearer token.
func (c *Client) Authenticate(ctx context.Context) (domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, c.authTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+authPath, nil)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("building auth request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.consumerKey + ":" + c.consumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Credential{}, fmt.Errorf("auth endpoint returned HTTP %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Credential{}, fmt.Errorf("decoding auth response: %w", err)
	}
	if body.AccessToken == "" {
		return domain.Credential{}, fmt.Errorf("auth response carried no access token")
	}

	lifetime, err := strconv.Atoi(body.ExpiresIn)
	if err != nil || lifetime <= 0 {
		return domain.Credential{}, fmt.Errorf("auth response carried invalid expires_in %q", body.ExpiresIn)
	}

	return domain.Credential{
		AccessToken: body.AccessToken,
		ExpiresAt:   c.now().Add(time.Duration(lifetime) * time.Second),
	}, nil
}

// InitiatePush submits an STK push request under the given bearer token.
func (c *Client) InitiatePush(ctx context.Context, token string, pushReq domain.PushRequest) (*domain.PushAck, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	raw, err := c.post(ctx, pushPath, token, pushReq)
	if err != nil {
		return nil, err
	}

	var ack domain.PushAck
	if err := json.Unmarshal(raw, &ack); err != nil {
		return nil, apperror.ErrGatewayResponse(err)
	}

	// A nonzero synchronous response code is an outright rejection. Zero only
	// means the prompt was queued; the final outcome arrives via callback.
	if ack.ResponseCode != "0" {
		return nil, apperror.ErrGatewayRejected(ack.ResponseCode, ack.ResponseDescription)
	}

	return &ack, nil
}

// QueryStatus asks for the current state of a push and returns the gateway's
// raw body for the caller to interpret.
func (c *Client) QueryStatus(ctx context.Context, token string, query domain.StatusQuery) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	return c.post(ctx, queryPath, token, query)
}

// post executes a Bearer-authorized JSON POST and returns the response body
// on 2xx. Non-2xx responses map to the GW error taxonomy.
func (c *Client) post(ctx context.Context, path, token string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.ErrGatewayUnreachable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.ErrGatewayResponse(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperror.ErrGatewayUnauthorized()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var gwErr gatewayError
		if err := json.Unmarshal(body, &gwErr); err == nil && gwErr.ErrorMessage != "" {
			c.log.Warn().
				Str("request_id", gwErr.RequestID).
				Str("error_code", gwErr.ErrorCode).
				Int("status", resp.StatusCode).
				Msg("gateway rejected request")
			return nil, apperror.ErrGatewayRejected(gwErr.ErrorCode, gwErr.ErrorMessage)
		}
		return nil, apperror.ErrGatewayResponse(fmt.Errorf("gateway returned HTTP %d", resp.StatusCode))
	}

	return body, nil
}
