package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/internal/core/ports"

	"github.com/rs/zerolog"
)

// dedupeTTL bounds how long a relayed checkout identifier is remembered.
// The gateway's own webhook retry horizon is far shorter than this.
const dedupeTTL = 24 * time.Hour

// relayService implements ports.RelayService: parse the gateway's result
// envelope, drop duplicates, and best-effort forward to the wallet service.
// Nothing here ever propagates an error toward the gateway; the HTTP layer
// has already sent the fixed acknowledgement.
type relayService struct {
	forwarder ports.ResultForwarder
	dedupe    ports.DedupeStore
	log       zerolog.Logger
}

// NewRelayService creates the callback relay service. dedupe may be nil to
// disable duplicate suppression.
func NewRelayService(forwarder ports.ResultForwarder, dedupe ports.DedupeStore, log zerolog.Logger) ports.RelayService {
	return &relayService{
		forwarder: forwarder,
		dedupe:    dedupe,
		log:       log,
	}
}

// Process handles one raw callback payload.
func (s *relayService) Process(ctx context.Context, rawPayload []byte) {
	result, ok := s.parse(rawPayload)
	if !ok {
		return
	}

	if s.dedupe != nil {
		first, err := s.dedupe.FirstSeen(ctx, result.CheckoutRequestID, dedupeTTL)
		if err != nil {
			// Degraded mode: forward anyway rather than drop a result.
			s.log.Warn().Err(err).Msg("relay: dedupe check failed, forwarding anyway")
		} else if !first {
			s.log.Info().
				Str("checkout_request_id", result.CheckoutRequestID).
				Msg("relay: duplicate callback, skipping forward")
			return
		}
	}

	if err := s.forwarder.Forward(ctx, result); err != nil {
		s.log.Error().Err(err).
			Str("checkout_request_id", result.CheckoutRequestID).
			Int("result_code", result.ResultCode).
			Msg("relay: forward to wallet service failed")
		return
	}

	s.log.Info().
		Str("checkout_request_id", result.CheckoutRequestID).
		Int("result_code", result.ResultCode).
		Bool("succeeded", result.Succeeded()).
		Msg("relay: result forwarded")
}

// parse flattens the nested callback envelope. Metadata items are read only
// on success and each tolerated absent.
func (s *relayService) parse(rawPayload []byte) (domain.PaymentResult, bool) {
	var env domain.CallbackEnvelope
	dec := json.NewDecoder(bytes.NewReader(rawPayload))
	dec.UseNumber() // keep Amount numerically exact
	if err := dec.Decode(&env); err != nil {
		s.log.Warn().Err(err).Msg("relay: unparseable callback payload")
		return domain.PaymentResult{}, false
	}

	cb := env.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		s.log.Warn().Msg("relay: callback missing CheckoutRequestID")
		return domain.PaymentResult{}, false
	}

	result := domain.PaymentResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		MerchantRequestID: cb.MerchantRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}

	if cb.ResultCode == 0 && cb.CallbackMetadata != nil {
		for _, item := range cb.CallbackMetadata.Item {
			switch item.Name {
			case domain.MetaAmount:
				if n, ok := asNumber(item.Value); ok {
					result.Amount = &n
				}
			case domain.MetaReceiptNumber:
				result.ReceiptNumber, _ = item.Value.(string)
			case domain.MetaPhoneNumber:
				result.PhoneNumber = asString(item.Value)
			case domain.MetaTransactionDate:
				result.TransactionDate = asString(item.Value)
			}
		}
	}

	return result, true
}

func asNumber(v interface{}) (json.Number, bool) {
	switch t := v.(type) {
	case json.Number:
		return t, true
	case string:
		return json.Number(t), t != ""
	default:
		return "", false
	}
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
