package service

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"mpesa-push-relay/internal/core/domain"
	"mpesa-push-relay/pkg/apperror"
)

const (
	transactionType = "CustomerPayBillOnline"

	// Gateway-mandated maximum lengths. Overlong values are truncated, not
	// rejected.
	maxAccountRefLen      = 12
	maxTransactionDescLen = 13

	timestampLayout = "20060102150405"
)

// PushBuilder validates and normalizes caller input and assembles signed
// gateway payloads. The password is derived from the same timestamp placed
// into the request; the gateway recomputes and compares it.
type PushBuilder struct {
	shortCode   string
	passKey     string
	callbackURL string
	accountRef  string
	txDesc      string
	loc         *time.Location
	now         func() time.Time
}

// NewPushBuilder creates a builder for the given gateway identity.
// tz is the gateway's expected timezone; an unknown name falls back to UTC+3.
func NewPushBuilder(shortCode, passKey, callbackURL, accountRef, txDesc, tz string) *PushBuilder {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.FixedZone("EAT", 3*60*60)
	}
	return &PushBuilder{
		shortCode:   shortCode,
		passKey:     passKey,
		callbackURL: callbackURL,
		accountRef:  accountRef,
		txDesc:      txDesc,
		loc:         loc,
		now:         time.Now,
	}
}

// Build assembles a push request from raw caller input.
func (b *PushBuilder) Build(phone, amount, description string) (domain.PushRequest, error) {
	if strings.TrimSpace(phone) == "" || strings.TrimSpace(amount) == "" {
		return domain.PushRequest{}, apperror.ErrMissingFields()
	}

	msisdn := NormalizePhone(phone)
	if msisdn == "" {
		return domain.PushRequest{}, apperror.Validation("Phone number must contain digits")
	}

	value, err := parseAmount(amount)
	if err != nil {
		return domain.PushRequest{}, err
	}

	desc := description
	if strings.TrimSpace(desc) == "" {
		desc = b.txDesc
	}

	timestamp, password := b.derive()

	return domain.PushRequest{
		BusinessShortCode: b.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            value,
		PartyA:            msisdn,
		PartyB:            b.shortCode,
		PhoneNumber:       msisdn,
		CallBackURL:       b.callbackURL,
		AccountReference:  truncate(b.accountRef, maxAccountRefLen),
		TransactionDesc:   truncate(desc, maxTransactionDescLen),
	}, nil
}

// StatusRequest assembles a status query with a fresh timestamp/password
// pair tied to the instant of the query.
func (b *PushBuilder) StatusRequest(checkoutRequestID string) domain.StatusQuery {
	timestamp, password := b.derive()
	return domain.StatusQuery{
		BusinessShortCode: b.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}
}

func (b *PushBuilder) derive() (timestamp, password string) {
	timestamp = b.now().In(b.loc).Format(timestampLayout)
	password = base64.StdEncoding.EncodeToString([]byte(b.shortCode + b.passKey + timestamp))
	return timestamp, password
}

// NormalizePhone strips every non-digit character and prefixes local Kenyan
// forms with the country code: 0712345678 -> 254712345678. Numbers already
// starting with 254 pass through unchanged.
func NormalizePhone(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()

	switch {
	case strings.HasPrefix(digits, "254"):
		return digits
	case len(digits) == 10 && (strings.HasPrefix(digits, "07") || strings.HasPrefix(digits, "01")):
		return "254" + digits[1:]
	case len(digits) == 9 && (digits[0] == '7' || digits[0] == '1'):
		return "254" + digits
	default:
		return digits
	}
}

// parseAmount parses a decimal amount and truncates it toward zero.
func parseAmount(raw string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperror.Validation("Invalid amount")
	}
	value := int64(f)
	if value < 1 {
		return 0, apperror.ErrAmountTooLow()
	}
	return value, nil
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
