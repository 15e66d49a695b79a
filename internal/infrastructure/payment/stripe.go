package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
)

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object stripeSession `json:"object"`
	} `json:"data"`
}

type stripeSession struct {
	ID              string `json:"id"`
	PaymentIntent   string `json:"payment_intent"`
	AmountTotal     *int64 `json:"amount_total"`
	Currency        string `json:"currency"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// Stripe checks the Stripe-Signature header and decodes the checkout event.
func (v *Verifier) Stripe(header string, payload []byte) (donation.StripeCheckout, error) {
	if v.stripeSecret == "" {
		return donation.StripeCheckout{}, ErrNotConfigured
	}
	if err := v.verifyStripeSignature(header, payload); err != nil {
		return donation.StripeCheckout{}, err
	}

	var event stripeEvent
	if err := sonic.Unmarshal(payload, &event); err != nil {
		return donation.StripeCheckout{}, malformed(err, "stripe event")
	}

	session := event.Data.Object
	out := donation.StripeCheckout{
		EventID:         event.ID,
		EventType:       event.Type,
		SessionID:       session.ID,
		PaymentIntentID: session.PaymentIntent,
		Currency:        session.Currency,
		CustomerEmail:   session.CustomerDetails.Email,
		CustomerName:    session.CustomerDetails.Name,
		Metadata:        session.Metadata,
	}
	if out.CustomerEmail == "" {
		out.CustomerEmail = session.CustomerEmail
	}
	if session.AmountTotal != nil {
		out.AmountTotal = *session.AmountTotal
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out, nil
}

func (v *Verifier) verifyStripeSignature(header string, payload []byte) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}

	var (
		timestamp  string
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.Wrap(ErrInvalidSignature, "stripe signature header incomplete")
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.Wrap(ErrInvalidSignature, "stripe signature timestamp")
	}
	age := v.now().Sub(time.Unix(unix, 0))
	if age > v.stripeTolerance || age < -v.stripeTolerance {
		return errors.Wrap(ErrInvalidSignature, "stripe signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(v.stripeSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range signatures {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}
