package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/infantry-community/internal/usecase"
)

const DefaultStripeTolerance = 5 * time.Minute

var (
	ErrNotConfigured    = fmt.Errorf("%w: webhook secret is not configured", usecase.ErrDependencyUnavailable)
	ErrMissingSignature = fmt.Errorf("%w: missing webhook signature", usecase.ErrUnauthorized)
	ErrInvalidSignature = fmt.Errorf("%w: invalid webhook signature", usecase.ErrUnauthorized)
	ErrMalformedPayload = fmt.Errorf("%w: malformed webhook payload", usecase.ErrInvalidInput)
)

type Config struct {
	StripeWebhookSecret   string
	StripeTolerance       time.Duration
	SquareSignatureKey    string
	SquareNotificationURL string
}

// Verifier authenticates provider webhooks and decodes them into donation
// events.
type Verifier struct {
	stripeSecret    string
	stripeTolerance time.Duration
	squareKey       string
	squareURL       string
	now             func() time.Time
}

func NewVerifier(cfg Config) *Verifier {
	tolerance := cfg.StripeTolerance
	if tolerance <= 0 {
		tolerance = DefaultStripeTolerance
	}
	return &Verifier{
		stripeSecret:    strings.TrimSpace(cfg.StripeWebhookSecret),
		stripeTolerance: tolerance,
		squareKey:       strings.TrimSpace(cfg.SquareSignatureKey),
		squareURL:       strings.TrimSpace(cfg.SquareNotificationURL),
		now:             time.Now,
	}
}

func malformed(err error, what string) error {
	return errors.Wrapf(ErrMalformedPayload, "decode %s: %v", what, err)
}
