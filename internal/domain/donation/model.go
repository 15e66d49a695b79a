package donation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderSquare Provider = "square"
	ProviderKofi   Provider = "kofi"
	ProviderManual Provider = "manual"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	AnonymousSupporter  = "Anonymous Supporter"
	AnonymousSquareName = "Anonymous Square Donor"
	DefaultRecentLimit  = 50
	MaxRecentLimit      = 100
)

var (
	ErrNegativeAmount  = errors.New("amount must be non-negative cents")
	ErrMissingProvider = errors.New("provider and provider transaction id are required")
	ErrInvalidAmount   = errors.New("invalid amount")
)

type Transaction struct {
	ID                    string
	Provider              Provider
	ProviderTransactionID string
	AmountCents           int64
	Currency              string
	Status                Status
	CustomerName          string
	CustomerEmail         string
	Message               string
	UserID                string
	PaymentMethod         string
	ProviderOrderID       string
	PaymentIntentID       string
	KofiType              string
	KofiURL               string
	KofiFromName          string
	KofiShopItems         string
	CreatedAt             time.Time
	CompletedAt           *time.Time
}

func (t Transaction) Validate() error {
	if t.AmountCents < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, t.AmountCents)
	}
	if t.Provider == "" || strings.TrimSpace(t.ProviderTransactionID) == "" {
		return ErrMissingProvider
	}
	return nil
}

// DisplayName is how a donor appears on the supporters list.
func (t Transaction) DisplayName() string {
	if n := strings.TrimSpace(t.KofiFromName); n != "" {
		return n
	}
	if n := strings.TrimSpace(t.CustomerName); n != "" {
		return n
	}
	return AnonymousSupporter
}

type ProductPurchase struct {
	ID                string
	UserID            string
	ProductID         string
	Phrase            string
	ProviderSessionID string
	PaymentIntentID   string
	AmountCents       int64
	Status            string
	CreatedAt         time.Time
}

func (p ProductPurchase) Validate() error {
	if p.AmountCents < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeAmount, p.AmountCents)
	}
	return nil
}

type Supporter struct {
	Name           string
	TotalCents     int64
	DonationCount  int
	Currency       string
	LastDonationAt time.Time
}

// CentsFromDecimal converts "12.50" to 1250, rounding half away from zero.
func CentsFromDecimal(raw string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	cents := int64(math.Round(f * 100))
	if cents < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeAmount, raw)
	}
	return cents, nil
}
