package donation

import (
	"strings"
	"time"
)

const (
	KofiTypeDonation     = "Donation"
	KofiTypeSubscription = "Subscription"
	KofiTypeShopOrder    = "Shop Order"

	StripeCheckoutCompleted = "checkout.session.completed"
	StripeGeneralDonation   = "general_donation"

	SquarePaymentCompleted = "COMPLETED"
)

// StripeCheckout is the part of a checkout.session.completed event the
// service acts on.
type StripeCheckout struct {
	EventID         string
	EventType       string
	SessionID       string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	CustomerEmail   string
	CustomerName    string
	Metadata        map[string]string
}

func (c StripeCheckout) IsGeneralDonation() bool {
	return c.Metadata["donationType"] == StripeGeneralDonation
}

// SquarePayment flattens a payment.* notification and the metadata of its
// order.
type SquarePayment struct {
	EventID     string
	EventType   string
	PaymentID   string
	OrderID     string
	Status      string
	AmountCents int64
	Currency    string
	Email       string
	Alias       string
	Note        string
	SourceType  string
	CreatedAt   time.Time
}

func (p SquarePayment) IsPaymentEvent() bool {
	return p.EventType == "payment.created" || p.EventType == "payment.updated"
}

func (p SquarePayment) IsOrderEvent() bool {
	return strings.HasPrefix(p.EventType, "order.")
}

// KofiPayment is the JSON document Ko-fi posts in the data form field.
type KofiPayment struct {
	VerificationToken string
	MessageID         string
	TransactionID     string
	Type              string
	FromName          string
	Email             string
	Message           string
	Amount            string
	Currency          string
	URL               string
	IsPublic          bool
	ShopItems         string
	Timestamp         time.Time
}

func (k KofiPayment) IsRecordable() bool {
	switch k.Type {
	case KofiTypeDonation, KofiTypeSubscription, KofiTypeShopOrder:
		return true
	default:
		return false
	}
}
