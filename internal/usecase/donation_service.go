package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	idgen "github.com/riskibarqy/infantry-community/internal/platform/id"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type DonationNotifier interface {
	NotifyDonation(ctx context.Context, tx donation.Transaction) error
}

type noopDonationNotifier struct{}

func (noopDonationNotifier) NotifyDonation(context.Context, donation.Transaction) error {
	return nil
}

type DonationConfig struct {
	KofiVerificationToken string
}

// WebhookResult is what a provider webhook acknowledges with.
type WebhookResult struct {
	Message       string `json:"message"`
	Duplicate     bool   `json:"duplicate,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

type DonationService struct {
	donationRepo donation.Repository
	profileRepo  profile.Repository
	notifier     DonationNotifier
	idGen        idgen.Generator
	cfg          DonationConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewDonationService(
	donationRepo donation.Repository,
	profileRepo profile.Repository,
	notifier DonationNotifier,
	idGen idgen.Generator,
	cfg DonationConfig,
	logger *logging.Logger,
) *DonationService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = noopDonationNotifier{}
	}

	return &DonationService{
		donationRepo: donationRepo,
		profileRepo:  profileRepo,
		notifier:     notifier,
		idGen:        idGen,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// HandleStripeCheckout processes a verified Stripe event. General donations
// complete their pending row or fall back to inserting one; anything else
// with a product is recorded as a purchase.
func (s *DonationService) HandleStripeCheckout(ctx context.Context, event donation.StripeCheckout) (WebhookResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DonationService.HandleStripeCheckout")
	defer span.End()

	if event.EventType != donation.StripeCheckoutCompleted {
		return WebhookResult{Message: "Event acknowledged"}, nil
	}
	userID := strings.TrimSpace(event.Metadata["userId"])
	if userID == "" {
		s.logger.WarnContext(ctx, "stripe checkout without user metadata", "session_id", event.SessionID)
		return WebhookResult{Message: "Missing user information"}, nil
	}

	now := s.now().UTC()
	if !event.IsGeneralDonation() {
		return s.recordStripePurchase(ctx, event, userID, now)
	}

	amount := event.AmountTotal
	if amount <= 0 {
		raw := strings.TrimSpace(event.Metadata["amount"])
		if raw == "" {
			return WebhookResult{}, fmt.Errorf("%w: donation amount is missing", ErrInvalidInput)
		}
		cents, err := donation.CentsFromDecimal(raw)
		if err != nil {
			return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		amount = cents
	}

	tx := donation.Transaction{
		Provider:              donation.ProviderStripe,
		ProviderTransactionID: event.SessionID,
		PaymentIntentID:       event.PaymentIntentID,
		AmountCents:           amount,
		Currency:              defaultCurrency(event.Currency),
		Status:                donation.StatusCompleted,
		CustomerName:          strings.TrimSpace(event.CustomerName),
		CustomerEmail:         strings.ToLower(strings.TrimSpace(event.CustomerEmail)),
		Message:               strings.TrimSpace(event.Metadata["donationMessage"]),
		UserID:                userID,
		PaymentMethod:         "card",
		CreatedAt:             now,
		CompletedAt:           &now,
	}
	if err := tx.Validate(); err != nil {
		return WebhookResult{}, err
	}

	found, err := s.donationRepo.CompletePending(ctx, donation.ProviderStripe, event.SessionID, event.PaymentIntentID, now)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("complete pending donation: %w", err)
	}
	if found {
		s.notify(ctx, tx)
		return WebhookResult{Message: "Donation completed", AmountCents: amount, Currency: tx.Currency}, nil
	}

	return s.record(ctx, tx, "Donation processed successfully", "Donation already processed")
}

func (s *DonationService) recordStripePurchase(ctx context.Context, event donation.StripeCheckout, userID string, now time.Time) (WebhookResult, error) {
	productID := strings.TrimSpace(event.Metadata["productId"])
	if productID == "" {
		s.logger.WarnContext(ctx, "stripe checkout without product metadata", "session_id", event.SessionID)
		return WebhookResult{Message: "Missing product information"}, nil
	}

	purchaseID, err := s.idGen.NewID()
	if err != nil {
		return WebhookResult{}, fmt.Errorf("generate purchase id: %w", err)
	}
	purchase := donation.ProductPurchase{
		ID:                purchaseID,
		UserID:            userID,
		ProductID:         productID,
		Phrase:            strings.TrimSpace(event.Metadata["phrase"]),
		ProviderSessionID: event.SessionID,
		PaymentIntentID:   event.PaymentIntentID,
		AmountCents:       event.AmountTotal,
		Status:            string(donation.StatusCompleted),
		CreatedAt:         now,
	}
	if err := purchase.Validate(); err != nil {
		return WebhookResult{}, err
	}

	created, err := s.donationRepo.RecordPurchase(ctx, purchase)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("record product purchase: %w", err)
	}
	if !created {
		return WebhookResult{Message: "Purchase already processed", Duplicate: true}, nil
	}

	s.logger.InfoContext(ctx, "product purchase recorded", "user_id", userID, "product_id", productID)
	return WebhookResult{Message: "Purchase processed successfully", TransactionID: purchaseID}, nil
}

// HandleSquarePayment records completed Square payments once per payment id.
func (s *DonationService) HandleSquarePayment(ctx context.Context, event donation.SquarePayment) (WebhookResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DonationService.HandleSquarePayment")
	defer span.End()

	switch {
	case event.IsPaymentEvent() && event.Status == donation.SquarePaymentCompleted:
	case event.IsOrderEvent():
		s.logger.InfoContext(ctx, "square order event", "event_type", event.EventType, "order_id", event.OrderID)
		return WebhookResult{Message: "Order event logged"}, nil
	default:
		return WebhookResult{Message: "Event type ignored"}, nil
	}

	if strings.TrimSpace(event.PaymentID) == "" {
		return WebhookResult{}, fmt.Errorf("%w: payment id is missing", ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(event.Email))
	account := s.lookupByEmail(ctx, email)

	name := strings.TrimSpace(account.InGameAlias)
	if name == "" {
		name = strings.TrimSpace(event.Alias)
	}
	if name == "" {
		name = email
	}
	if name == "" {
		name = donation.AnonymousSquareName
	}
	message := strings.TrimSpace(event.Note)
	if message == "" {
		message = "Square donation - " + event.PaymentID
	}

	now := s.now().UTC()
	tx := donation.Transaction{
		Provider:              donation.ProviderSquare,
		ProviderTransactionID: event.PaymentID,
		ProviderOrderID:       event.OrderID,
		AmountCents:           event.AmountCents,
		Currency:              defaultCurrency(event.Currency),
		Status:                donation.StatusCompleted,
		CustomerName:          name,
		CustomerEmail:         email,
		Message:               message,
		UserID:                account.ID,
		PaymentMethod:         strings.ToLower(event.SourceType),
		CreatedAt:             now,
		CompletedAt:           &now,
	}
	if err := tx.Validate(); err != nil {
		return WebhookResult{}, err
	}

	return s.record(ctx, tx, "Square payment processed successfully", "Payment already processed")
}

// HandleKofi checks the shared verification token and records donations,
// subscriptions and shop orders.
func (s *DonationService) HandleKofi(ctx context.Context, event donation.KofiPayment) (WebhookResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DonationService.HandleKofi")
	defer span.End()

	expected := strings.TrimSpace(s.cfg.KofiVerificationToken)
	if expected == "" {
		return WebhookResult{}, fmt.Errorf("%w: ko-fi verification token is not configured", ErrDependencyUnavailable)
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(event.VerificationToken)) != 1 {
		return WebhookResult{}, fmt.Errorf("%w: verification failed", ErrUnauthorized)
	}
	if !event.IsRecordable() {
		return WebhookResult{Message: "Non-donation type ignored"}, nil
	}
	if strings.TrimSpace(event.TransactionID) == "" {
		return WebhookResult{}, fmt.Errorf("%w: kofi_transaction_id is missing", ErrInvalidInput)
	}

	amount, err := donation.CentsFromDecimal(event.Amount)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	email := strings.ToLower(strings.TrimSpace(event.Email))
	account := s.lookupByEmail(ctx, email)

	createdAt := event.Timestamp.UTC()
	if event.Timestamp.IsZero() {
		createdAt = s.now().UTC()
	}
	completedAt := s.now().UTC()
	tx := donation.Transaction{
		Provider:              donation.ProviderKofi,
		ProviderTransactionID: event.TransactionID,
		AmountCents:           amount,
		Currency:              defaultCurrency(event.Currency),
		Status:                donation.StatusCompleted,
		CustomerName:          strings.TrimSpace(event.FromName),
		CustomerEmail:         email,
		Message:               strings.TrimSpace(event.Message),
		UserID:                account.ID,
		PaymentMethod:         "kofi",
		KofiType:              event.Type,
		KofiURL:               event.URL,
		KofiFromName:          strings.TrimSpace(event.FromName),
		KofiShopItems:         event.ShopItems,
		CreatedAt:             createdAt,
		CompletedAt:           &completedAt,
	}
	if err := tx.Validate(); err != nil {
		return WebhookResult{}, err
	}

	return s.record(ctx, tx, "Ko-fi donation processed successfully", "Donation already processed")
}

func (s *DonationService) record(ctx context.Context, tx donation.Transaction, okMessage, duplicateMessage string) (WebhookResult, error) {
	var err error
	tx.ID, err = s.idGen.NewID()
	if err != nil {
		return WebhookResult{}, fmt.Errorf("generate donation id: %w", err)
	}

	created, err := s.donationRepo.InsertIfAbsent(ctx, tx)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("insert donation: %w", err)
	}
	if !created {
		s.logger.InfoContext(ctx, "duplicate donation webhook",
			"provider", tx.Provider,
			"provider_transaction_id", tx.ProviderTransactionID,
		)
		return WebhookResult{Message: duplicateMessage, Duplicate: true}, nil
	}

	s.logger.InfoContext(ctx, "donation recorded",
		"provider", tx.Provider,
		"provider_transaction_id", tx.ProviderTransactionID,
		"amount_cents", tx.AmountCents,
		"currency", tx.Currency,
	)
	s.notify(ctx, tx)
	return WebhookResult{
		Message:       okMessage,
		TransactionID: tx.ID,
		AmountCents:   tx.AmountCents,
		Currency:      tx.Currency,
	}, nil
}

func (s *DonationService) notify(ctx context.Context, tx donation.Transaction) {
	if err := s.notifier.NotifyDonation(ctx, tx); err != nil {
		s.logger.WarnContext(ctx, "donation notification failed",
			"provider", tx.Provider,
			"provider_transaction_id", tx.ProviderTransactionID,
			"error", err,
		)
	}
}

func (s *DonationService) lookupByEmail(ctx context.Context, email string) profile.Profile {
	if email == "" {
		return profile.Profile{}
	}
	item, exists, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "lookup donor by email failed", "error", err)
		return profile.Profile{}
	}
	if !exists {
		return profile.Profile{}
	}
	return item
}

// RecentDonations lists completed donations for public display; emails are
// never returned.
func (s *DonationService) RecentDonations(ctx context.Context, limit int) ([]donation.Transaction, error) {
	if limit <= 0 {
		limit = donation.DefaultRecentLimit
	}
	if limit > donation.MaxRecentLimit {
		limit = donation.MaxRecentLimit
	}

	items, err := s.donationRepo.ListRecentCompleted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent donations: %w", err)
	}
	for i := range items {
		items[i].CustomerEmail = ""
		items[i].CustomerName = items[i].DisplayName()
	}
	return items, nil
}

func (s *DonationService) Supporters(ctx context.Context) ([]donation.Supporter, error) {
	items, err := s.donationRepo.ListSupporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list supporters: %w", err)
	}
	return items, nil
}

func defaultCurrency(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "usd"
	}
	return v
}
