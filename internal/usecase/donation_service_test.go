package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	donationmock "github.com/riskibarqy/infantry-community/internal/mocks/domain/donation"
	profilemock "github.com/riskibarqy/infantry-community/internal/mocks/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

const testKofiToken = "kofi-secret"

type recordingNotifier struct {
	mu    sync.Mutex
	items []donation.Transaction
}

func (n *recordingNotifier) NotifyDonation(_ context.Context, tx donation.Transaction) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append(n.items, tx)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.items)
}

func newDonationTestService(repo donation.Repository, profiles profile.Repository) (*DonationService, *recordingNotifier) {
	notifier := &recordingNotifier{}
	service := NewDonationService(repo, profiles, notifier, &sequenceIDGenerator{prefix: "don"},
		DonationConfig{KofiVerificationToken: testKofiToken}, logging.NewNop())
	service.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return service, notifier
}

func TestDonationService_HandleKofi_IsIdempotent(t *testing.T) {
	t.Parallel()

	repo := memory.NewDonationRepository()
	profiles := memory.NewProfileRepository(profile.Profile{ID: "user-1", Email: "donor@example.com", InGameAlias: "Axidus"})
	service, notifier := newDonationTestService(repo, profiles)

	event := donation.KofiPayment{
		VerificationToken: testKofiToken,
		TransactionID:     "kofi-tx-1",
		Type:              donation.KofiTypeDonation,
		FromName:          "Axi",
		Email:             "Donor@Example.com",
		Amount:            "12.50",
		Currency:          "USD",
	}

	first, err := service.HandleKofi(t.Context(), event)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if first.Message != "Ko-fi donation processed successfully" || first.AmountCents != 1250 || first.Currency != "usd" {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := service.HandleKofi(t.Context(), event)
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if !second.Duplicate || second.Message != "Donation already processed" {
		t.Fatalf("expected duplicate acknowledgement, got %+v", second)
	}

	recent, err := service.RecentDonations(t.Context(), 0)
	if err != nil {
		t.Fatalf("recent donations: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected one stored donation, got %d", len(recent))
	}
	if recent[0].UserID != "user-1" {
		t.Fatalf("donor should be linked by email, got user=%q", recent[0].UserID)
	}
	if recent[0].CustomerEmail != "" {
		t.Fatalf("email must not be exposed, got %q", recent[0].CustomerEmail)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
}

func TestDonationService_HandleKofi_Verification(t *testing.T) {
	t.Parallel()

	service, _ := newDonationTestService(memory.NewDonationRepository(), memory.NewProfileRepository())

	_, err := service.HandleKofi(t.Context(), donation.KofiPayment{VerificationToken: "wrong", Type: donation.KofiTypeDonation})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	ignored, err := service.HandleKofi(t.Context(), donation.KofiPayment{VerificationToken: testKofiToken, Type: "Commission"})
	if err != nil {
		t.Fatalf("ignored type: %v", err)
	}
	if ignored.Message != "Non-donation type ignored" {
		t.Fatalf("unexpected message: %q", ignored.Message)
	}

	_, err = service.HandleKofi(t.Context(), donation.KofiPayment{
		VerificationToken: testKofiToken, Type: donation.KofiTypeDonation, TransactionID: "neg", Amount: "-5.00",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative amount, got %v", err)
	}

	unconfigured := NewDonationService(memory.NewDonationRepository(), memory.NewProfileRepository(), nil,
		staticIDGenerator{id: "x"}, DonationConfig{}, logging.NewNop())
	_, err = unconfigured.HandleKofi(t.Context(), donation.KofiPayment{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestDonationService_HandleSquarePayment(t *testing.T) {
	t.Parallel()

	service, _ := newDonationTestService(memory.NewDonationRepository(), memory.NewProfileRepository())

	event := donation.SquarePayment{
		EventType:   "payment.updated",
		PaymentID:   "sq-pay-1",
		Status:      donation.SquarePaymentCompleted,
		AmountCents: 500,
		Alias:       "Mighty",
		SourceType:  "CARD",
	}
	got, err := service.HandleSquarePayment(t.Context(), event)
	if err != nil {
		t.Fatalf("square payment: %v", err)
	}
	if got.Message != "Square payment processed successfully" {
		t.Fatalf("unexpected message: %q", got.Message)
	}

	dup, err := service.HandleSquarePayment(t.Context(), event)
	if err != nil {
		t.Fatalf("square redelivery: %v", err)
	}
	if !dup.Duplicate || dup.Message != "Payment already processed" {
		t.Fatalf("expected duplicate, got %+v", dup)
	}

	order, err := service.HandleSquarePayment(t.Context(), donation.SquarePayment{EventType: "order.updated"})
	if err != nil || order.Message != "Order event logged" {
		t.Fatalf("unexpected order handling: %+v err=%v", order, err)
	}
	pending, err := service.HandleSquarePayment(t.Context(), donation.SquarePayment{EventType: "payment.created", Status: "APPROVED"})
	if err != nil || pending.Message != "Event type ignored" {
		t.Fatalf("unexpected pending handling: %+v err=%v", pending, err)
	}

	supporters, err := service.Supporters(t.Context())
	if err != nil {
		t.Fatalf("supporters: %v", err)
	}
	if len(supporters) != 1 || supporters[0].Name != "Mighty" || supporters[0].TotalCents != 500 {
		t.Fatalf("unexpected supporters: %+v", supporters)
	}

	recent, err := service.RecentDonations(t.Context(), 10)
	if err != nil {
		t.Fatalf("recent donations: %v", err)
	}
	if recent[0].Message != "Square donation - sq-pay-1" {
		t.Fatalf("expected default square message, got %q", recent[0].Message)
	}
}

func TestDonationService_HandleStripeCheckout_CompletesPendingRowUsingMockery(t *testing.T) {
	t.Parallel()

	repo := donationmock.NewRepository(t)
	service, notifier := newDonationTestService(repo, profilemock.NewRepository(t))

	repo.
		On("CompletePending", mock.Anything, donation.ProviderStripe, "cs_test_1", "pi_1", mock.AnythingOfType("time.Time")).
		Return(true, nil).
		Once()

	got, err := service.HandleStripeCheckout(t.Context(), donation.StripeCheckout{
		EventType:       donation.StripeCheckoutCompleted,
		SessionID:       "cs_test_1",
		PaymentIntentID: "pi_1",
		AmountTotal:     2000,
		Metadata:        map[string]string{"userId": "user-1", "donationType": donation.StripeGeneralDonation},
	})
	if err != nil {
		t.Fatalf("stripe checkout: %v", err)
	}
	if got.Message != "Donation completed" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
}

func TestDonationService_HandleStripeCheckout_FallsBackToInsertUsingMockery(t *testing.T) {
	t.Parallel()

	repo := donationmock.NewRepository(t)
	service, notifier := newDonationTestService(repo, profilemock.NewRepository(t))

	repo.
		On("CompletePending", mock.Anything, donation.ProviderStripe, "cs_test_2", "", mock.AnythingOfType("time.Time")).
		Return(false, nil).
		Once()
	repo.
		On("InsertIfAbsent", mock.Anything, mock.MatchedBy(func(tx donation.Transaction) bool {
			return tx.ProviderTransactionID == "cs_test_2" && tx.AmountCents == 1999 && tx.Status == donation.StatusCompleted
		})).
		Return(false, nil).
		Once()

	got, err := service.HandleStripeCheckout(t.Context(), donation.StripeCheckout{
		EventType: donation.StripeCheckoutCompleted,
		SessionID: "cs_test_2",
		Metadata: map[string]string{
			"userId":       "user-1",
			"donationType": donation.StripeGeneralDonation,
			"amount":       "19.99",
		},
	})
	if err != nil {
		t.Fatalf("stripe checkout: %v", err)
	}
	if !got.Duplicate || got.Message != "Donation already processed" {
		t.Fatalf("expected duplicate, got %+v", got)
	}
	if notifier.count() != 0 {
		t.Fatalf("duplicates must not notify, got %d", notifier.count())
	}
}

func TestDonationService_HandleStripeCheckout_IgnoredEvents(t *testing.T) {
	t.Parallel()

	service, _ := newDonationTestService(donationmock.NewRepository(t), profilemock.NewRepository(t))

	got, err := service.HandleStripeCheckout(t.Context(), donation.StripeCheckout{EventType: "payment_intent.created"})
	if err != nil || got.Message != "Event acknowledged" {
		t.Fatalf("unexpected result: %+v err=%v", got, err)
	}

	got, err = service.HandleStripeCheckout(t.Context(), donation.StripeCheckout{EventType: donation.StripeCheckoutCompleted})
	if err != nil || got.Message != "Missing user information" {
		t.Fatalf("unexpected result: %+v err=%v", got, err)
	}
}

func TestDonationService_HandleStripeCheckout_ProductPurchase(t *testing.T) {
	t.Parallel()

	repo := memory.NewDonationRepository()
	service, _ := newDonationTestService(repo, memory.NewProfileRepository())
	event := donation.StripeCheckout{
		EventType:   donation.StripeCheckoutCompleted,
		SessionID:   "cs_prod_1",
		AmountTotal: 300,
		Metadata:    map[string]string{"userId": "user-1", "productId": "prod-phrase", "phrase": "gg"},
	}

	got, err := service.HandleStripeCheckout(t.Context(), event)
	if err != nil || got.Message != "Purchase processed successfully" {
		t.Fatalf("unexpected first purchase: %+v err=%v", got, err)
	}
	got, err = service.HandleStripeCheckout(t.Context(), event)
	if err != nil || got.Message != "Purchase already processed" {
		t.Fatalf("unexpected redelivery: %+v err=%v", got, err)
	}
	if n := len(repo.Purchases()); n != 1 {
		t.Fatalf("expected one purchase row, got %d", n)
	}
}

func TestDonationService_InsertFailureIsReturnedUsingMockery(t *testing.T) {
	t.Parallel()

	repo := donationmock.NewRepository(t)
	profiles := profilemock.NewRepository(t)
	service, notifier := newDonationTestService(repo, profiles)

	profiles.On("GetByEmail", mock.Anything, "a@example.com").Return(profile.Profile{}, false, nil).Once()
	repo.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(false, errors.New("db down")).Once()

	_, err := service.HandleKofi(t.Context(), donation.KofiPayment{
		VerificationToken: testKofiToken,
		Type:              donation.KofiTypeSubscription,
		TransactionID:     "kofi-sub-1",
		Email:             "a@example.com",
		Amount:            "3",
	})
	if err == nil {
		t.Fatalf("expected insert failure to surface")
	}
	if notifier.count() != 0 {
		t.Fatalf("failed inserts must not notify")
	}
}
