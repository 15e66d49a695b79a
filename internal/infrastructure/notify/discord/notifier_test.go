package discord

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/platform/resilience"
)

func sampleTransaction() donation.Transaction {
	completed := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)
	return donation.Transaction{
		Provider:              donation.ProviderKofi,
		ProviderTransactionID: "tx-1",
		AmountCents:           1250,
		Currency:              "usd",
		CustomerName:          "Axidus",
		KofiFromName:          "Axidus",
		KofiType:              donation.KofiTypeSubscription,
		Message:               "keep the zone alive",
		CompletedAt:           &completed,
	}
}

func TestNotifier_PostsEmbed(t *testing.T) {
	t.Parallel()

	var got webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(Config{WebhookURL: srv.URL, Username: "Donations"}, logging.NewNop())
	if err := n.NotifyDonation(t.Context(), sampleTransaction()); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if got.Username != "Donations" || len(got.Embeds) != 1 {
		t.Fatalf("unexpected message: %+v", got)
	}
	e := got.Embeds[0]
	if !strings.Contains(e.Title, "Axidus") || e.Description != "keep the zone alive" {
		t.Fatalf("unexpected embed: %+v", e)
	}
	if len(e.Fields) != 3 || e.Fields[0].Value != "12.50 USD" || e.Fields[1].Value != "Ko-fi" {
		t.Fatalf("unexpected fields: %+v", e.Fields)
	}
	if e.Timestamp != "2026-04-02T18:30:00Z" {
		t.Fatalf("unexpected timestamp: %s", e.Timestamp)
	}
}

func TestNotifier_DisabledWithoutURL(t *testing.T) {
	t.Parallel()

	n := NewNotifier(Config{}, logging.NewNop())
	if err := n.NotifyDonation(t.Context(), sampleTransaction()); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestNotifier_CircuitOpensOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(Config{
		WebhookURL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	for i := 0; i < 2; i++ {
		if err := n.NotifyDonation(t.Context(), sampleTransaction()); err == nil {
			t.Fatalf("expected failure on attempt %d", i+1)
		}
	}
	err := n.NotifyDonation(t.Context(), sampleTransaction())
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 webhook calls, got %d", calls.Load())
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	if got := formatAmount(500, ""); got != "5.00 USD" {
		t.Fatalf("unexpected amount: %s", got)
	}
	if got := formatAmount(1999, "eur"); got != "19.99 EUR" {
		t.Fatalf("unexpected amount: %s", got)
	}
}
