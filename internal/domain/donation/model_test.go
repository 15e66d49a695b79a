package donation

import (
	"errors"
	"testing"
)

func TestCentsFromDecimal(t *testing.T) {
	t.Parallel()

	cases := map[string]int64{
		"5":     500,
		"3.00":  300,
		"12.5":  1250,
		"0.1":   10,
		"19.99": 1999,
		"0":     0,
	}
	for raw, want := range cases {
		got, err := CentsFromDecimal(raw)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", raw, err)
		}
		if got != want {
			t.Fatalf("%q: got=%d want=%d", raw, got, want)
		}
	}

	if _, err := CentsFromDecimal("-1.00"); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := CentsFromDecimal("abc"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransaction_Validate(t *testing.T) {
	t.Parallel()

	ok := Transaction{Provider: ProviderKofi, ProviderTransactionID: "k1", AmountCents: 0}
	if err := ok.Validate(); err != nil {
		t.Fatalf("zero amount should be valid: %v", err)
	}
	if err := (Transaction{Provider: ProviderKofi, ProviderTransactionID: "k1", AmountCents: -5}).Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if err := (Transaction{Provider: ProviderKofi}).Validate(); !errors.Is(err, ErrMissingProvider) {
		t.Fatalf("expected ErrMissingProvider, got %v", err)
	}
}

func TestTransaction_DisplayName(t *testing.T) {
	t.Parallel()

	if got := (Transaction{KofiFromName: "Kofi Fan", CustomerName: "x"}).DisplayName(); got != "Kofi Fan" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := (Transaction{}).DisplayName(); got != AnonymousSupporter {
		t.Fatalf("unexpected name: %s", got)
	}
}
