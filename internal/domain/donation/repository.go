package donation

import (
	"context"
	"time"
)

type Repository interface {
	// InsertIfAbsent stores t unless (provider, provider_transaction_id)
	// already exists. created is false for duplicates.
	InsertIfAbsent(ctx context.Context, t Transaction) (created bool, err error)
	// CompletePending marks a pending row completed; found is false when no
	// pending row exists for the provider transaction id.
	CompletePending(ctx context.Context, provider Provider, providerTxID, paymentIntentID string, at time.Time) (found bool, err error)
	RecordPurchase(ctx context.Context, p ProductPurchase) (created bool, err error)
	ListRecentCompleted(ctx context.Context, limit int) ([]Transaction, error)
	ListSupporters(ctx context.Context) ([]Supporter, error)
}
