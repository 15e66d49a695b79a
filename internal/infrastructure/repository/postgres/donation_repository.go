package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type DonationRepository struct {
	db *sqlx.DB
}

func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) InsertIfAbsent(ctx context.Context, t donation.Transaction) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	query, args, err := qb.InsertModel("donation_transactions", newDonationInsertModel(t),
		"ON CONFLICT (payment_provider, provider_transaction_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert donation query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert donation provider=%s tx=%s: %w", t.Provider, t.ProviderTransactionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read inserted donation rows: %w", err)
	}
	return affected > 0, nil
}

func (r *DonationRepository) CompletePending(ctx context.Context, provider donation.Provider, providerTxID, paymentIntentID string, at time.Time) (bool, error) {
	query, args, err := qb.Update("donation_transactions").
		Set("status", string(donation.StatusCompleted)).
		Set("payment_intent_id", optionalString(paymentIntentID)).
		Set("completed_at", at).
		Where(
			qb.Eq("payment_provider", string(provider)),
			qb.Eq("provider_transaction_id", providerTxID),
			qb.EqLiteral("status", string(donation.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build complete donation query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("complete donation provider=%s tx=%s: %w", provider, providerTxID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read completed donation rows: %w", err)
	}
	return affected > 0, nil
}

func (r *DonationRepository) RecordPurchase(ctx context.Context, p donation.ProductPurchase) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	query, args, err := qb.InsertModel("user_product_purchases", productPurchaseInsertModel{
		ID:                p.ID,
		UserID:            p.UserID,
		ProductID:         p.ProductID,
		Phrase:            optionalString(p.Phrase),
		ProviderSessionID: p.ProviderSessionID,
		PaymentIntentID:   optionalString(p.PaymentIntentID),
		AmountCents:       p.AmountCents,
		Status:            p.Status,
		CreatedAt:         p.CreatedAt,
	}, "ON CONFLICT (stripe_session_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert purchase query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert purchase session=%s: %w", p.ProviderSessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read inserted purchase rows: %w", err)
	}
	return affected > 0, nil
}

func (r *DonationRepository) ListRecentCompleted(ctx context.Context, limit int) ([]donation.Transaction, error) {
	query, args, err := qb.Select(donationColumns).
		From("donation_transactions").
		Where(qb.EqLiteral("status", string(donation.StatusCompleted))).
		OrderBy("COALESCE(completed_at, created_at) DESC", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build recent donations query: %w", err)
	}

	var rows []donationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select recent donations: %w", err)
	}

	out := make([]donation.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *DonationRepository) ListSupporters(ctx context.Context) ([]donation.Supporter, error) {
	query := `
WITH named AS (
    SELECT COALESCE(NULLIF(TRIM(kofi_from_name), ''), NULLIF(TRIM(customer_name), ''), $1) AS name,
        amount_cents, currency, created_at
    FROM donation_transactions
    WHERE status = 'completed'
)
SELECT MIN(name) AS name,
    SUM(amount_cents) AS total_cents,
    COUNT(*) AS donation_count,
    MIN(currency) AS currency,
    MAX(created_at) AS last_donation_at
FROM named
GROUP BY LOWER(name)
ORDER BY total_cents DESC, MIN(name)`

	var rows []supporterModel
	if err := r.db.SelectContext(ctx, &rows, query, donation.AnonymousSupporter); err != nil {
		return nil, fmt.Errorf("select supporters: %w", err)
	}

	out := make([]donation.Supporter, 0, len(rows))
	for _, row := range rows {
		out = append(out, donation.Supporter{
			Name:           row.Name,
			TotalCents:     row.TotalCents,
			DonationCount:  row.DonationCount,
			Currency:       row.Currency,
			LastDonationAt: row.LastDonationAt,
		})
	}
	return out, nil
}
