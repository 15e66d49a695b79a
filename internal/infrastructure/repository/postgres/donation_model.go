package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
)

const donationColumns = `id, payment_provider, provider_transaction_id, amount_cents, currency, status, customer_name,
    customer_email, donation_message, user_id, payment_method, provider_order_id, payment_intent_id,
    kofi_type, kofi_url, kofi_from_name, kofi_shop_items, created_at, completed_at`

type donationTableModel struct {
	ID                    string         `db:"id"`
	Provider              string         `db:"payment_provider"`
	ProviderTransactionID string         `db:"provider_transaction_id"`
	AmountCents           int64          `db:"amount_cents"`
	Currency              string         `db:"currency"`
	Status                string         `db:"status"`
	CustomerName          string         `db:"customer_name"`
	CustomerEmail         string         `db:"customer_email"`
	Message               string         `db:"donation_message"`
	UserID                sql.NullString `db:"user_id"`
	PaymentMethod         string         `db:"payment_method"`
	ProviderOrderID       sql.NullString `db:"provider_order_id"`
	PaymentIntentID       sql.NullString `db:"payment_intent_id"`
	KofiType              sql.NullString `db:"kofi_type"`
	KofiURL               sql.NullString `db:"kofi_url"`
	KofiFromName          sql.NullString `db:"kofi_from_name"`
	KofiShopItems         sql.NullString `db:"kofi_shop_items"`
	CreatedAt             time.Time      `db:"created_at"`
	CompletedAt           *time.Time     `db:"completed_at"`
}

type donationInsertModel struct {
	ID                    string     `db:"id"`
	Provider              string     `db:"payment_provider"`
	ProviderTransactionID string     `db:"provider_transaction_id"`
	AmountCents           int64      `db:"amount_cents"`
	Currency              string     `db:"currency"`
	Status                string     `db:"status"`
	CustomerName          string     `db:"customer_name"`
	CustomerEmail         string     `db:"customer_email"`
	Message               string     `db:"donation_message"`
	UserID                *string    `db:"user_id"`
	PaymentMethod         string     `db:"payment_method"`
	ProviderOrderID       *string    `db:"provider_order_id"`
	PaymentIntentID       *string    `db:"payment_intent_id"`
	KofiType              *string    `db:"kofi_type"`
	KofiURL               *string    `db:"kofi_url"`
	KofiFromName          *string    `db:"kofi_from_name"`
	KofiShopItems         *string    `db:"kofi_shop_items"`
	CreatedAt             time.Time  `db:"created_at"`
	CompletedAt           *time.Time `db:"completed_at"`
}

type productPurchaseInsertModel struct {
	ID                string    `db:"id"`
	UserID            string    `db:"user_id"`
	ProductID         string    `db:"product_id"`
	Phrase            *string   `db:"phrase"`
	ProviderSessionID string    `db:"stripe_session_id"`
	PaymentIntentID   *string   `db:"payment_intent_id"`
	AmountCents       int64     `db:"amount_cents"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
}

type supporterModel struct {
	Name           string    `db:"name"`
	TotalCents     int64     `db:"total_cents"`
	DonationCount  int       `db:"donation_count"`
	Currency       string    `db:"currency"`
	LastDonationAt time.Time `db:"last_donation_at"`
}

func newDonationInsertModel(t donation.Transaction) donationInsertModel {
	return donationInsertModel{
		ID:                    t.ID,
		Provider:              string(t.Provider),
		ProviderTransactionID: t.ProviderTransactionID,
		AmountCents:           t.AmountCents,
		Currency:              t.Currency,
		Status:                string(t.Status),
		CustomerName:          t.CustomerName,
		CustomerEmail:         t.CustomerEmail,
		Message:               t.Message,
		UserID:                optionalString(t.UserID),
		PaymentMethod:         t.PaymentMethod,
		ProviderOrderID:       optionalString(t.ProviderOrderID),
		PaymentIntentID:       optionalString(t.PaymentIntentID),
		KofiType:              optionalString(t.KofiType),
		KofiURL:               optionalString(t.KofiURL),
		KofiFromName:          optionalString(t.KofiFromName),
		KofiShopItems:         optionalString(t.KofiShopItems),
		CreatedAt:             t.CreatedAt,
		CompletedAt:           t.CompletedAt,
	}
}

func (m donationTableModel) toDomain() donation.Transaction {
	return donation.Transaction{
		ID:                    m.ID,
		Provider:              donation.Provider(m.Provider),
		ProviderTransactionID: m.ProviderTransactionID,
		AmountCents:           m.AmountCents,
		Currency:              m.Currency,
		Status:                donation.Status(m.Status),
		CustomerName:          m.CustomerName,
		CustomerEmail:         m.CustomerEmail,
		Message:               m.Message,
		UserID:                nullStringValue(m.UserID),
		PaymentMethod:         m.PaymentMethod,
		ProviderOrderID:       nullStringValue(m.ProviderOrderID),
		PaymentIntentID:       nullStringValue(m.PaymentIntentID),
		KofiType:              nullStringValue(m.KofiType),
		KofiURL:               nullStringValue(m.KofiURL),
		KofiFromName:          nullStringValue(m.KofiFromName),
		KofiShopItems:         nullStringValue(m.KofiShopItems),
		CreatedAt:             m.CreatedAt,
		CompletedAt:           m.CompletedAt,
	}
}
