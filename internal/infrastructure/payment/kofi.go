package payment

import (
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
)

type kofiPayload struct {
	VerificationToken string  `json:"verification_token"`
	MessageID         string  `json:"message_id"`
	Timestamp         string  `json:"timestamp"`
	Type              string  `json:"type"`
	IsPublic          bool    `json:"is_public"`
	FromName          string  `json:"from_name"`
	Message           string  `json:"message"`
	Amount            string  `json:"amount"`
	URL               string  `json:"url"`
	Email             string  `json:"email"`
	Currency          string  `json:"currency"`
	TransactionID     string  `json:"kofi_transaction_id"`
	ShopItems         rawJSON `json:"shop_items"`
}

type rawJSON []byte

func (m *rawJSON) UnmarshalJSON(data []byte) error {
	*m = append((*m)[:0], data...)
	return nil
}

// Kofi decodes the JSON document Ko-fi posts in the data form field. The
// verification token is checked by the donation service.
func (v *Verifier) Kofi(data string) (donation.KofiPayment, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return donation.KofiPayment{}, errors.Wrap(ErrMalformedPayload, "ko-fi data field is empty")
	}

	var payload kofiPayload
	if err := sonic.UnmarshalString(data, &payload); err != nil {
		return donation.KofiPayment{}, malformed(err, "ko-fi payload")
	}

	out := donation.KofiPayment{
		VerificationToken: payload.VerificationToken,
		MessageID:         payload.MessageID,
		TransactionID:     strings.TrimSpace(payload.TransactionID),
		Type:              strings.TrimSpace(payload.Type),
		FromName:          payload.FromName,
		Email:             payload.Email,
		Message:           payload.Message,
		Amount:            payload.Amount,
		Currency:          payload.Currency,
		URL:               payload.URL,
		IsPublic:          payload.IsPublic,
	}
	if items := strings.TrimSpace(string(payload.ShopItems)); items != "" && items != "null" {
		out.ShopItems = items
	}
	if ts, err := time.Parse(time.RFC3339, payload.Timestamp); err == nil {
		out.Timestamp = ts
	}
	return out, nil
}
