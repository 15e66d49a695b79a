package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
)

type squareEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Data    struct {
		ID     string `json:"id"`
		Object struct {
			Payment *squarePayment `json:"payment"`
			Order   *squareOrder   `json:"order"`
		} `json:"object"`
	} `json:"data"`
}

type squarePayment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	OrderID     string `json:"order_id"`
	SourceType  string `json:"source_type"`
	Note        string `json:"note"`
	BuyerEmail  string `json:"buyer_email_address"`
	ReceiptMail string `json:"receipt_email"`
	CreatedAt   string `json:"created_at"`
	AmountMoney struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"amount_money"`
	CustomerDetails struct {
		Email string `json:"email_address"`
	} `json:"customer_details"`
}

type squareOrder struct {
	ID        string            `json:"id"`
	Metadata  map[string]string `json:"metadata"`
	LineItems []struct {
		Note     string            `json:"note"`
		Metadata map[string]string `json:"metadata"`
	} `json:"line_items"`
	Fulfillments []struct {
		Recipient struct {
			Email string `json:"email_address"`
		} `json:"recipient"`
	} `json:"fulfillments"`
}

// Square verifies x-square-hmacsha256-signature when a key is configured and
// flattens the notification. requestURL is signed over when no notification
// URL is configured.
func (v *Verifier) Square(signature, requestURL string, body []byte) (donation.SquarePayment, error) {
	if v.squareKey != "" {
		notificationURL := v.squareURL
		if notificationURL == "" {
			notificationURL = requestURL
		}
		if err := v.verifySquareSignature(signature, notificationURL, body); err != nil {
			return donation.SquarePayment{}, err
		}
	}

	var event squareEvent
	if err := sonic.Unmarshal(body, &event); err != nil {
		return donation.SquarePayment{}, malformed(err, "square event")
	}

	out := donation.SquarePayment{
		EventID:   event.EventID,
		EventType: event.Type,
	}
	order := event.Data.Object.Order
	if order != nil {
		out.OrderID = order.ID
	}
	if strings.HasPrefix(event.Type, "order.") && out.OrderID == "" {
		out.OrderID = event.Data.ID
	}

	payment := event.Data.Object.Payment
	if payment == nil {
		return out, nil
	}
	out.PaymentID = payment.ID
	out.Status = payment.Status
	out.AmountCents = payment.AmountMoney.Amount
	out.Currency = payment.AmountMoney.Currency
	out.SourceType = payment.SourceType
	if out.OrderID == "" {
		out.OrderID = payment.OrderID
	}
	if ts, err := time.Parse(time.RFC3339, payment.CreatedAt); err == nil {
		out.CreatedAt = ts
	}

	orderMeta := func(key string) string {
		if order == nil {
			return ""
		}
		return order.Metadata[key]
	}
	lineMeta := func(key string) string {
		if order == nil || len(order.LineItems) == 0 {
			return ""
		}
		return order.LineItems[0].Metadata[key]
	}
	var fulfillmentEmail, lineNote string
	if order != nil && len(order.Fulfillments) > 0 {
		fulfillmentEmail = order.Fulfillments[0].Recipient.Email
	}
	if order != nil && len(order.LineItems) > 0 {
		lineNote = order.LineItems[0].Note
	}

	out.Email = firstEmail(
		orderMeta("userEmail"),
		lineMeta("userEmail"),
		payment.BuyerEmail,
		payment.ReceiptMail,
		fulfillmentEmail,
		payment.CustomerDetails.Email,
		orderMeta("customer_email"),
		orderMeta("customerEmail"),
	)
	out.Alias = firstNonEmpty(
		orderMeta("inGameAlias"),
		lineMeta("inGameAlias"),
		orderMeta("userAlias"),
		orderMeta("alias"),
	)
	out.Note = firstNonEmpty(
		orderMeta("donationMessage"),
		lineMeta("donationMessage"),
		payment.Note,
		lineNote,
		orderMeta("message"),
	)
	return out, nil
}

func (v *Verifier) verifySquareSignature(signature, notificationURL string, body []byte) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(notificationURL)
	_, _ = buf.Write(body)

	mac := hmac.New(sha256.New, []byte(v.squareKey))
	mac.Write(buf.B)
	expected := mac.Sum(nil)

	if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil && hmac.Equal(decoded, expected) {
		return nil
	}
	if decoded, err := hex.DecodeString(signature); err == nil && hmac.Equal(decoded, expected) {
		return nil
	}
	return ErrInvalidSignature
}

func firstEmail(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.Contains(v, "@") {
			return strings.ToLower(v)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
