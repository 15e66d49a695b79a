package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/platform/resilience"
)

const embedColor = 0x2ecc71

var errWebhookTransient = errors.New("discord webhook transient failure")

type Config struct {
	WebhookURL     string
	Username       string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Notifier posts donation announcements to a Discord channel webhook.
// Delivery is best-effort.
type Notifier struct {
	client     *fasthttp.Client
	webhookURL string
	username   string
	timeout    time.Duration
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewNotifier(cfg Config, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Notifier{
		client: &fasthttp.Client{
			Name:                "infantry-community",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		username:   strings.TrimSpace(cfg.Username),
		timeout:    timeout,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:     logger.Named("discord"),
	}
}

type webhookMessage struct {
	Username string  `json:"username,omitempty"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (n *Notifier) NotifyDonation(ctx context.Context, tx donation.Transaction) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := sonic.Marshal(buildDonationMessage(n.username, tx))
	if err != nil {
		return errors.Wrap(err, "marshal discord message")
	}

	send := func() error { return n.post(body) }
	err = n.breaker.Call(send, func(err error) bool { return errors.Is(err, errWebhookTransient) })
	if err != nil {
		return err
	}

	n.logger.DebugContext(ctx, "donation announced", "provider", tx.Provider, "provider_transaction_id", tx.ProviderTransactionID)
	return nil
}

func (n *Notifier) post(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		return errors.Mark(errors.Wrap(err, "post discord webhook"), errWebhookTransient)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return errors.Mark(errors.Newf("discord webhook status %d", status), errWebhookTransient)
	default:
		return errors.Newf("discord webhook status %d: %s", status, truncate(string(resp.Body()), 256))
	}
}

func buildDonationMessage(username string, tx donation.Transaction) webhookMessage {
	fields := []embedField{
		{Name: "Amount", Value: formatAmount(tx.AmountCents, tx.Currency), Inline: true},
		{Name: "Via", Value: providerLabel(tx.Provider), Inline: true},
	}
	if tx.KofiType != "" && tx.KofiType != donation.KofiTypeDonation {
		fields = append(fields, embedField{Name: "Type", Value: tx.KofiType, Inline: true})
	}

	msg := embed{
		Title:       fmt.Sprintf("%s just supported the community", tx.DisplayName()),
		Description: truncate(strings.TrimSpace(tx.Message), 1024),
		Color:       embedColor,
		Fields:      fields,
	}
	if tx.CompletedAt != nil {
		msg.Timestamp = tx.CompletedAt.UTC().Format(time.RFC3339)
	}
	return webhookMessage{Username: username, Embeds: []embed{msg}}
}

func formatAmount(cents int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

func providerLabel(p donation.Provider) string {
	switch p {
	case donation.ProviderKofi:
		return "Ko-fi"
	case donation.ProviderStripe:
		return "Stripe"
	case donation.ProviderSquare:
		return "Square"
	default:
		return string(p)
	}
}

func truncate(v string, max int) string {
	if len(v) <= max {
		return v
	}
	return v[:max-3] + "..."
}
