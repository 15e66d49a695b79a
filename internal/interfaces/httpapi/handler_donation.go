package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/infantry-community/internal/usecase"
)

func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StripeWebhook")
	defer span.End()

	body, err := readBody(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	event, err := h.webhooks.Stripe(r.Header.Get("Stripe-Signature"), body)
	if err != nil {
		h.logger.WarnContext(ctx, "stripe webhook rejected", "error", err)
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			err = fmt.Errorf("%w: webhook error: %v", usecase.ErrInvalidInput, err)
		}
		writeError(ctx, w, err)
		return
	}

	result, err := h.donationService.HandleStripeCheckout(ctx, event)
	if err != nil {
		h.logger.ErrorContext(ctx, "stripe webhook failed", "event_id", event.EventID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SquareWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SquareWebhook")
	defer span.End()

	body, err := readBody(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	event, err := h.webhooks.Square(r.Header.Get("X-Square-Hmacsha256-Signature"), requestURL(r), body)
	if err != nil {
		h.logger.WarnContext(ctx, "square webhook rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	result, err := h.donationService.HandleSquarePayment(ctx, event)
	if err != nil {
		h.logger.ErrorContext(ctx, "square webhook failed", "event_id", event.EventID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) KofiWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.KofiWebhook")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid form payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	event, err := h.webhooks.Kofi(r.PostForm.Get("data"))
	if err != nil {
		h.logger.WarnContext(ctx, "ko-fi webhook rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	result, err := h.donationService.HandleKofi(ctx, event)
	if err != nil {
		h.logger.WarnContext(ctx, "ko-fi webhook failed", "message_id", event.MessageID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListRecentDonations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRecentDonations")
	defer span.End()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.donationService.RecentDonations(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "recent donations failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]donationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, donationToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListSupporters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSupporters")
	defer span.End()

	items, err := h.donationService.Supporters(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "supporters failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]supporterDTO, 0, len(items))
	for _, item := range items {
		out = append(out, supporterToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// requestURL rebuilds the URL the caller signed, honouring proxy headers.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host := r.Host
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + host + r.URL.Path
}
