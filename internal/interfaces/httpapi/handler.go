package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

const maxRequestBody = 2 << 20

// WebhookVerifier authenticates payment provider callbacks.
type WebhookVerifier interface {
	Stripe(signatureHeader string, payload []byte) (donation.StripeCheckout, error)
	Square(signature, requestURL string, body []byte) (donation.SquarePayment, error)
	Kofi(data string) (donation.KofiPayment, error)
}

type Handler struct {
	profileService     *usecase.ProfileService
	squadService       *usecase.SquadService
	rosterLockService  *usecase.RosterLockService
	eloService         *usecase.EloService
	playerStatsService *usecase.PlayerStatsService
	duelingService     *usecase.DuelingService
	tournamentService  *usecase.TournamentService
	donationService    *usecase.DonationService
	squadRatingService *usecase.SquadRatingService
	jobService         *usecase.JobService
	webhooks           WebhookVerifier
	openAPI            *openAPIDocument
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	profileService *usecase.ProfileService,
	squadService *usecase.SquadService,
	rosterLockService *usecase.RosterLockService,
	eloService *usecase.EloService,
	playerStatsService *usecase.PlayerStatsService,
	duelingService *usecase.DuelingService,
	tournamentService *usecase.TournamentService,
	donationService *usecase.DonationService,
	squadRatingService *usecase.SquadRatingService,
	jobService *usecase.JobService,
	webhooks WebhookVerifier,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		profileService:     profileService,
		squadService:       squadService,
		rosterLockService:  rosterLockService,
		eloService:         eloService,
		playerStatsService: playerStatsService,
		duelingService:     duelingService,
		tournamentService:  tournamentService,
		donationService:    donationService,
		squadRatingService: squadRatingService,
		jobService:         jobService,
		webhooks:           webhooks,
		openAPI:            mustLoadOpenAPI(),
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body into dst, rejecting unknown fields.
func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	return body, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return v
}

func sortAscending(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("sortOrder")), "asc")
}
