package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type createSquadRatingRequest struct {
	SquadID          string                     `json:"squad_id" validate:"required"`
	SeasonName       string                     `json:"season_name" validate:"required,max=100"`
	AnalysisDate     string                     `json:"analysis_date"`
	Commentary       string                     `json:"analyst_commentary"`
	AnalystQuote     string                     `json:"analyst_quote"`
	BreakdownSummary string                     `json:"breakdown_summary"`
	PlayerRatings    []playerRatingRequestEntry `json:"player_ratings" validate:"dive"`
}

type playerRatingRequestEntry struct {
	PlayerID    string  `json:"player_id" validate:"required"`
	PlayerAlias string  `json:"player_alias"`
	Rating      float64 `json:"rating"`
	Notes       string  `json:"notes"`
}

func (h *Handler) ListSquadRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSquadRatings")
	defer span.End()

	items, err := h.squadRatingService.List(ctx, strings.TrimSpace(r.URL.Query().Get("squadId")))
	if err != nil {
		h.logger.WarnContext(ctx, "list squad ratings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]squadRatingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, squadRatingToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) CreateSquadRating(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSquadRating")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createSquadRatingRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	analysisDate, err := parseOptionalTime(req.AnalysisDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ratings := make([]squadrating.PlayerRating, 0, len(req.PlayerRatings))
	for _, p := range req.PlayerRatings {
		ratings = append(ratings, squadrating.PlayerRating{
			PlayerID:    p.PlayerID,
			PlayerAlias: p.PlayerAlias,
			Rating:      p.Rating,
			Notes:       p.Notes,
		})
	}

	item, err := h.squadRatingService.Create(ctx, usecase.CreateSquadRatingInput{
		ActorID:          principal.UserID,
		SquadID:          req.SquadID,
		SeasonName:       req.SeasonName,
		AnalysisDate:     analysisDate,
		Commentary:       req.Commentary,
		AnalystQuote:     req.AnalystQuote,
		BreakdownSummary: req.BreakdownSummary,
		PlayerRatings:    ratings,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create squad rating failed", "user_id", principal.UserID, "squad_id", req.SquadID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, squadRatingToDTO(item))
}
