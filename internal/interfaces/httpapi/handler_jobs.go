package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type recalculateEloJobRequest struct {
	Season     string `json:"season"`
	DispatchID string `json:"dispatch_id"`
}

// RunRecalculateEloJob is the queue callback for ELO recalculation. An empty
// body recalculates the current season.
func (h *Handler) RunRecalculateEloJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateEloJob")
	defer span.End()

	req, err := decodeInternalJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season := strings.TrimSpace(req.Season)
	if season == "" {
		season = h.eloService.CurrentSeason()
	}

	result, err := h.jobService.RunEloRecalculation(ctx, usecase.EloJobInput{
		Season:     season,
		DispatchID: req.DispatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run recalculate elo job failed", "season", season, "dispatch_id", req.DispatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "recalculate elo job completed",
		"season", result.Season,
		"total_ratings", result.TotalRatings,
		"duration_ms", result.DurationMs,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeInternalJobRequest(r *http.Request) (recalculateEloJobRequest, error) {
	body, err := readBody(r)
	if err != nil {
		return recalculateEloJobRequest{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return recalculateEloJobRequest{}, nil
	}

	decoder := sonic.ConfigDefault.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	var req recalculateEloJobRequest
	if err := decoder.Decode(&req); err != nil {
		return recalculateEloJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
