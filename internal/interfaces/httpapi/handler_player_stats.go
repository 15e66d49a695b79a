package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type submitGameRequest struct {
	GameID    string              `json:"gameId" validate:"max=100"`
	GameDate  string              `json:"gameDate"`
	ArenaName string              `json:"arenaName"`
	Players   []playerStatPayload `json:"players" validate:"required,min=1,dive"`
}

type playerStatPayload struct {
	PlayerName                 string  `json:"playerName" validate:"required"`
	Team                       string  `json:"team"`
	GameMode                   string  `json:"gameMode"`
	ArenaName                  string  `json:"arenaName"`
	BaseUsed                   string  `json:"baseUsed"`
	Side                       string  `json:"side"`
	Result                     string  `json:"result"`
	MainClass                  string  `json:"mainClass"`
	Kills                      int     `json:"kills"`
	Deaths                     int     `json:"deaths"`
	Captures                   int     `json:"captures"`
	CarrierKills               int     `json:"carrierKills"`
	CarryTimeSeconds           int     `json:"carryTimeSeconds"`
	ClassSwaps                 int     `json:"classSwaps"`
	TurretDamage               int     `json:"turretDamage"`
	EBHits                     int     `json:"ebHits"`
	Accuracy                   float64 `json:"accuracy"`
	AvgResourceUnusedPerDeath  float64 `json:"avgResourceUnusedPerDeath"`
	AvgExplosiveUnusedPerDeath float64 `json:"avgExplosiveUnusedPerDeath"`
	GameLengthMinutes          float64 `json:"gameLengthMinutes"`
	LeftEarly                  bool    `json:"leftEarly"`
}

func (p playerStatPayload) toGameStat() playerstats.GameStat {
	return playerstats.GameStat{
		PlayerName:                 p.PlayerName,
		Team:                       p.Team,
		GameMode:                   p.GameMode,
		ArenaName:                  p.ArenaName,
		BaseUsed:                   p.BaseUsed,
		Side:                       p.Side,
		Result:                     p.Result,
		MainClass:                  p.MainClass,
		Kills:                      p.Kills,
		Deaths:                     p.Deaths,
		Captures:                   p.Captures,
		CarrierKills:               p.CarrierKills,
		CarryTimeSeconds:           p.CarryTimeSeconds,
		ClassSwaps:                 p.ClassSwaps,
		TurretDamage:               p.TurretDamage,
		EBHits:                     p.EBHits,
		Accuracy:                   p.Accuracy,
		AvgResourceUnusedPerDeath:  p.AvgResourceUnusedPerDeath,
		AvgExplosiveUnusedPerDeath: p.AvgExplosiveUnusedPerDeath,
		GameLengthMinutes:          p.GameLengthMinutes,
		LeftEarly:                  p.LeftEarly,
	}
}

func (h *Handler) SubmitPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPlayerStats")
	defer span.End()

	var req submitGameRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameDate, err := parseOptionalTime(req.GameDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	players := make([]playerstats.GameStat, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, p.toGameStat())
	}

	result, err := h.playerStatsService.SubmitGame(ctx, usecase.SubmitGameInput{
		GameID:    req.GameID,
		GameDate:  gameDate,
		ArenaName: req.ArenaName,
		Players:   players,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit player stats failed", "game_id", req.GameID, "players", len(players), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetEloLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEloLeaderboard")
	defer span.End()

	limit, err := queryInt(r, "limit", elo.DefaultLeaderboardLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	minGames, err := queryInt(r, "minGames", elo.DefaultMinGames)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	q := r.URL.Query()
	result, err := h.eloService.Leaderboard(ctx, elo.LeaderboardQuery{
		Season:     q.Get("season"),
		GameMode:   q.Get("gameMode"),
		SortBy:     q.Get("sortBy"),
		Ascending:  sortAscending(r),
		Limit:      limit,
		Offset:     offset,
		MinGames:   minGames,
		PlayerName: q.Get("playerName"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "elo leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eloLeaderboardToDTO(result))
}

func (h *Handler) GetStatsLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatsLeaderboard")
	defer span.End()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	minGames, err := queryInt(r, "minGames", 1)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := playerstats.LeaderboardQuery{
		SortBy:    r.URL.Query().Get("sortBy"),
		Ascending: sortAscending(r),
		Limit:     limit,
		Offset:    offset,
		GameMode:  strings.TrimSpace(r.URL.Query().Get("gameMode")),
		MinGames:  minGames,
	}.Normalize()
	items, total, err := h.playerStatsService.Leaderboard(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "stats leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]aggregateDTO, 0, len(items))
	for i, item := range items {
		dto := aggregateToDTO(item)
		dto.DisplayRank = query.Offset + i + 1
		out = append(out, dto)
	}
	writeSuccess(ctx, w, http.StatusOK, statsLeaderboardDTO{
		Items:      out,
		Pagination: newPagination(total, query.Limit, query.Offset),
	})
}

func (h *Handler) ListRecentGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRecentGames")
	defer span.End()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.playerStatsService.RecentGames(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "recent games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]gameSummaryDTO, 0, len(games))
	for _, g := range games {
		out = append(out, gameSummaryToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetGameStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameStats")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	rows, err := h.playerStatsService.GameStats(ctx, gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]gameStatDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameStatToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerProfile")
	defer span.End()

	name := strings.TrimSpace(r.PathValue("name"))
	item, err := h.profileService.PlayerProfile(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "player profile failed", "player_name", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerProfileToDTO(item))
}

func parseOptionalTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", usecase.ErrInvalidInput, raw)
}
