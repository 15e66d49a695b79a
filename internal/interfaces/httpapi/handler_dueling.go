package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type recordDuelRequest struct {
	MatchType   string             `json:"matchType" validate:"required"`
	Player1Name string             `json:"player1Name" validate:"required"`
	Player2Name string             `json:"player2Name" validate:"required"`
	WinnerName  string             `json:"winnerName" validate:"required"`
	ArenaName   string             `json:"arenaName"`
	StartedAt   string             `json:"startedAt"`
	CompletedAt string             `json:"completedAt"`
	Rounds      []duelRoundPayload `json:"rounds" validate:"dive"`
}

type duelRoundPayload struct {
	RoundNumber     int               `json:"roundNumber" validate:"min=0"`
	WinnerName      string            `json:"winnerName" validate:"required"`
	LoserName       string            `json:"loserName" validate:"required"`
	WinnerHPLeft    int               `json:"winnerHpLeft"`
	LoserHPLeft     int               `json:"loserHpLeft"`
	DurationSeconds int               `json:"durationSeconds" validate:"min=0"`
	Kills           []duelKillPayload `json:"kills" validate:"dive"`
}

type duelKillPayload struct {
	KillerName     string `json:"killerName" validate:"required"`
	VictimName     string `json:"victimName" validate:"required"`
	WeaponUsed     string `json:"weaponUsed"`
	DamageDealt    int    `json:"damageDealt"`
	VictimHPBefore int    `json:"victimHpBefore"`
	VictimHPAfter  int    `json:"victimHpAfter"`
	ShotsFired     int    `json:"shotsFired"`
	ShotsHit       int    `json:"shotsHit"`
	IsDoubleHit    bool   `json:"isDoubleHit"`
	IsTripleHit    bool   `json:"isTripleHit"`
}

func (p duelRoundPayload) toRound(fallbackNumber int) dueling.Round {
	number := p.RoundNumber
	if number <= 0 {
		number = fallbackNumber
	}
	kills := make([]dueling.Kill, 0, len(p.Kills))
	for _, k := range p.Kills {
		kills = append(kills, dueling.Kill{
			RoundNumber:    number,
			KillerName:     k.KillerName,
			VictimName:     k.VictimName,
			WeaponUsed:     k.WeaponUsed,
			DamageDealt:    k.DamageDealt,
			VictimHPBefore: k.VictimHPBefore,
			VictimHPAfter:  k.VictimHPAfter,
			ShotsFired:     k.ShotsFired,
			ShotsHit:       k.ShotsHit,
			IsDoubleHit:    k.IsDoubleHit,
			IsTripleHit:    k.IsTripleHit,
		})
	}
	return dueling.Round{
		RoundNumber:     number,
		WinnerName:      p.WinnerName,
		LoserName:       p.LoserName,
		WinnerHPLeft:    p.WinnerHPLeft,
		LoserHPLeft:     p.LoserHPLeft,
		DurationSeconds: p.DurationSeconds,
		Kills:           kills,
	}
}

type createTournamentRequest struct {
	Name                 string     `json:"name" validate:"required,max=100"`
	Description          string     `json:"description" validate:"max=2000"`
	MaxParticipants      int        `json:"max_participants" validate:"omitempty,min=2,max=256"`
	EntryFeeCents        int64      `json:"entry_fee_cents" validate:"min=0"`
	PrizePoolCents       int64      `json:"prize_pool_cents" validate:"min=0"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	StartTime            *time.Time `json:"start_time"`
	EndTime              *time.Time `json:"end_time"`
}

type reportMatchRequest struct {
	WinnerID string `json:"winner_id" validate:"required"`
	DuelID   string `json:"duel_id"`
}

type updateTournamentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) RecordDuel(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordDuel")
	defer span.End()

	var req recordDuelRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startedAt, err := parseOptionalTime(req.StartedAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	completedAt, err := parseOptionalTime(req.CompletedAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rounds := make([]dueling.Round, 0, len(req.Rounds))
	for i, round := range req.Rounds {
		rounds = append(rounds, round.toRound(i+1))
	}

	match, err := h.duelingService.RecordMatch(ctx, usecase.RecordDuelInput{
		MatchType:   req.MatchType,
		Player1Name: req.Player1Name,
		Player2Name: req.Player2Name,
		WinnerName:  req.WinnerName,
		ArenaName:   req.ArenaName,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Rounds:      rounds,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record duel failed", "match_type", req.MatchType, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, duelMatchToDTO(match))
}

func (h *Handler) ListDuels(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDuels")
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

	q := r.URL.Query()
	items, total, query, err := h.duelingService.ListMatches(ctx, dueling.ListQuery{
		Limit:      limit,
		Offset:     offset,
		MatchType:  strings.TrimSpace(q.Get("matchType")),
		PlayerName: q.Get("playerName"),
		Status:     strings.TrimSpace(q.Get("status")),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]duelMatchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, duelMatchToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"items":      out,
		"pagination": newPagination(total, query.Limit, query.Offset),
	})
}

func (h *Handler) GetDuel(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDuel")
	defer span.End()

	item, err := h.duelingService.GetMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, duelMatchToDTO(item))
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.tournamentService.List(ctx, tournament.ListQuery{
		Status:              strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:               limit,
		IncludeParticipants: queryBool(r, "includeParticipants"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]tournamentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tournamentToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	item, err := h.tournamentService.Get(ctx, strings.TrimSpace(r.PathValue("tournamentID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createTournamentRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournamentService.Create(ctx, usecase.CreateTournamentInput{
		ActorID:              principal.UserID,
		Name:                 req.Name,
		Description:          req.Description,
		MaxParticipants:      req.MaxParticipants,
		EntryFeeCents:        req.EntryFeeCents,
		PrizePoolCents:       req.PrizePoolCents,
		RegistrationDeadline: req.RegistrationDeadline,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(item))
}

func (h *Handler) RegisterForTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterForTournament")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	participant, err := h.tournamentService.Register(ctx, principal.UserID, strings.TrimSpace(r.PathValue("tournamentID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(participant))
}

func (h *Handler) GenerateTournamentBracket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateTournamentBracket")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.tournamentService.GenerateBracket(ctx, principal.UserID, strings.TrimSpace(r.PathValue("tournamentID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, bracketToDTO(matches))
}

func (h *Handler) ReportTournamentMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportTournamentMatch")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req reportMatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome, err := h.tournamentService.ReportMatch(ctx, usecase.ReportMatchInput{
		ActorID:      principal.UserID,
		TournamentID: strings.TrimSpace(r.PathValue("tournamentID")),
		MatchID:      strings.TrimSpace(r.PathValue("matchID")),
		WinnerID:     req.WinnerID,
		DuelID:       req.DuelID,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, matchOutcomeDTO{
		Final:      outcome.Final,
		WinnerID:   outcome.WinnerID,
		RunnerUpID: outcome.RunnerUpID,
		Updated:    bracketToDTO(outcome.Updated),
	})
}

func (h *Handler) UpdateTournamentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTournamentStatus")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateTournamentStatusRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.tournamentService.UpdateStatus(ctx, principal.UserID, strings.TrimSpace(r.PathValue("tournamentID")), req.Status); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, messageDTO{Message: "Tournament status updated"})
}
