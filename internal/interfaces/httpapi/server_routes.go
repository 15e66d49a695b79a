package httpapi

import (
	"net/http"

	"github.com/riskibarqy/infantry-community/internal/domain/jobscheduler"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPIYAML)
	mux.HandleFunc("GET /openapi.json", handler.OpenAPIJSON)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/squads", handler.ListSquads)
	mux.HandleFunc("GET /api/squads/{squadID}", handler.GetSquad)
	mux.HandleFunc("GET /api/roster-lock-status", handler.GetRosterLockStatus)

	mux.HandleFunc("GET /api/player-stats/elo-leaderboard", handler.GetEloLeaderboard)
	mux.HandleFunc("GET /api/player-stats/leaderboard", handler.GetStatsLeaderboard)
	mux.HandleFunc("GET /api/player-stats/recent-games", handler.ListRecentGames)
	mux.HandleFunc("GET /api/player-stats/game/{gameID}", handler.GetGameStats)
	mux.HandleFunc("GET /api/player-stats/player/{name}/profile", handler.GetPlayerProfile)

	mux.HandleFunc("GET /api/dueling/matches", handler.ListDuels)
	mux.HandleFunc("GET /api/dueling/matches/{matchID}", handler.GetDuel)
	mux.HandleFunc("GET /api/dueling/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /api/dueling/tournaments/{tournamentID}", handler.GetTournament)

	mux.HandleFunc("GET /api/squad-ratings", handler.ListSquadRatings)
	mux.HandleFunc("GET /api/recent-donations", handler.ListRecentDonations)
	mux.HandleFunc("GET /api/supporters", handler.ListSupporters)
}

// Webhooks authenticate through provider signatures instead of bearer tokens.
func registerWebhookRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/webhooks/stripe", handler.StripeWebhook)
	mux.HandleFunc("POST /api/webhooks/square", handler.SquareWebhook)
	mux.HandleFunc("POST /api/kofi-webhook", handler.KofiWebhook)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedSquadRoutes(mux, handler, verifier)
	registerAuthorizedTournamentRoutes(mux, handler, verifier)
	mux.Handle("POST /api/squad-ratings", RequireAuth(verifier, http.HandlerFunc(handler.CreateSquadRating)))
}

func registerAuthorizedSquadRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /api/squads", RequireAuth(verifier, http.HandlerFunc(handler.CreateSquad)))
	mux.Handle("POST /api/squads/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveSquad)))
	mux.Handle("POST /api/squads/transfer-captain", RequireAuth(verifier, http.HandlerFunc(handler.TransferCaptain)))
	mux.Handle("GET /api/squads/invites", RequireAuth(verifier, http.HandlerFunc(handler.ListMyInvites)))
	mux.Handle("POST /api/squads/{squadID}/invites", RequireAuth(verifier, http.HandlerFunc(handler.InvitePlayer)))
	mux.Handle("POST /api/squads/invites/{inviteID}/respond", RequireAuth(verifier, http.HandlerFunc(handler.RespondInvite)))
	mux.Handle("PUT /api/squads/{squadID}/legacy", RequireAuth(verifier, http.HandlerFunc(handler.SetSquadLegacy)))
	mux.Handle("GET /api/squads/{squadID}/capacity", RequireAuth(verifier, http.HandlerFunc(handler.CheckSquadCapacity)))
}

func registerAuthorizedTournamentRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /api/dueling/tournaments", RequireAuth(verifier, http.HandlerFunc(handler.CreateTournament)))
	mux.Handle("POST /api/dueling/tournaments/{tournamentID}/register", RequireAuth(verifier, http.HandlerFunc(handler.RegisterForTournament)))
	mux.Handle("POST /api/dueling/tournaments/{tournamentID}/bracket", RequireAuth(verifier, http.HandlerFunc(handler.GenerateTournamentBracket)))
	mux.Handle("POST /api/dueling/tournaments/{tournamentID}/matches/{matchID}/result", RequireAuth(verifier, http.HandlerFunc(handler.ReportTournamentMatch)))
	mux.Handle("PUT /api/dueling/tournaments/{tournamentID}/status", RequireAuth(verifier, http.HandlerFunc(handler.UpdateTournamentStatus)))
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /api/player-stats", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SubmitPlayerStats)))
	mux.Handle("POST /api/dueling/matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecordDuel)))
	mux.Handle("POST "+jobscheduler.PathRecalculateElo, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateEloJob)))
}
