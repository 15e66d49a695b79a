package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

var eloTestNow = time.Date(2026, 2, 20, 18, 0, 0, 0, time.UTC)

func ovdGameRows(gameID string, at time.Time, winners, losers []string) []playerstats.GameStat {
	rows := make([]playerstats.GameStat, 0, len(winners)+len(losers))
	for _, name := range winners {
		rows = append(rows, playerstats.GameStat{
			GameID: gameID, PlayerName: name, Team: "Titan Strike", GameMode: playerstats.ModeOvD,
			Side: playerstats.SideOffense, Result: playerstats.ResultWin, GameDate: at,
		})
	}
	for _, name := range losers {
		rows = append(rows, playerstats.GameStat{
			GameID: gameID, PlayerName: name, Team: "Collective", GameMode: playerstats.ModeOvD,
			Side: playerstats.SideDefense, Result: playerstats.ResultLoss, GameDate: at,
		})
	}
	return rows
}

func newEloTestService(stats *memory.PlayerStatsRepository) (*EloService, *memory.EloRepository) {
	eloRepo := memory.NewEloRepository()
	service := NewEloService(eloRepo, stats, memory.NewDuelingRepository(), EloConfig{Workers: 2}, logging.NewNop())
	service.now = func() time.Time { return eloTestNow }
	return service, eloRepo
}

func TestEloService_RecalculateAll_RatesEveryModeAndCombined(t *testing.T) {
	t.Parallel()

	stats := memory.NewPlayerStatsRepository(append(
		ovdGameRows("g-1", eloTestNow.Add(-48*time.Hour), []string{"Axidus", "Sid"}, []string{"Mighty", "Vet"}),
		ovdGameRows("g-2", eloTestNow.Add(-24*time.Hour), []string{"Axidus", "Vet"}, []string{"Mighty", "Sid"})...,
	)...)
	service, eloRepo := newEloTestService(stats)

	result, err := service.RecalculateAll(t.Context(), "")
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if result.Season != "Q1-2026" {
		t.Fatalf("expected current season Q1-2026, got %s", result.Season)
	}
	if len(result.GameModes) != 2 || result.GameModes[0].GameMode != elo.ModeCombined || result.GameModes[1].GameMode != elo.ModeOvD {
		t.Fatalf("unexpected modes: %+v", result.GameModes)
	}
	if result.GameModes[0].Games != 2 || result.TotalRatings != 8 {
		t.Fatalf("unexpected totals: %+v", result)
	}

	axidus, ok, err := eloRepo.GetRating(t.Context(), "Q1-2026", elo.ModeOvD, "axidus")
	if err != nil || !ok {
		t.Fatalf("expected axidus rating, ok=%v err=%v", ok, err)
	}
	mighty, _, _ := eloRepo.GetRating(t.Context(), "Q1-2026", elo.ModeOvD, "Mighty")
	if axidus.Rating <= elo.BaseRating || mighty.Rating >= elo.BaseRating {
		t.Fatalf("expected winner above and loser below base, got axidus=%.1f mighty=%.1f", axidus.Rating, mighty.Rating)
	}
	if axidus.GamesPlayed != 2 || axidus.Wins != 2 {
		t.Fatalf("unexpected axidus record: %+v", axidus)
	}

	again, err := service.RecalculateAll(t.Context(), "Q1-2026")
	if err != nil {
		t.Fatalf("recalculate again: %v", err)
	}
	if again.TotalRatings != result.TotalRatings {
		t.Fatalf("expected recalculation to replace ratings, got %d then %d", result.TotalRatings, again.TotalRatings)
	}
}

func TestEloService_RecalculateAll_SeedsFromPreviousSeason(t *testing.T) {
	t.Parallel()

	service, eloRepo := newEloTestService(memory.NewPlayerStatsRepository())
	if err := eloRepo.UpsertRatings(t.Context(), []elo.Rating{
		{PlayerName: "Axidus", GameMode: elo.ModeOvD, Season: "Q4-2025", Rating: 1600, Peak: 1600, Confidence: 1, GamesPlayed: 40},
	}); err != nil {
		t.Fatalf("seed ratings: %v", err)
	}

	if _, err := service.RecalculateAll(t.Context(), "Q1-2026"); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	got, ok, _ := eloRepo.GetRating(t.Context(), "Q1-2026", elo.ModeOvD, "Axidus")
	if !ok {
		t.Fatalf("expected carried over rating")
	}
	if got.Rating != elo.CarryOver(1600) || got.Confidence != 0.5 {
		t.Fatalf("unexpected carried over rating: %+v", got)
	}
}

func TestEloService_RecalculateAll_InvalidSeason(t *testing.T) {
	t.Parallel()

	service, _ := newEloTestService(memory.NewPlayerStatsRepository())
	_, err := service.RecalculateAll(t.Context(), "2026-Q1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEloService_TransitionSeason_DryRunThenForce(t *testing.T) {
	t.Parallel()

	service, eloRepo := newEloTestService(memory.NewPlayerStatsRepository())
	if err := eloRepo.UpsertRatings(t.Context(), []elo.Rating{
		{PlayerName: "Axidus", GameMode: elo.ModeCombined, Season: "Q1-2026", Rating: 1400, Confidence: 0.8},
		{PlayerName: "Mighty", GameMode: elo.ModeCombined, Season: "Q1-2026", Rating: 1000, Confidence: 0.4},
	}); err != nil {
		t.Fatalf("seed ratings: %v", err)
	}

	preview, err := service.TransitionSeason(t.Context(), TransitionSeasonInput{ToSeason: "Q2-2026"})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !preview.DryRun || preview.FromSeason != "Q1-2026" || preview.Players != 2 {
		t.Fatalf("unexpected preview: %+v", preview)
	}
	if n, _ := eloRepo.CountSeason(t.Context(), "Q2-2026"); n != 0 {
		t.Fatalf("dry run must not persist, found %d ratings", n)
	}

	if _, err := service.TransitionSeason(t.Context(), TransitionSeasonInput{ToSeason: "Q2-2026", Force: true}); err != nil {
		t.Fatalf("force transition: %v", err)
	}
	got, ok, _ := eloRepo.GetRating(t.Context(), "Q2-2026", elo.ModeCombined, "Axidus")
	if !ok || got.Rating != elo.CarryOver(1400) || got.GamesPlayed != 0 {
		t.Fatalf("unexpected transitioned rating: %+v ok=%v", got, ok)
	}
	if len(eloRepo.Archived()) != 2 {
		t.Fatalf("expected source season archived, got %d rows", len(eloRepo.Archived()))
	}

	_, err = service.TransitionSeason(t.Context(), TransitionSeasonInput{ToSeason: "Q2-2026", Force: true})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for populated target season, got %v", err)
	}
}

func TestEloService_TransitionSeason_RequiresTarget(t *testing.T) {
	t.Parallel()

	service, _ := newEloTestService(memory.NewPlayerStatsRepository())
	if _, err := service.TransitionSeason(t.Context(), TransitionSeasonInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err := service.TransitionSeason(t.Context(), TransitionSeasonInput{FromSeason: "Q2-2026", ToSeason: "Q2-2026"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for same season, got %v", err)
	}
}

func TestEloService_Leaderboard_FiltersAndModes(t *testing.T) {
	t.Parallel()

	service, eloRepo := newEloTestService(memory.NewPlayerStatsRepository())
	if err := eloRepo.UpsertRatings(t.Context(), []elo.Rating{
		{PlayerName: "Axidus", GameMode: elo.ModeCombined, Season: "Q1-2026", Rating: 1400, Confidence: 1, GamesPlayed: 30},
		{PlayerName: "Mighty", GameMode: elo.ModeCombined, Season: "Q1-2026", Rating: 1500, Confidence: 0.1, GamesPlayed: 3},
		{PlayerName: "Rookie", GameMode: elo.ModeCombined, Season: "Q1-2026", Rating: 1900, Confidence: 0.03, GamesPlayed: 1},
		{PlayerName: "Axidus", GameMode: elo.ModeOvD, Season: "Q1-2026", Rating: 1300, GamesPlayed: 5},
	}); err != nil {
		t.Fatalf("seed ratings: %v", err)
	}

	got, err := service.Leaderboard(t.Context(), elo.LeaderboardQuery{MinGames: 3})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if got.Query.Season != "Q1-2026" || got.Query.GameMode != elo.ModeCombined {
		t.Fatalf("unexpected normalized query: %+v", got.Query)
	}
	if got.Page.Total != 2 || got.Page.Ratings[0].PlayerName != "Axidus" {
		t.Fatalf("expected weighted sort to put the confident player first, got %+v", got.Page)
	}
	if len(got.AvailableModes) != 2 {
		t.Fatalf("expected two modes, got %v", got.AvailableModes)
	}
}
