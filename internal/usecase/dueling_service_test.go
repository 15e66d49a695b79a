package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

var duelTestNow = time.Date(2026, 4, 10, 20, 0, 0, 0, time.UTC)

func newDuelTestService() (*DuelingService, *memory.DuelingRepository, *memory.EloRepository) {
	duels := memory.NewDuelingRepository()
	eloService, eloRepo := newEloTestService(memory.NewPlayerStatsRepository())
	service := NewDuelingService(duels, seedProfiles("Axidus", "Mighty"), eloService,
		&sequenceIDGenerator{prefix: "duel"}, logging.NewNop())
	service.now = func() time.Time { return duelTestNow }
	return service, duels, eloRepo
}

func TestDuelingService_RecordMatch_RankedMovesDuelingLadder(t *testing.T) {
	t.Parallel()

	service, _, eloRepo := newDuelTestService()

	match, err := service.RecordMatch(t.Context(), RecordDuelInput{
		MatchType:   "ranked_bo3",
		Player1Name: "axidus",
		Player2Name: "Mighty",
		WinnerName:  "AXIDUS",
		Rounds: []dueling.Round{
			{WinnerName: "axidus", LoserName: "Mighty", WinnerHPLeft: 40, DurationSeconds: 30},
			{WinnerName: "Mighty", LoserName: "axidus", WinnerHPLeft: 10, DurationSeconds: 45},
			{WinnerName: "axidus", LoserName: "Mighty", WinnerHPLeft: 75, DurationSeconds: 20},
		},
	})
	if err != nil {
		t.Fatalf("record duel: %v", err)
	}
	if match.ID != "duel-001" {
		t.Fatalf("unexpected id: %s", match.ID)
	}
	if match.WinnerID != "user-Axidus" || match.Player2ID != "user-Mighty" {
		t.Fatalf("players should resolve by alias: %+v", match)
	}
	if match.Player1RoundsWon != 2 || match.Player2RoundsWon != 1 {
		t.Fatalf("unexpected rounds won: %d-%d", match.Player1RoundsWon, match.Player2RoundsWon)
	}
	if got := match.CompletedAt.Sub(match.StartedAt); got != 95*time.Second {
		t.Fatalf("start should be derived from round durations, got %s", got)
	}
	if match.Rounds[2].RoundNumber != 3 {
		t.Fatalf("round numbers should be filled, got %d", match.Rounds[2].RoundNumber)
	}

	season := elo.CurrentSeason(duelTestNow)
	winner, ok, err := eloRepo.GetRating(t.Context(), season, elo.ModeDueling, "axidus")
	if err != nil || !ok {
		t.Fatalf("winner rating missing: ok=%v err=%v", ok, err)
	}
	loser, ok, err := eloRepo.GetRating(t.Context(), season, elo.ModeDueling, "Mighty")
	if err != nil || !ok {
		t.Fatalf("loser rating missing: ok=%v err=%v", ok, err)
	}
	if winner.Rating <= elo.BaseRating || loser.Rating >= elo.BaseRating {
		t.Fatalf("ratings did not move: winner=%.1f loser=%.1f", winner.Rating, loser.Rating)
	}
}

func TestDuelingService_RecordMatch_UnrankedLeavesLadderAlone(t *testing.T) {
	t.Parallel()

	service, duels, eloRepo := newDuelTestService()

	match, err := service.RecordMatch(t.Context(), RecordDuelInput{
		MatchType:   "unranked",
		Player1Name: "Stranger",
		Player2Name: "Mighty",
		WinnerName:  "Stranger",
		CompletedAt: duelTestNow.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("record duel: %v", err)
	}
	if match.Player1ID != "" {
		t.Fatalf("unknown alias should stay unlinked, got %q", match.Player1ID)
	}
	if _, ok, _ := eloRepo.GetRating(t.Context(), elo.CurrentSeason(duelTestNow), elo.ModeDueling, "Stranger"); ok {
		t.Fatalf("unranked duels must not be rated")
	}

	got, err := service.GetMatch(t.Context(), match.ID)
	if err != nil {
		t.Fatalf("get duel: %v", err)
	}
	if got.WinnerName != "Stranger" {
		t.Fatalf("unexpected winner: %s", got.WinnerName)
	}
	if _, total, _ := duels.List(t.Context(), dueling.ListQuery{}.Normalize()); total != 1 {
		t.Fatalf("expected one stored duel, got %d", total)
	}
}

func TestDuelingService_RecordMatch_RejectsBadInput(t *testing.T) {
	t.Parallel()

	service, _, _ := newDuelTestService()

	tests := []struct {
		name  string
		input RecordDuelInput
		want  error
	}{
		{
			name:  "missing winner",
			input: RecordDuelInput{MatchType: "unranked", Player1Name: "a", Player2Name: "b"},
			want:  ErrInvalidInput,
		},
		{
			name:  "unknown type",
			input: RecordDuelInput{MatchType: "ladder", Player1Name: "a", Player2Name: "b", WinnerName: "a"},
			want:  dueling.ErrUnknownMatchType,
		},
		{
			name:  "winner not a player",
			input: RecordDuelInput{MatchType: "unranked", Player1Name: "a", Player2Name: "b", WinnerName: "c"},
			want:  dueling.ErrInvalidWinner,
		},
		{
			name: "winner without majority",
			input: RecordDuelInput{
				MatchType: "ranked_bo5", Player1Name: "a", Player2Name: "b", WinnerName: "a",
				Rounds: []dueling.Round{{WinnerName: "a"}, {WinnerName: "b"}},
			},
			want: dueling.ErrNotEnoughRounds,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.RecordMatch(t.Context(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDuelingService_ListMatches(t *testing.T) {
	t.Parallel()

	service, _, _ := newDuelTestService()
	for i, winner := range []string{"Axidus", "Mighty"} {
		if _, err := service.RecordMatch(t.Context(), RecordDuelInput{
			MatchType:   "unranked",
			Player1Name: "Axidus",
			Player2Name: "Mighty",
			WinnerName:  winner,
			CompletedAt: duelTestNow.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("record duel %d: %v", i, err)
		}
	}

	items, total, query, err := service.ListMatches(t.Context(), dueling.ListQuery{MatchType: "all", Limit: 500})
	if err != nil {
		t.Fatalf("list duels: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("unexpected totals: total=%d len=%d", total, len(items))
	}
	if query.Limit != dueling.MaxListLimit {
		t.Fatalf("limit should be clamped, got %d", query.Limit)
	}
	if items[0].WinnerName != "Mighty" {
		t.Fatalf("newest duel should come first, got %s", items[0].WinnerName)
	}

	if _, _, _, err := service.ListMatches(t.Context(), dueling.ListQuery{MatchType: "ladder"}); !errors.Is(err, dueling.ErrUnknownMatchType) {
		t.Fatalf("expected ErrUnknownMatchType, got %v", err)
	}
	if _, err := service.GetMatch(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
