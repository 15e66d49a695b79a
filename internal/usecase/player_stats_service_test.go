package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type recordingEloTrigger struct {
	mu      sync.Mutex
	seasons []string
	err     error
}

func (r *recordingEloTrigger) RequestEloRecalculation(_ context.Context, season string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seasons = append(r.seasons, season)
	return r.err
}

func (r *recordingEloTrigger) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.seasons...)
}

type csvPlayer struct {
	name, team, side, result string
}

func buildStatsCSV(mode string, players []csvPlayer) string {
	var b strings.Builder
	b.WriteString(strings.Join(playerstats.RequiredHeaders, ","))
	b.WriteString("\n")
	for _, p := range players {
		fmt.Fprintf(&b, "%s,%s,10,4,1,2,30,25,%s,Infantry,1,0,%s,%s,D,0.41,0.5,0.2,3,No\n",
			p.name, p.team, p.result, mode, p.side)
	}
	return b.String()
}

func ovdImportPlayers() []csvPlayer {
	return []csvPlayer{
		{"Axidus", "Titan Strike T", "offense", "Win"},
		{"Sid", "Titan Strike T", "offense", "Loss"},
		{"Vet", "Titan Strike T", "offense", "Loss"},
		{"Mako", "Titan Strike T", "defense", "Loss"},
		{"Rex", "Titan Strike T", "defense", "Loss"},
		{"Mighty", "Collective C", "defense", "Loss"},
		{"Blur", "Collective C", "defense", "Loss"},
		{"Dax", "Collective C", "offense", "Loss"},
		{"Kite", "Collective C", "defense", "Loss"},
		{"Zed", "Collective C", "defense", "Loss"},
	}
}

func newStatsTestService() (*PlayerStatsService, *memory.PlayerStatsRepository, *recordingEloTrigger) {
	repo := memory.NewPlayerStatsRepository()
	trigger := &recordingEloTrigger{}
	service := NewPlayerStatsService(repo, trigger, 2, logging.NewNop())
	service.now = func() time.Time { return time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC) }
	return service, repo, trigger
}

func TestPlayerStatsService_ImportCSV_RepairsOvDSides(t *testing.T) {
	t.Parallel()

	service, repo, trigger := newStatsTestService()
	result, err := service.ImportCSV(t.Context(), ImportStatsInput{
		Source: "match.csv",
		Reader: strings.NewReader(buildStatsCSV("OvD", ovdImportPlayers())),
		GameID: "Tournament_20260502_1",
	})
	if err != nil {
		t.Fatalf("import csv: %v", err)
	}
	if result.Rows != 10 || len(result.SideFixes) != 3 {
		t.Fatalf("unexpected import result: %+v", result)
	}

	rows, err := repo.ListByGame(t.Context(), "Tournament_20260502_1")
	if err != nil {
		t.Fatalf("list game: %v", err)
	}
	sides := make(map[string]map[string]int)
	for _, r := range rows {
		if sides[r.Team] == nil {
			sides[r.Team] = make(map[string]int)
		}
		sides[r.Team][r.Side]++
		if r.Team == "Titan Strike T" && r.Result != playerstats.ResultWin {
			t.Fatalf("expected the whole team to share the win, got %s for %s", r.Result, r.PlayerName)
		}
		if r.Season != "Q2-2026" {
			t.Fatalf("expected season Q2-2026, got %s", r.Season)
		}
	}
	if sides["Titan Strike T"][playerstats.SideOffense] != 5 || sides["Collective C"][playerstats.SideDefense] != 5 {
		t.Fatalf("expected 5 players per side per team, got %v", sides)
	}
	if calls := trigger.calls(); len(calls) != 1 || calls[0] != "Q2-2026" {
		t.Fatalf("expected one elo request for Q2-2026, got %v", calls)
	}
}

func TestPlayerStatsService_ImportCSV_RejectsBadInput(t *testing.T) {
	t.Parallel()

	service, _, trigger := newStatsTestService()

	_, err := service.ImportCSV(t.Context(), ImportStatsInput{Reader: strings.NewReader("PlayerName,Team\nA,B\n")})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "Kills") {
		t.Fatalf("expected missing header error, got %v", err)
	}

	bad := buildStatsCSV("OvD", []csvPlayer{{"Axidus", "", "offense", "Win"}})
	_, err = service.ImportCSV(t.Context(), ImportStatsInput{Reader: strings.NewReader(bad)})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "Team is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(trigger.calls()) != 0 {
		t.Fatalf("failed imports must not request elo recalculation")
	}
}

func TestPlayerStatsService_ImportBatch_ReportsPerSource(t *testing.T) {
	t.Parallel()

	service, _, trigger := newStatsTestService()
	results, err := service.ImportBatch(t.Context(), []ImportStatsInput{
		{Source: "a.csv", GameID: "g-a", Reader: strings.NewReader(buildStatsCSV("OvD", ovdImportPlayers()))},
		{Source: "b.csv", GameID: "g-b", Reader: strings.NewReader("")},
		{Source: "c.csv", GameID: "g-c", Reader: strings.NewReader(buildStatsCSV("OvD", ovdImportPlayers()))},
	})
	if err != nil {
		t.Fatalf("import batch: %v", err)
	}
	if len(results) != 3 || results[1].Error == "" {
		t.Fatalf("expected per-source results with an error for b.csv, got %+v", results)
	}
	failures := 0
	for _, r := range results {
		if r.Error != "" {
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected only the empty file to fail, got %d failures", failures)
	}
	if calls := trigger.calls(); len(calls) != 1 {
		t.Fatalf("expected a single elo request per season, got %v", calls)
	}
}

func TestPlayerStatsService_SubmitGame(t *testing.T) {
	t.Parallel()

	service, repo, trigger := newStatsTestService()
	trigger.err = errors.New("queue down")

	input := SubmitGameInput{
		GameID:    "live-1",
		ArenaName: "CTF Arena",
		Players: []playerstats.GameStat{
			{PlayerName: "Axidus", Team: "Titan", GameMode: "CTF", Result: "win", Kills: -3},
			{PlayerName: "Mighty", Team: "Collective", GameMode: "CTF", Result: "loss", Accuracy: 4},
		},
	}
	result, err := service.SubmitGame(t.Context(), input)
	if err != nil {
		t.Fatalf("submit game: %v", err)
	}
	if result.PlayersRecorded != 2 || result.GameID != "live-1" {
		t.Fatalf("unexpected submit result: %+v", result)
	}

	rows, _ := repo.ListByGame(t.Context(), "live-1")
	for _, r := range rows {
		if r.Kills < 0 || r.Accuracy > 1 || r.ArenaName != "CTF Arena" {
			t.Fatalf("expected sanitized row, got %+v", r)
		}
	}

	_, err = service.SubmitGame(t.Context(), input)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate game, got %v", err)
	}
	if _, err := service.SubmitGame(t.Context(), SubmitGameInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without players, got %v", err)
	}
}

func TestPlayerStatsService_RepairStoredOvDSides(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)
	rows := make([]playerstats.GameStat, 0, 5)
	for i, side := range []string{"offense", "offense", "defense", "offense", "defense"} {
		rows = append(rows, playerstats.GameStat{
			GameID: "old-1", PlayerName: fmt.Sprintf("P%d", i), Team: "Titan Strike T",
			GameMode: playerstats.ModeOvD, Side: side, Result: playerstats.ResultWin, GameDate: at,
		})
	}
	repo := memory.NewPlayerStatsRepository(rows...)
	service := NewPlayerStatsService(repo, nil, 1, logging.NewNop())

	preview, err := service.RepairStoredOvDSides(t.Context(), true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !preview.DryRun || preview.Games != 1 || len(preview.Fixes) != 2 {
		t.Fatalf("unexpected preview: %+v", preview)
	}
	stored, _ := repo.ListByGame(t.Context(), "old-1")
	if stored[2].Side != playerstats.SideDefense {
		t.Fatalf("dry run must not persist fixes")
	}

	if _, err := service.RepairStoredOvDSides(t.Context(), false); err != nil {
		t.Fatalf("repair: %v", err)
	}
	stored, _ = repo.ListByGame(t.Context(), "old-1")
	for _, r := range stored {
		if r.Side != playerstats.SideOffense {
			t.Fatalf("expected all rows on offense, got %s for %s", r.Side, r.PlayerName)
		}
	}
}

func TestPlayerStatsService_GameStatsNotFound(t *testing.T) {
	t.Parallel()

	service, _, _ := newStatsTestService()
	if _, err := service.GameStats(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
