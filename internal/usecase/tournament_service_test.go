package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func newTournamentTestService(t *testing.T, maxParticipants int) (*TournamentService, tournament.Tournament) {
	t.Helper()

	profiles := seedProfiles("Org", "Axidus", "Mighty", "Vet", "Late")
	profiles.Add(profile.Profile{ID: "user-admin", InGameAlias: "Boss", IsAdmin: true})

	service := NewTournamentService(memory.NewTournamentRepository(), profiles, &sequenceIDGenerator{prefix: "t"}, logging.NewNop())
	clock := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	created, err := service.Create(t.Context(), CreateTournamentInput{
		ActorID:         "user-Org",
		Name:            "  Summer Duel Cup ",
		MaxParticipants: maxParticipants,
		PrizePoolCents:  5000,
	})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return service, created
}

func TestTournamentService_Create(t *testing.T) {
	t.Parallel()

	_, created := newTournamentTestService(t, 0)
	if created.Name != "Summer Duel Cup" || created.Status != tournament.StatusRegistration {
		t.Fatalf("unexpected tournament: %+v", created)
	}
	if created.MaxParticipants != tournament.DefaultMaxParticipants || created.Type != tournament.TypeSingleElimination {
		t.Fatalf("defaults not applied: %+v", created)
	}

	service, _ := newTournamentTestService(t, 4)
	if _, err := service.Create(t.Context(), CreateTournamentInput{ActorID: "user-Org", Name: "Paid", EntryFeeCents: -1}); !errors.Is(err, tournament.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := service.Create(t.Context(), CreateTournamentInput{ActorID: "user-Org"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.Create(t.Context(), CreateTournamentInput{Name: "Anon"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTournamentService_Register_EnforcesCapacity(t *testing.T) {
	t.Parallel()

	service, created := newTournamentTestService(t, 3)

	for _, actor := range []string{"user-Axidus", "user-Mighty", "user-Vet"} {
		if _, err := service.Register(t.Context(), actor, created.ID); err != nil {
			t.Fatalf("register %s: %v", actor, err)
		}
	}
	if _, err := service.Register(t.Context(), "user-Axidus", created.ID); !errors.Is(err, tournament.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if _, err := service.Register(t.Context(), "user-Late", created.ID); !errors.Is(err, tournament.ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	if _, err := service.Register(t.Context(), "user-ghost", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown player, got %v", err)
	}

	got, err := service.Get(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if len(got.Participants) != 3 || got.Participants[0].PlayerAlias != "Axidus" {
		t.Fatalf("unexpected participants: %+v", got.Participants)
	}
}

func TestTournamentService_PlaysThroughWithBye(t *testing.T) {
	t.Parallel()

	service, created := newTournamentTestService(t, 8)
	for _, actor := range []string{"user-Axidus", "user-Mighty", "user-Vet"} {
		if _, err := service.Register(t.Context(), actor, created.ID); err != nil {
			t.Fatalf("register %s: %v", actor, err)
		}
	}

	if _, err := service.GenerateBracket(t.Context(), "user-Axidus", created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-organizer, got %v", err)
	}
	matches, err := service.GenerateBracket(t.Context(), "user-Org", created.ID)
	if err != nil {
		t.Fatalf("generate bracket: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches for a 4-slot bracket, got %d", len(matches))
	}
	if _, err := service.GenerateBracket(t.Context(), "user-Org", created.ID); !errors.Is(err, tournament.ErrBracketExists) {
		t.Fatalf("expected ErrBracketExists, got %v", err)
	}
	if _, err := service.Register(t.Context(), "user-Late", created.ID); !errors.Is(err, tournament.ErrNotAcceptingRegistrations) {
		t.Fatalf("expected ErrNotAcceptingRegistrations, got %v", err)
	}

	var semi, final tournament.BracketMatch
	byes := 0
	for _, m := range matches {
		switch {
		case m.Status == tournament.MatchBye:
			byes++
		case m.Round == 1 && m.Status == tournament.MatchReady:
			semi = m
		case m.Round == 2:
			final = m
		}
	}
	if byes != 1 || semi.ID == "" || final.ID == "" {
		t.Fatalf("unexpected bracket: %+v", matches)
	}

	if _, err := service.ReportMatch(t.Context(), ReportMatchInput{
		ActorID: "user-Late", TournamentID: created.ID, MatchID: semi.ID, WinnerID: semi.Player1ID,
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsiders cannot report, got %v", err)
	}
	if _, err := service.ReportMatch(t.Context(), ReportMatchInput{
		ActorID: "user-Org", TournamentID: created.ID, MatchID: final.ID, WinnerID: "user-Axidus",
	}); !errors.Is(err, tournament.ErrMatchNotReady) {
		t.Fatalf("final should wait for the semi, got %v", err)
	}
	if _, err := service.ReportMatch(t.Context(), ReportMatchInput{
		ActorID: semi.Player2ID, TournamentID: created.ID, MatchID: "missing", WinnerID: semi.Player1ID,
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	out, err := service.ReportMatch(t.Context(), ReportMatchInput{
		ActorID: semi.Player2ID, TournamentID: created.ID, MatchID: semi.ID, WinnerID: semi.Player1ID, DuelID: "duel-9",
	})
	if err != nil {
		t.Fatalf("report semi: %v", err)
	}
	if out.Final {
		t.Fatalf("semi must not finish the tournament")
	}

	out, err = service.ReportMatch(t.Context(), ReportMatchInput{
		ActorID: "user-admin", TournamentID: created.ID, MatchID: final.ID, WinnerID: semi.Player1ID,
	})
	if err != nil {
		t.Fatalf("report final: %v", err)
	}
	if !out.Final || out.WinnerID != semi.Player1ID {
		t.Fatalf("unexpected final outcome: %+v", out)
	}

	got, err := service.Get(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if got.Status != tournament.StatusCompleted || got.WinnerID != semi.Player1ID || got.RunnerUpID == "" {
		t.Fatalf("tournament not completed: %+v", got)
	}
	if got.EndTime == nil {
		t.Fatalf("end time should be set on completion")
	}
}

func TestTournamentService_ListAndUpdateStatus(t *testing.T) {
	t.Parallel()

	service, created := newTournamentTestService(t, 4)
	if _, err := service.Register(t.Context(), "user-Vet", created.ID); err != nil {
		t.Fatalf("register: %v", err)
	}

	items, err := service.List(t.Context(), tournament.ListQuery{Status: "all", IncludeParticipants: true})
	if err != nil {
		t.Fatalf("list tournaments: %v", err)
	}
	if len(items) != 1 || len(items[0].Participants) != 1 {
		t.Fatalf("unexpected list: %+v", items)
	}
	if _, err := service.List(t.Context(), tournament.ListQuery{Status: "paused"}); !errors.Is(err, tournament.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	if err := service.UpdateStatus(t.Context(), "user-Vet", created.ID, "cancelled"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.UpdateStatus(t.Context(), "user-Org", created.ID, "cancelled"); err != nil {
		t.Fatalf("cancel tournament: %v", err)
	}
	cancelled, err := service.List(t.Context(), tournament.ListQuery{Status: string(tournament.StatusCancelled)})
	if err != nil {
		t.Fatalf("list cancelled: %v", err)
	}
	if len(cancelled) != 1 {
		t.Fatalf("expected one cancelled tournament, got %d", len(cancelled))
	}
}
