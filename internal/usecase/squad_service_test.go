package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/season"
	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

var squadTestNow = time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)

func newSquadTestService(profiles *memory.ProfileRepository, seasons *memory.SeasonRepository) (*SquadService, *memory.SquadRepository) {
	squadRepo := memory.NewSquadRepository()
	if seasons == nil {
		seasons = memory.NewSeasonRepository()
	}
	lock := NewRosterLockService(seasons, logging.NewNop())
	service := NewSquadService(squadRepo, profiles, lock, &sequenceIDGenerator{prefix: "id"}, logging.NewNop())
	service.now = func() time.Time { return squadTestNow }
	return service, squadRepo
}

func TestSquadService_CreateSquad_OneActiveSquadPerPlayer(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus"), nil)

	created, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "br"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	if created.Tag != "BR" || created.CaptainID != "user-Axidus" || !created.IsActive {
		t.Fatalf("unexpected squad: %+v", created)
	}
	if !created.CreatedAt.Equal(squadTestNow) {
		t.Fatalf("expected created at %v, got %v", squadTestNow, created.CreatedAt)
	}

	_, err = service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Second", Tag: "SEC"})
	if !errors.Is(err, squad.ErrAlreadyInActiveSquad) {
		t.Fatalf("expected ErrAlreadyInActiveSquad, got %v", err)
	}
}

func TestSquadService_CreateSquad_ConcurrentCreatesKeepOneActiveSquad(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus"), nil)

	const attempts = 16
	start := make(chan struct{})
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := service.CreateSquad(t.Context(), CreateSquadInput{
				ActorID: "user-Axidus",
				Name:    fmt.Sprintf("Squad %02d", i),
				Tag:     fmt.Sprintf("S%02d", i),
			})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, squad.ErrAlreadyInActiveSquad):
			t.Fatalf("expected ErrAlreadyInActiveSquad, got %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one squad created, got %d", created)
	}
}

func TestSquadService_CreateSquadRacingInviteAccept(t *testing.T) {
	t.Parallel()

	for round := range 20 {
		service, squadRepo := newSquadTestService(seedProfiles("Axidus", "Sid"), nil)
		item, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"})
		if err != nil {
			t.Fatalf("round %d: create squad: %v", round, err)
		}
		invite, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: item.ID, PlayerID: "user-Sid"})
		if err != nil {
			t.Fatalf("round %d: invite: %v", round, err)
		}

		start := make(chan struct{})
		var createErr, acceptErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, createErr = service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Sid", Name: "Steel", Tag: "STL"})
		}()
		go func() {
			defer wg.Done()
			<-start
			acceptErr = service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: invite.ID, Accept: true})
		}()
		close(start)
		wg.Wait()

		if (createErr == nil) == (acceptErr == nil) {
			t.Fatalf("round %d: expected exactly one success, got create=%v accept=%v", round, createErr, acceptErr)
		}
		for _, err := range []error{createErr, acceptErr} {
			if err != nil && !errors.Is(err, squad.ErrAlreadyInActiveSquad) {
				t.Fatalf("round %d: expected ErrAlreadyInActiveSquad, got %v", round, err)
			}
		}

		membership, exists, err := squadRepo.FindActiveMembership(t.Context(), "user-Sid")
		if err != nil || !exists {
			t.Fatalf("round %d: expected one active membership, got %+v %v %v", round, membership, exists, err)
		}
	}
}

func TestSquadService_CreateSquad_LegacyMembershipDoesNotBlock(t *testing.T) {
	t.Parallel()

	service, squadRepo := newSquadTestService(seedProfiles("Axidus"), nil)
	squadRepo.Seed(
		squad.Squad{ID: "legacy-1", Name: "Old Guard", Tag: "OG", IsActive: true, IsLegacy: true, CaptainID: "user-Axidus"},
		squad.Member{ID: "m-1", SquadID: "legacy-1", PlayerID: "user-Axidus", Role: squad.RoleCaptain, Status: squad.MemberStatusActive},
	)

	if _, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "New Guard", Tag: "NG"}); err != nil {
		t.Fatalf("expected legacy membership to be ignored, got %v", err)
	}
}

func TestSquadService_CreateSquad_NameTakenIgnoresCase(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus", "Mighty"), nil)
	if _, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"}); err != nil {
		t.Fatalf("create squad: %v", err)
	}

	_, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Mighty", Name: "blood rain", Tag: "XX"})
	if !errors.Is(err, squad.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestSquadService_CreateSquad_ReusesNameOfDisbandedSquad(t *testing.T) {
	t.Parallel()

	service, squadRepo := newSquadTestService(seedProfiles("Axidus"), nil)
	squadRepo.Seed(squad.Squad{ID: "gone", Name: "Blood Rain", Tag: "BR", IsActive: false, CaptainID: "user-Old"})

	created, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"})
	if err != nil {
		t.Fatalf("expected inactive squad not to hold its name, got %v", err)
	}
	if created.ID == "gone" || created.Tag != "BR" {
		t.Fatalf("unexpected squad: %+v", created)
	}
}

func TestSquadService_CreateSquad_Validation(t *testing.T) {
	t.Parallel()

	profiles := seedProfiles("Axidus")
	profiles.Add(profile.Profile{ID: "user-banned", InGameAlias: "Banned", IsLeagueBanned: true})
	service, _ := newSquadTestService(profiles, nil)

	cases := []struct {
		name  string
		input CreateSquadInput
		want  error
	}{
		{name: "missing tag", input: CreateSquadInput{ActorID: "user-Axidus", Name: "No Tag"}, want: ErrInvalidInput},
		{name: "long tag", input: CreateSquadInput{ActorID: "user-Axidus", Name: "Long", Tag: "TOOLONG"}, want: ErrInvalidInput},
		{name: "anonymous", input: CreateSquadInput{Name: "Anon", Tag: "AN"}, want: ErrInvalidInput},
		{name: "banned", input: CreateSquadInput{ActorID: "user-banned", Name: "Banned", Tag: "BAN"}, want: ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateSquad(t.Context(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSquadService_RespondInvite_RejectsSecondActiveSquad(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus", "Mighty", "Sid"), nil)
	first, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"})
	if err != nil {
		t.Fatalf("create first squad: %v", err)
	}
	second, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Mighty", Name: "Steel", Tag: "STL"})
	if err != nil {
		t.Fatalf("create second squad: %v", err)
	}

	invite, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: first.ID, PlayerID: "user-Sid"})
	if err != nil {
		t.Fatalf("invite to first: %v", err)
	}
	if err := service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: invite.ID, Accept: true}); err != nil {
		t.Fatalf("accept first invite: %v", err)
	}

	invite, err = service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Mighty", SquadID: second.ID, PlayerID: "user-Sid"})
	if err != nil {
		t.Fatalf("invite to second: %v", err)
	}
	err = service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: invite.ID, Accept: true})
	if !errors.Is(err, squad.ErrAlreadyInActiveSquad) {
		t.Fatalf("expected ErrAlreadyInActiveSquad, got %v", err)
	}

	detail, err := service.GetSquad(t.Context(), second.ID)
	if err != nil {
		t.Fatalf("get squad: %v", err)
	}
	if len(detail.Members) != 1 {
		t.Fatalf("expected only the captain on the second squad, got %d members", len(detail.Members))
	}
}

func TestSquadService_RespondInvite_ExpiredAndForeign(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus", "Sid", "Other"), nil)
	item, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	invite, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: item.ID, PlayerID: "user-Sid"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	err = service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Other", InviteID: invite.ID, Accept: true})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	service.now = func() time.Time { return squadTestNow.Add(squad.InviteTTL) }
	err = service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: invite.ID, Accept: true})
	if !errors.Is(err, squad.ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}
	err = service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: invite.ID, Accept: true})
	if !errors.Is(err, squad.ErrInviteNotPending) {
		t.Fatalf("expected ErrInviteNotPending, got %v", err)
	}
}

func TestSquadService_InvitePlayer_ReinviteAfterExpiry(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus", "Sid"), nil)
	item, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	first, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: item.ID, PlayerID: "user-Sid"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: item.ID, PlayerID: "user-Sid"}); !errors.Is(err, squad.ErrDuplicateInvite) {
		t.Fatalf("expected ErrDuplicateInvite while the first is live, got %v", err)
	}

	service.now = func() time.Time { return squadTestNow.Add(8 * 24 * time.Hour) }
	pending, err := service.ListPendingInvites(t.Context(), "user-Sid")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected lapsed invite to be hidden, got %d", len(pending))
	}

	second, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: item.ID, PlayerID: "user-Sid"})
	if err != nil {
		t.Fatalf("re-invite after expiry: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a new invite, got %s again", second.ID)
	}

	err = service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: first.ID, Accept: true})
	if !errors.Is(err, squad.ErrInviteNotPending) {
		t.Fatalf("expected old invite to be closed, got %v", err)
	}
	if err := service.RespondInvite(t.Context(), RespondInviteInput{PlayerID: "user-Sid", InviteID: second.ID, Accept: true}); err != nil {
		t.Fatalf("accept new invite: %v", err)
	}
}

func TestSquadService_InvitePlayer_RosterLocked(t *testing.T) {
	t.Parallel()

	profiles := seedProfiles("Axidus", "Sid")
	profiles.Add(profile.Profile{ID: "user-admin", InGameAlias: "Admin", IsAdmin: true})
	seasons := memory.NewSeasonRepository(season.Season{ID: "s-3", League: season.LeagueCTFPL, Number: 3, Status: season.StatusActive})
	seasons.SetLock(season.RosterLock{SeasonID: "s-3", IsLocked: true, Reason: "playoffs"})
	service, _ := newSquadTestService(profiles, seasons)

	item, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Blood Rain", Tag: "BR"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	_, err = service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: item.ID, PlayerID: "user-Sid"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while locked, got %v", err)
	}

	if _, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-admin", SquadID: item.ID, PlayerID: "user-Sid"}); err != nil {
		t.Fatalf("expected admin override to bypass roster lock, got %v", err)
	}
}

func TestSquadService_InvitePlayer_OnlyLeaders(t *testing.T) {
	t.Parallel()

	service, squadRepo := newSquadTestService(seedProfiles("Axidus", "Sid", "Nobody"), nil)
	squadRepo.Seed(
		squad.Squad{ID: "sq-1", Name: "Blood Rain", Tag: "BR", IsActive: true, CaptainID: "user-Axidus"},
		squad.Member{ID: "m-1", SquadID: "sq-1", PlayerID: "user-Axidus", Role: squad.RoleCaptain, Status: squad.MemberStatusActive},
		squad.Member{ID: "m-2", SquadID: "sq-1", PlayerID: "user-Sid", Role: squad.RolePlayer, Status: squad.MemberStatusActive},
	)

	_, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Sid", SquadID: "sq-1", PlayerID: "user-Nobody"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a regular player, got %v", err)
	}
	_, err = service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: "sq-1", PlayerID: "user-Sid"})
	if !errors.Is(err, squad.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestSquadService_InvitePlayer_CapacityCountsRegularPlayersOnly(t *testing.T) {
	t.Parallel()

	profiles := seedProfiles("Axidus", "Sid")
	profiles.Add(profile.Profile{ID: "user-trans", InGameAlias: "Trans", TransitionalPlayer: true})
	service, squadRepo := newSquadTestService(profiles, nil)
	squadRepo.Seed(
		squad.Squad{ID: "sq-1", Name: "Tiny", Tag: "TNY", IsActive: true, CaptainID: "user-Axidus", MaxMembers: 1},
		squad.Member{ID: "m-1", SquadID: "sq-1", PlayerID: "user-Axidus", Role: squad.RoleCaptain, Status: squad.MemberStatusActive},
	)

	_, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: "sq-1", PlayerID: "user-Sid"})
	if !errors.Is(err, squad.ErrSquadFull) {
		t.Fatalf("expected ErrSquadFull, got %v", err)
	}
	if _, err := service.InvitePlayer(t.Context(), InvitePlayerInput{ActorID: "user-Axidus", SquadID: "sq-1", PlayerID: "user-trans"}); err != nil {
		t.Fatalf("expected transitional player to be exempt, got %v", err)
	}

	check, err := service.CheckCapacity(t.Context(), "user-Axidus", "sq-1", "user-Sid")
	if err != nil {
		t.Fatalf("check capacity: %v", err)
	}
	if check.Allowed || check.RegularCount != 1 || check.MaxMembers != 1 {
		t.Fatalf("unexpected capacity check: %+v", check)
	}
}

func TestSquadService_LeaveSquad_CaptainSuccession(t *testing.T) {
	t.Parallel()

	service, squadRepo := newSquadTestService(seedProfiles("Axidus", "Sid", "Vet"), nil)
	squadRepo.Seed(
		squad.Squad{ID: "sq-1", Name: "Blood Rain", Tag: "BR", IsActive: true, CaptainID: "user-Axidus"},
		squad.Member{ID: "m-1", SquadID: "sq-1", PlayerID: "user-Axidus", Role: squad.RoleCaptain, Status: squad.MemberStatusActive, JoinedAt: squadTestNow.AddDate(0, -6, 0)},
		squad.Member{ID: "m-2", SquadID: "sq-1", PlayerID: "user-Sid", Role: squad.RoleCoCaptain, Status: squad.MemberStatusActive, JoinedAt: squadTestNow.AddDate(0, -1, 0)},
		squad.Member{ID: "m-3", SquadID: "sq-1", PlayerID: "user-Vet", Role: squad.RoleCoCaptain, Status: squad.MemberStatusActive, JoinedAt: squadTestNow.AddDate(0, -3, 0)},
	)

	if err := service.LeaveSquad(t.Context(), "user-Axidus", "sq-1"); err != nil {
		t.Fatalf("leave squad: %v", err)
	}

	detail, err := service.GetSquad(t.Context(), "sq-1")
	if err != nil {
		t.Fatalf("get squad: %v", err)
	}
	if detail.Squad.CaptainID != "user-Vet" {
		t.Fatalf("expected longest serving co-captain to take over, got %s", detail.Squad.CaptainID)
	}
	if len(detail.Members) != 2 {
		t.Fatalf("expected 2 remaining members, got %d", len(detail.Members))
	}
}

func TestSquadService_LeaveSquad_CaptainWithoutSuccessor(t *testing.T) {
	t.Parallel()

	service, _ := newSquadTestService(seedProfiles("Axidus"), nil)
	item, err := service.CreateSquad(t.Context(), CreateSquadInput{ActorID: "user-Axidus", Name: "Solo", Tag: "SOLO"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	err = service.LeaveSquad(t.Context(), "user-Axidus", item.ID)
	if !errors.Is(err, squad.ErrCaptainNeedsSuccessor) {
		t.Fatalf("expected ErrCaptainNeedsSuccessor, got %v", err)
	}
}

func TestSquadService_TransferCaptain(t *testing.T) {
	t.Parallel()

	service, squadRepo := newSquadTestService(seedProfiles("Axidus", "Sid"), nil)
	squadRepo.Seed(
		squad.Squad{ID: "sq-1", Name: "Blood Rain", Tag: "BR", IsActive: true, CaptainID: "user-Axidus"},
		squad.Member{ID: "m-1", SquadID: "sq-1", PlayerID: "user-Axidus", Role: squad.RoleCaptain, Status: squad.MemberStatusActive},
		squad.Member{ID: "m-2", SquadID: "sq-1", PlayerID: "user-Sid", Role: squad.RolePlayer, Status: squad.MemberStatusActive},
	)

	err := service.TransferCaptain(t.Context(), TransferCaptainInput{ActorID: "user-Sid", SquadID: "sq-1", NewCaptainID: "user-Sid"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.TransferCaptain(t.Context(), TransferCaptainInput{ActorID: "user-Axidus", SquadID: "sq-1", NewCaptainID: "user-Sid"}); err != nil {
		t.Fatalf("transfer captain: %v", err)
	}

	detail, err := service.GetSquad(t.Context(), "sq-1")
	if err != nil {
		t.Fatalf("get squad: %v", err)
	}
	if detail.Squad.CaptainID != "user-Sid" {
		t.Fatalf("unexpected captain after transfer: %+v", detail)
	}
	for _, m := range detail.Members {
		if m.PlayerID == "user-Axidus" && m.Role != squad.RolePlayer {
			t.Fatalf("expected previous captain demoted, got role %s", m.Role)
		}
	}
}

func TestSquadService_SetLegacy_ReactivateConflict(t *testing.T) {
	t.Parallel()

	profiles := seedProfiles("Axidus", "Sid")
	profiles.Add(profile.Profile{ID: "user-admin", InGameAlias: "Admin", IsAdmin: true})
	service, squadRepo := newSquadTestService(profiles, nil)
	squadRepo.Seed(
		squad.Squad{ID: "old", Name: "Old", Tag: "OLD", IsActive: true, IsLegacy: true, CaptainID: "user-Sid"},
		squad.Member{ID: "m-1", SquadID: "old", PlayerID: "user-Sid", Role: squad.RoleCaptain, Status: squad.MemberStatusActive},
	)
	squadRepo.Seed(
		squad.Squad{ID: "new", Name: "New", Tag: "NEW", IsActive: true, CaptainID: "user-Sid"},
		squad.Member{ID: "m-2", SquadID: "new", PlayerID: "user-Sid", Role: squad.RoleCaptain, Status: squad.MemberStatusActive},
	)

	if err := service.SetLegacy(t.Context(), "user-Axidus", "old", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	err := service.SetLegacy(t.Context(), "user-admin", "old", false)
	if !errors.Is(err, squad.ErrLegacyConflict) {
		t.Fatalf("expected ErrLegacyConflict, got %v", err)
	}
	if err := service.SetLegacy(t.Context(), "user-admin", "new", true); err != nil {
		t.Fatalf("mark legacy: %v", err)
	}
	if err := service.SetLegacy(t.Context(), "user-admin", "old", false); err != nil {
		t.Fatalf("reactivate after the other squad went legacy: %v", err)
	}
}
