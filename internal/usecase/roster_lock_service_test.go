package usecase

import (
	"testing"

	"github.com/riskibarqy/infantry-community/internal/domain/season"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func TestRosterLockService_Status(t *testing.T) {
	t.Parallel()

	ctfpl := season.Season{ID: "s-pl", League: season.LeagueCTFPL, Number: 4, Name: "Fall", Status: season.StatusActive}
	ctfdl := season.Season{ID: "s-dl", League: "ctfdl", LeagueName: "CTFDL", Number: 2, Status: season.StatusActive}

	tests := []struct {
		name       string
		seasons    []season.Season
		locks      []season.RosterLock
		wantLocked bool
		wantLabel  string
		wantNone   bool
	}{
		{name: "no active season", wantLabel: "No active season", wantNone: true},
		{
			name:      "ctfpl open",
			seasons:   []season.Season{ctfpl},
			wantLabel: "CTFPL Season 4 (Fall)",
		},
		{
			name:       "ctfpl locked",
			seasons:    []season.Season{ctfpl, ctfdl},
			locks:      []season.RosterLock{{SeasonID: "s-pl", IsLocked: true, Reason: "playoffs"}},
			wantLocked: true,
			wantLabel:  "CTFPL Season 4 (Fall)",
		},
		{
			name:       "other league locked wins over open ctfpl",
			seasons:    []season.Season{ctfpl, ctfdl},
			locks:      []season.RosterLock{{SeasonID: "s-dl", IsLocked: true}},
			wantLocked: true,
			wantLabel:  "CTFDL Season 2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := memory.NewSeasonRepository(tc.seasons...)
			for _, lock := range tc.locks {
				repo.SetLock(lock)
			}

			got, err := NewRosterLockService(repo, logging.NewNop()).Status(t.Context())
			if err != nil {
				t.Fatalf("roster lock status: %v", err)
			}
			if got.IsLocked != tc.wantLocked || got.LockedLabel != tc.wantLabel || got.NoActiveSeason != tc.wantNone {
				t.Fatalf("unexpected status: %+v", got)
			}
		})
	}
}
