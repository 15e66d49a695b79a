package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

func newSquadRatingTestService() *SquadRatingService {
	profiles := seedProfiles("Axidus")
	profiles.Add(profile.Profile{ID: "user-media", InGameAlias: "Caster", IsMediaManager: true})

	service := NewSquadRatingService(memory.NewSquadRatingRepository(), profiles, &sequenceIDGenerator{prefix: "rating"}, logging.NewNop())
	service.now = func() time.Time { return time.Date(2026, 7, 14, 16, 45, 0, 0, time.UTC) }
	return service
}

func TestSquadRatingService_Create(t *testing.T) {
	t.Parallel()

	service := newSquadRatingTestService()

	got, err := service.Create(t.Context(), CreateSquadRatingInput{
		ActorID:    "user-media",
		SquadID:    "sq-1",
		SeasonName: "CTFPL Season 4",
		Commentary: "  solid D  ",
		PlayerRatings: []squadrating.PlayerRating{
			{PlayerID: "p-1", PlayerAlias: "Axidus", Rating: 8.5},
			{PlayerID: "p-2", PlayerAlias: "Mighty", Rating: 6.5},
		},
	})
	if err != nil {
		t.Fatalf("create rating: %v", err)
	}
	if got.AnalystAlias != "Caster" || got.Commentary != "solid D" {
		t.Fatalf("unexpected rating: %+v", got)
	}
	if want := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC); !got.AnalysisDate.Equal(want) {
		t.Fatalf("analysis date should default to today, got %s", got.AnalysisDate)
	}
	if got.AverageRating() != 7.5 {
		t.Fatalf("unexpected average: %v", got.AverageRating())
	}

	items, err := service.List(t.Context(), "sq-1")
	if err != nil {
		t.Fatalf("list ratings: %v", err)
	}
	if len(items) != 1 || items[0].ID != "rating-001" {
		t.Fatalf("unexpected ratings: %+v", items)
	}
}

func TestSquadRatingService_Create_Rejects(t *testing.T) {
	t.Parallel()

	service := newSquadRatingTestService()

	tests := []struct {
		name  string
		input CreateSquadRatingInput
		want  error
	}{
		{name: "anonymous", input: CreateSquadRatingInput{SquadID: "sq-1", SeasonName: "S4"}, want: ErrUnauthorized},
		{name: "regular player", input: CreateSquadRatingInput{ActorID: "user-Axidus", SquadID: "sq-1", SeasonName: "S4"}, want: ErrForbidden},
		{name: "missing season", input: CreateSquadRatingInput{ActorID: "user-media", SquadID: "sq-1"}, want: squadrating.ErrMissingFields},
		{
			name: "rating out of range",
			input: CreateSquadRatingInput{
				ActorID: "user-media", SquadID: "sq-1", SeasonName: "S4",
				PlayerRatings: []squadrating.PlayerRating{{PlayerID: "p-1", Rating: 11}},
			},
			want: squadrating.ErrRatingRange,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Create(t.Context(), tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
