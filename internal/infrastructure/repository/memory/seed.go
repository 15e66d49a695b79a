package memory

import (
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/season"
)

// Fixed ids for the in-memory dataset used when no database is configured.
const (
	SeedSeasonCTFPL = "00000000-0000-4000-8000-00000000c7f1"
	SeedAdminID     = "00000000-0000-4000-8000-0000000000ad"
)

func SeedSeasons() []season.Season {
	return []season.Season{
		{
			ID:         SeedSeasonCTFPL,
			League:     season.LeagueCTFPL,
			LeagueName: "CTF Player League",
			Number:     1,
			Status:     season.StatusActive,
		},
	}
}

func SeedProfiles() []profile.Profile {
	return []profile.Profile{
		{
			ID:                 SeedAdminID,
			Email:              "admin@localhost",
			InGameAlias:        "Admin",
			IsAdmin:            true,
			RegistrationStatus: "completed",
			CreatedAt:          time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}
