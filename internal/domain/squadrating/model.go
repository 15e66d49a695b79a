package squadrating

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinPlayerRating = 0.0
	MaxPlayerRating = 10.0
)

var (
	ErrMissingFields = errors.New("squad_id and season_name are required")
	ErrRatingRange   = errors.New("player rating must be between 0 and 10")
)

type Rating struct {
	ID               string
	SquadID          string
	SquadName        string
	SeasonName       string
	AnalysisDate     time.Time
	AnalystID        string
	AnalystAlias     string
	Commentary       string
	AnalystQuote     string
	BreakdownSummary string
	PlayerRatings    []PlayerRating
	CreatedAt        time.Time
}

type PlayerRating struct {
	PlayerID    string
	PlayerAlias string
	Rating      float64
	Notes       string
}

// AverageRating is the mean of the player ratings, zero when there are none.
func (r Rating) AverageRating() float64 {
	if len(r.PlayerRatings) == 0 {
		return 0
	}
	var sum float64
	for _, p := range r.PlayerRatings {
		sum += p.Rating
	}
	return sum / float64(len(r.PlayerRatings))
}

func (r Rating) Validate() error {
	if strings.TrimSpace(r.SquadID) == "" || strings.TrimSpace(r.SeasonName) == "" {
		return ErrMissingFields
	}
	for _, p := range r.PlayerRatings {
		if strings.TrimSpace(p.PlayerID) == "" {
			return fmt.Errorf("%w: player id missing", ErrMissingFields)
		}
		if p.Rating < MinPlayerRating || p.Rating > MaxPlayerRating {
			return fmt.Errorf("%w: %.1f", ErrRatingRange, p.Rating)
		}
	}
	return nil
}
