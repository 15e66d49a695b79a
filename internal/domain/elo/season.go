package elo

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// CarryOverFactor keeps 15% of the distance from the base rating.
	CarryOverFactor = 0.15
	// ConfidenceCarryOver scales confidence into the next season.
	ConfidenceCarryOver = 0.5
)

var ErrInvalidSeason = errors.New("season must look like Q1-2025")

var seasonPattern = regexp.MustCompile(`^Q([1-4])-(\d{4})$`)

type Season struct {
	Quarter int
	Year    int
}

func ParseSeason(raw string) (Season, error) {
	m := seasonPattern.FindStringSubmatch(raw)
	if m == nil {
		return Season{}, fmt.Errorf("%w: %q", ErrInvalidSeason, raw)
	}
	q, _ := strconv.Atoi(m[1])
	y, _ := strconv.Atoi(m[2])
	return Season{Quarter: q, Year: y}, nil
}

func SeasonAt(t time.Time) Season {
	t = t.UTC()
	return Season{Quarter: (int(t.Month())-1)/3 + 1, Year: t.Year()}
}

func CurrentSeason(now time.Time) string {
	return SeasonAt(now).String()
}

func (s Season) String() string {
	return fmt.Sprintf("Q%d-%d", s.Quarter, s.Year)
}

func (s Season) Next() Season {
	if s.Quarter == 4 {
		return Season{Quarter: 1, Year: s.Year + 1}
	}
	return Season{Quarter: s.Quarter + 1, Year: s.Year}
}

func (s Season) Previous() Season {
	if s.Quarter == 1 {
		return Season{Quarter: 4, Year: s.Year - 1}
	}
	return Season{Quarter: s.Quarter - 1, Year: s.Year}
}

// Bounds returns [start, end) in UTC.
func (s Season) Bounds() (time.Time, time.Time) {
	start := time.Date(s.Year, time.Month((s.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

func CarryOver(old float64) float64 {
	return BaseRating + CarryOverFactor*(old-BaseRating)
}

// Transition produces the starting ratings of the next season.
func Transition(ratings []Rating, toSeason string) []Rating {
	out := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		next := Rating{
			PlayerName: r.PlayerName,
			PlayerID:   r.PlayerID,
			GameMode:   r.GameMode,
			Season:     toSeason,
			Rating:     CarryOver(r.Rating),
			Confidence: clamp01(r.Confidence * ConfidenceCarryOver),
		}
		next.Peak = next.Rating
		out = append(out, next)
	}
	return out
}
