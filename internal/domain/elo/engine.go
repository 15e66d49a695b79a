package elo

import (
	"math"
	"sort"
)

// KFactor shrinks from KMax to KMin as confidence grows.
func KFactor(confidence float64) float64 {
	c := clamp01(confidence)
	return KMax - (KMax-KMin)*c
}

func ExpectedScore(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

// Update applies one game to r against an opponent strength.
func Update(r Rating, opponent float64, outcome Outcome) Rating {
	expected := ExpectedScore(r.Rating, opponent)
	r.Rating = math.Max(FloorRating, r.Rating+KFactor(r.Confidence)*(outcome.Score()-expected))
	if r.Rating > r.Peak {
		r.Peak = r.Rating
	}
	r.GamesPlayed++
	switch outcome {
	case OutcomeWin:
		r.Wins++
	case OutcomeLoss:
		r.Losses++
	}
	r.Confidence = math.Min(1, r.Confidence+1/ConfidenceGames)
	return r
}

// Ledger accumulates ratings for one game mode and season.
type Ledger struct {
	mode    string
	season  string
	ratings map[string]Rating
}

func NewLedger(mode, season string) *Ledger {
	return &Ledger{mode: mode, season: season, ratings: make(map[string]Rating)}
}

// Seed preloads existing ratings, e.g. carried over by a season transition.
func (l *Ledger) Seed(ratings []Rating) {
	for _, r := range ratings {
		r.GameMode = l.mode
		r.Season = l.season
		l.ratings[PlayerKey(r.PlayerName)] = r
	}
}

func (l *Ledger) Get(playerName string) (Rating, bool) {
	r, ok := l.ratings[PlayerKey(playerName)]
	return r, ok
}

func (l *Ledger) current(p Participant) Rating {
	if r, ok := l.ratings[PlayerKey(p.PlayerName)]; ok {
		return r
	}
	r := NewRating(p.PlayerName, l.mode, l.season)
	r.PlayerID = p.PlayerID
	return r
}

// Apply rates every participant against the average pre-game rating of the
// players on other teams. Players without opponents are left untouched.
func (l *Ledger) Apply(game GameResult) {
	before := make(map[string]Rating, len(game.Participants))
	for _, p := range game.Participants {
		before[PlayerKey(p.PlayerName)] = l.current(p)
	}

	for _, p := range game.Participants {
		var sum float64
		var n int
		for _, o := range game.Participants {
			if o.Team == p.Team || PlayerKey(o.PlayerName) == PlayerKey(p.PlayerName) {
				continue
			}
			sum += before[PlayerKey(o.PlayerName)].Rating
			n++
		}
		if n == 0 {
			continue
		}

		r := Update(before[PlayerKey(p.PlayerName)], sum/float64(n), p.Outcome)
		if p.PlayerID != "" {
			r.PlayerID = p.PlayerID
		}
		if game.PlayedAt.After(r.LastGameAt) {
			r.LastGameAt = game.PlayedAt
		}
		l.ratings[PlayerKey(p.PlayerName)] = r
	}
}

// Ratings returns the ledger sorted by rating, highest first.
func (l *Ledger) Ratings() []Rating {
	out := make([]Rating, 0, len(l.ratings))
	for _, r := range l.ratings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating == out[j].Rating {
			return out[i].PlayerName < out[j].PlayerName
		}
		return out[i].Rating > out[j].Rating
	})
	return out
}

// Replay rates games in chronological order.
func Replay(mode, season string, games []GameResult) []Rating {
	sorted := append([]GameResult(nil), games...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlayedAt.Before(sorted[j].PlayedAt)
	})

	ledger := NewLedger(mode, season)
	for _, g := range sorted {
		ledger.Apply(g)
	}
	return ledger.Ratings()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
