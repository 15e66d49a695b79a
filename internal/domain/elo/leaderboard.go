package elo

import (
	"sort"
	"strings"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
	DefaultMinGames         = 3
	DefaultSortBy           = "weighted_elo"
)

var sortColumns = map[string]struct{}{
	"weighted_elo":   {},
	"elo_rating":     {},
	"elo_confidence": {},
	"elo_peak":       {},
	"total_games":    {},
	"win_rate":       {},
	"last_game_date": {},
}

type LeaderboardQuery struct {
	Season     string
	GameMode   string
	SortBy     string
	Ascending  bool
	Limit      int
	Offset     int
	MinGames   int
	PlayerName string
}

// Normalize applies defaults and drops unknown sort columns.
func (q LeaderboardQuery) Normalize() LeaderboardQuery {
	q.GameMode = strings.TrimSpace(q.GameMode)
	if q.GameMode == "" {
		q.GameMode = ModeCombined
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = DefaultSortBy
		q.Ascending = false
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLeaderboardLimit
	}
	if q.Limit > MaxLeaderboardLimit {
		q.Limit = MaxLeaderboardLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.MinGames < 0 {
		q.MinGames = 0
	}
	q.PlayerName = strings.TrimSpace(q.PlayerName)
	return q
}

func IsSortColumn(col string) bool {
	_, ok := sortColumns[col]
	return ok
}

type LeaderboardPage struct {
	Ratings []Rating
	Total   int
}

func sortValue(r Rating, col string) float64 {
	switch col {
	case "elo_rating":
		return r.Rating
	case "elo_confidence":
		return r.Confidence
	case "elo_peak":
		return r.Peak
	case "total_games":
		return float64(r.GamesPlayed)
	case "win_rate":
		return r.WinRate()
	case "last_game_date":
		return float64(r.LastGameAt.Unix())
	default:
		return r.Weighted()
	}
}

// SortRatings orders ratings by a leaderboard column, breaking ties by name.
func SortRatings(items []Rating, sortBy string, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := sortValue(items[i], sortBy), sortValue(items[j], sortBy)
		if a == b {
			return PlayerKey(items[i].PlayerName) < PlayerKey(items[j].PlayerName)
		}
		if ascending {
			return a < b
		}
		return a > b
	})
}
