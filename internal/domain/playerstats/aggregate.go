package playerstats

import (
	"sort"
	"strings"
)

// Summarize folds game rows into per-player totals keyed by lowercased name.
func Summarize(rows []GameStat) map[string]Aggregate {
	out := make(map[string]Aggregate)
	accuracySum := make(map[string]float64)
	for _, r := range rows {
		key := strings.ToLower(r.PlayerName)
		a := out[key]
		if a.PlayerName == "" {
			a.PlayerName = r.PlayerName
		}
		a.TotalGames++
		if r.Result == ResultWin {
			a.Wins++
		} else {
			a.Losses++
		}
		a.Kills += r.Kills
		a.Deaths += r.Deaths
		a.Captures += r.Captures
		a.CarrierKills += r.CarrierKills
		a.CarryTimeSeconds += r.CarryTimeSeconds
		accuracySum[key] += r.Accuracy
		a.AvgAccuracy = accuracySum[key] / float64(a.TotalGames)
		if r.GameDate.After(a.LastGameAt) {
			a.LastGameAt = r.GameDate
		}
		out[key] = a
	}
	return out
}

func aggregateValue(a Aggregate, col string) float64 {
	switch col {
	case "total_games":
		return float64(a.TotalGames)
	case "wins":
		return float64(a.Wins)
	case "win_rate":
		return a.WinRate()
	case "deaths":
		return float64(a.Deaths)
	case "kill_death":
		return a.KillDeathRatio()
	case "captures":
		return float64(a.Captures)
	case "carrier_kills":
		return float64(a.CarrierKills)
	case "avg_accuracy":
		return a.AvgAccuracy
	case "last_game_date":
		return float64(a.LastGameAt.Unix())
	default:
		return float64(a.Kills)
	}
}

// SortAggregates orders totals by a leaderboard column, breaking ties by name.
func SortAggregates(items []Aggregate, sortBy string, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := aggregateValue(items[i], sortBy), aggregateValue(items[j], sortBy)
		if a == b {
			return strings.ToLower(items[i].PlayerName) < strings.ToLower(items[j].PlayerName)
		}
		if ascending {
			return a < b
		}
		return a > b
	})
}
