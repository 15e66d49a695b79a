package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu     sync.RWMutex
	rows   []playerstats.GameStat
	nextID int64
}

func NewPlayerStatsRepository(rows ...playerstats.GameStat) *PlayerStatsRepository {
	r := &PlayerStatsRepository{}
	_ = r.InsertGame(context.Background(), rows)
	return r
}

func (r *PlayerStatsRepository) InsertGame(_ context.Context, rows []playerstats.GameStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		r.nextID++
		row.ID = r.nextID
		r.rows = append(r.rows, row)
	}
	return nil
}

func (r *PlayerStatsRepository) GameExists(_ context.Context, gameID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if row.GameID == gameID {
			return true, nil
		}
	}
	return false, nil
}

func (r *PlayerStatsRepository) filter(keep func(playerstats.GameStat) bool) []playerstats.GameStat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.GameStat, 0)
	for _, row := range r.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (r *PlayerStatsRepository) ListByGame(_ context.Context, gameID string) ([]playerstats.GameStat, error) {
	return r.filter(func(row playerstats.GameStat) bool { return row.GameID == gameID }), nil
}

func (r *PlayerStatsRepository) ListRecentGames(_ context.Context, limit int) ([]playerstats.GameSummary, error) {
	rows := r.filter(func(playerstats.GameStat) bool { return true })

	byGame := make(map[string]*playerstats.GameSummary)
	order := make([]string, 0)
	for _, row := range rows {
		g, ok := byGame[row.GameID]
		if !ok {
			g = &playerstats.GameSummary{
				GameID:    row.GameID,
				GameDate:  row.GameDate,
				GameMode:  row.GameMode,
				ArenaName: row.ArenaName,
			}
			byGame[row.GameID] = g
			order = append(order, row.GameID)
		}
		g.Players = append(g.Players, row)
	}

	out := make([]playerstats.GameSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byGame[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GameDate.After(out[j].GameDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PlayerStatsRepository) ListBetween(_ context.Context, from, to time.Time) ([]playerstats.GameStat, error) {
	rows := r.filter(func(row playerstats.GameStat) bool {
		return !row.GameDate.Before(from) && row.GameDate.Before(to)
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].GameDate.Before(rows[j].GameDate)
	})
	return rows, nil
}

func (r *PlayerStatsRepository) ListByMode(_ context.Context, gameMode string) ([]playerstats.GameStat, error) {
	return r.filter(func(row playerstats.GameStat) bool { return row.GameMode == gameMode }), nil
}

func (r *PlayerStatsRepository) GetAggregate(_ context.Context, playerName string) (playerstats.Aggregate, bool, error) {
	rows := r.filter(func(row playerstats.GameStat) bool {
		return strings.EqualFold(row.PlayerName, strings.TrimSpace(playerName))
	})
	if len(rows) == 0 {
		return playerstats.Aggregate{}, false, nil
	}
	for _, a := range playerstats.Summarize(rows) {
		return a, true, nil
	}
	return playerstats.Aggregate{}, false, nil
}

func (r *PlayerStatsRepository) Leaderboard(_ context.Context, query playerstats.LeaderboardQuery) ([]playerstats.Aggregate, int, error) {
	rows := r.filter(func(row playerstats.GameStat) bool {
		return query.GameMode == "" || strings.EqualFold(row.GameMode, query.GameMode)
	})

	items := make([]playerstats.Aggregate, 0)
	for _, a := range playerstats.Summarize(rows) {
		if a.TotalGames >= query.MinGames {
			items = append(items, a)
		}
	}
	playerstats.SortAggregates(items, query.SortBy, query.Ascending)

	total := len(items)
	if query.Offset >= total {
		return []playerstats.Aggregate{}, total, nil
	}
	end := total
	if query.Limit > 0 && query.Offset+query.Limit < end {
		end = query.Offset + query.Limit
	}
	return items[query.Offset:end], total, nil
}

func (r *PlayerStatsRepository) UpdateSides(_ context.Context, fixes []playerstats.SideFix) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, fix := range fixes {
		for i, row := range r.rows {
			if row.GameID == fix.GameID && row.Team == fix.Team && row.PlayerName == fix.PlayerName {
				r.rows[i].Side = fix.To
			}
		}
	}
	return nil
}
