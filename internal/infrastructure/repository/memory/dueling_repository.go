package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
)

type DuelingRepository struct {
	mu    sync.RWMutex
	items []dueling.Match
}

func NewDuelingRepository() *DuelingRepository {
	return &DuelingRepository{}
}

func (r *DuelingRepository) Create(_ context.Context, match dueling.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, cloneMatch(match))
	return nil
}

func (r *DuelingRepository) GetByID(_ context.Context, matchID string) (dueling.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.items {
		if m.ID == matchID {
			return cloneMatch(m), true, nil
		}
	}
	return dueling.Match{}, false, nil
}

func (r *DuelingRepository) List(_ context.Context, query dueling.ListQuery) ([]dueling.Match, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dueling.Match, 0)
	for _, m := range r.items {
		if query.MatchType != "" && string(m.MatchType) != query.MatchType {
			continue
		}
		if query.Status != "" && string(m.Status) != query.Status {
			continue
		}
		if query.PlayerName != "" &&
			!strings.EqualFold(m.Player1Name, query.PlayerName) &&
			!strings.EqualFold(m.Player2Name, query.PlayerName) {
			continue
		}
		out = append(out, cloneMatch(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})

	total := len(out)
	if query.Offset >= total {
		return []dueling.Match{}, total, nil
	}
	end := total
	if query.Limit > 0 && query.Offset+query.Limit < end {
		end = query.Offset + query.Limit
	}
	return out[query.Offset:end], total, nil
}

func (r *DuelingRepository) ListRankedBetween(_ context.Context, from, to time.Time) ([]dueling.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dueling.Match, 0)
	for _, m := range r.items {
		if !m.MatchType.Ranked() || m.Status != dueling.StatusCompleted || m.CompletedAt == nil {
			continue
		}
		if m.CompletedAt.Before(from) || !m.CompletedAt.Before(to) {
			continue
		}
		out = append(out, cloneMatch(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(*out[j].CompletedAt)
	})
	return out, nil
}

func cloneMatch(m dueling.Match) dueling.Match {
	copied := m
	copied.Rounds = make([]dueling.Round, len(m.Rounds))
	for i, round := range m.Rounds {
		round.Kills = append([]dueling.Kill(nil), round.Kills...)
		copied.Rounds[i] = round
	}
	return copied
}
