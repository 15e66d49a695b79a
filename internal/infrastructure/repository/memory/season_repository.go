package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/infantry-community/internal/domain/season"
)

type SeasonRepository struct {
	mu      sync.RWMutex
	seasons []season.Season
	locks   map[string]season.RosterLock
}

func NewSeasonRepository(seasons ...season.Season) *SeasonRepository {
	return &SeasonRepository{
		seasons: append([]season.Season(nil), seasons...),
		locks:   make(map[string]season.RosterLock),
	}
}

func (r *SeasonRepository) SetLock(lock season.RosterLock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.locks[lock.SeasonID] = lock
}

func (r *SeasonRepository) ActiveSeason(_ context.Context, ctfpl bool) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  season.Season
		found bool
	)
	for _, s := range r.seasons {
		if s.Status != season.StatusActive {
			continue
		}
		if strings.EqualFold(s.League, season.LeagueCTFPL) != ctfpl {
			continue
		}
		if !found || s.Number > best.Number {
			best, found = s, true
		}
	}
	return best, found, nil
}

func (r *SeasonRepository) CurrentLock(_ context.Context, seasonID string) (season.RosterLock, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lock, ok := r.locks[seasonID]
	return lock, ok, nil
}
