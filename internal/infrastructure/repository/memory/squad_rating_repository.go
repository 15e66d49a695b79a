package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
)

type SquadRatingRepository struct {
	mu    sync.RWMutex
	items []squadrating.Rating
}

func NewSquadRatingRepository() *SquadRatingRepository {
	return &SquadRatingRepository{}
}

func (r *SquadRatingRepository) List(_ context.Context, squadID string) ([]squadrating.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squadrating.Rating, 0)
	for _, item := range r.items {
		if squadID != "" && item.SquadID != squadID {
			continue
		}
		item.PlayerRatings = append([]squadrating.PlayerRating(nil), item.PlayerRatings...)
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AnalysisDate.After(out[j].AnalysisDate)
	})
	return out, nil
}

func (r *SquadRatingRepository) Create(_ context.Context, rating squadrating.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rating.PlayerRatings = append([]squadrating.PlayerRating(nil), rating.PlayerRatings...)
	r.items = append(r.items, rating)
	return nil
}
