package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	basecache "github.com/riskibarqy/infantry-community/internal/platform/cache"
)

const (
	eloPrefix         = "elo:"
	playerStatsPrefix = "player-stats:"
	donationPrefix    = "donation:"
)

type EloRepository struct {
	next  elo.Repository
	cache *basecache.Store
}

func NewEloRepository(next elo.Repository, cache *basecache.Store) *EloRepository {
	return &EloRepository{next: next, cache: cache}
}

func (r *EloRepository) Leaderboard(ctx context.Context, query elo.LeaderboardQuery) (elo.LeaderboardPage, error) {
	key := eloLeaderboardKey(query)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		page, err := r.next.Leaderboard(ctx, query)
		if err != nil {
			return nil, err
		}
		return cloneLeaderboardPage(page), nil
	})
	if err != nil {
		return elo.LeaderboardPage{}, err
	}

	page, _ := v.(elo.LeaderboardPage)
	return cloneLeaderboardPage(page), nil
}

func (r *EloRepository) GameModes(ctx context.Context, season string) ([]string, error) {
	v, err := r.cache.GetOrLoad(ctx, eloPrefix+"modes:"+season, func(ctx context.Context) (any, error) {
		items, err := r.next.GameModes(ctx, season)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]string)
	return append([]string(nil), items...), nil
}

func (r *EloRepository) GetRating(ctx context.Context, season, gameMode, playerName string) (elo.Rating, bool, error) {
	return r.next.GetRating(ctx, season, gameMode, playerName)
}

func (r *EloRepository) ListSeason(ctx context.Context, season string) ([]elo.Rating, error) {
	return r.next.ListSeason(ctx, season)
}

func (r *EloRepository) CountSeason(ctx context.Context, season string) (int, error) {
	return r.next.CountSeason(ctx, season)
}

func (r *EloRepository) ReplaceSeason(ctx context.Context, season string, ratings []elo.Rating) error {
	if err := r.next.ReplaceSeason(ctx, season, ratings); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, eloPrefix)
	return nil
}

func (r *EloRepository) UpsertRatings(ctx context.Context, ratings []elo.Rating) error {
	if err := r.next.UpsertRatings(ctx, ratings); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, eloPrefix)
	return nil
}

func (r *EloRepository) TransitionSeason(ctx context.Context, fromSeason string, next []elo.Rating) error {
	if err := r.next.TransitionSeason(ctx, fromSeason, next); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, eloPrefix)
	return nil
}

func eloLeaderboardKey(q elo.LeaderboardQuery) string {
	return fmt.Sprintf("%sboard:%s:%s:%s:%t:%d:%d:%d:%s",
		eloPrefix,
		q.Season,
		strings.ToLower(q.GameMode),
		q.SortBy,
		q.Ascending,
		q.Limit,
		q.Offset,
		q.MinGames,
		strings.ToLower(q.PlayerName),
	)
}

func cloneLeaderboardPage(page elo.LeaderboardPage) elo.LeaderboardPage {
	return elo.LeaderboardPage{
		Ratings: append([]elo.Rating(nil), page.Ratings...),
		Total:   page.Total,
	}
}

type PlayerStatsRepository struct {
	next  playerstats.Repository
	cache *basecache.Store
}

func NewPlayerStatsRepository(next playerstats.Repository, cache *basecache.Store) *PlayerStatsRepository {
	return &PlayerStatsRepository{next: next, cache: cache}
}

func (r *PlayerStatsRepository) InsertGame(ctx context.Context, rows []playerstats.GameStat) error {
	if err := r.next.InsertGame(ctx, rows); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerStatsPrefix)
	return nil
}

func (r *PlayerStatsRepository) GameExists(ctx context.Context, gameID string) (bool, error) {
	return r.next.GameExists(ctx, gameID)
}

func (r *PlayerStatsRepository) ListByGame(ctx context.Context, gameID string) ([]playerstats.GameStat, error) {
	return r.next.ListByGame(ctx, gameID)
}

func (r *PlayerStatsRepository) ListRecentGames(ctx context.Context, limit int) ([]playerstats.GameSummary, error) {
	key := playerStatsPrefix + "recent:" + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListRecentGames(ctx, limit)
		if err != nil {
			return nil, err
		}
		return cloneGameSummaries(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]playerstats.GameSummary)
	return cloneGameSummaries(items), nil
}

func (r *PlayerStatsRepository) ListBetween(ctx context.Context, from, to time.Time) ([]playerstats.GameStat, error) {
	return r.next.ListBetween(ctx, from, to)
}

func (r *PlayerStatsRepository) ListByMode(ctx context.Context, gameMode string) ([]playerstats.GameStat, error) {
	return r.next.ListByMode(ctx, gameMode)
}

func (r *PlayerStatsRepository) GetAggregate(ctx context.Context, playerName string) (playerstats.Aggregate, bool, error) {
	key := playerStatsPrefix + "aggregate:" + strings.ToLower(strings.TrimSpace(playerName))
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetAggregate(ctx, playerName)
		if err != nil {
			return nil, err
		}
		return cachedAggregate{value: item, exists: exists}, nil
	})
	if err != nil {
		return playerstats.Aggregate{}, false, err
	}

	cached, _ := v.(cachedAggregate)
	return cached.value, cached.exists, nil
}

func (r *PlayerStatsRepository) Leaderboard(ctx context.Context, query playerstats.LeaderboardQuery) ([]playerstats.Aggregate, int, error) {
	key := fmt.Sprintf("%sboard:%s:%t:%d:%d:%s:%d",
		playerStatsPrefix, query.SortBy, query.Ascending, query.Limit, query.Offset, strings.ToLower(query.GameMode), query.MinGames)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, total, err := r.next.Leaderboard(ctx, query)
		if err != nil {
			return nil, err
		}
		return cachedAggregatePage{items: append([]playerstats.Aggregate(nil), items...), total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	cached, _ := v.(cachedAggregatePage)
	return append([]playerstats.Aggregate(nil), cached.items...), cached.total, nil
}

func (r *PlayerStatsRepository) UpdateSides(ctx context.Context, fixes []playerstats.SideFix) error {
	if err := r.next.UpdateSides(ctx, fixes); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerStatsPrefix)
	return nil
}

type cachedAggregate struct {
	value  playerstats.Aggregate
	exists bool
}

type cachedAggregatePage struct {
	items []playerstats.Aggregate
	total int
}

func cloneGameSummaries(items []playerstats.GameSummary) []playerstats.GameSummary {
	out := make([]playerstats.GameSummary, 0, len(items))
	for _, item := range items {
		item.Players = append([]playerstats.GameStat(nil), item.Players...)
		out = append(out, item)
	}
	return out
}

// DonationRepository caches the public supporter views. Every successful
// write drops them.
type DonationRepository struct {
	next  donation.Repository
	cache *basecache.Store
}

func NewDonationRepository(next donation.Repository, cache *basecache.Store) *DonationRepository {
	return &DonationRepository{next: next, cache: cache}
}

func (r *DonationRepository) InsertIfAbsent(ctx context.Context, t donation.Transaction) (bool, error) {
	created, err := r.next.InsertIfAbsent(ctx, t)
	if err != nil {
		return false, err
	}
	if created {
		r.cache.DeletePrefix(ctx, donationPrefix)
	}
	return created, nil
}

func (r *DonationRepository) CompletePending(ctx context.Context, provider donation.Provider, providerTxID, paymentIntentID string, at time.Time) (bool, error) {
	found, err := r.next.CompletePending(ctx, provider, providerTxID, paymentIntentID, at)
	if err != nil {
		return false, err
	}
	if found {
		r.cache.DeletePrefix(ctx, donationPrefix)
	}
	return found, nil
}

func (r *DonationRepository) RecordPurchase(ctx context.Context, p donation.ProductPurchase) (bool, error) {
	return r.next.RecordPurchase(ctx, p)
}

func (r *DonationRepository) ListRecentCompleted(ctx context.Context, limit int) ([]donation.Transaction, error) {
	v, err := r.cache.GetOrLoad(ctx, donationPrefix+"recent:"+strconv.Itoa(limit), func(ctx context.Context) (any, error) {
		items, err := r.next.ListRecentCompleted(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]donation.Transaction(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]donation.Transaction)
	return append([]donation.Transaction(nil), items...), nil
}

func (r *DonationRepository) ListSupporters(ctx context.Context) ([]donation.Supporter, error) {
	v, err := r.cache.GetOrLoad(ctx, donationPrefix+"supporters", func(ctx context.Context) (any, error) {
		items, err := r.next.ListSupporters(ctx)
		if err != nil {
			return nil, err
		}
		return append([]donation.Supporter(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]donation.Supporter)
	return append([]donation.Supporter(nil), items...), nil
}
