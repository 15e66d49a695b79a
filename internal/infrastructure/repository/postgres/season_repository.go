package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/season"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

type seasonTableModel struct {
	ID         string `db:"id"`
	League     string `db:"league"`
	LeagueName string `db:"league_name"`
	Number     int    `db:"season_number"`
	Name       string `db:"season_name"`
	Status     string `db:"status"`
}

func (r *SeasonRepository) ActiveSeason(ctx context.Context, ctfpl bool) (season.Season, bool, error) {
	const query = `
SELECT id, league, league_name, season_number, season_name, status
FROM seasons
WHERE status = 'active'
  AND (LOWER(league) = $1) = $2
ORDER BY season_number DESC, created_at DESC
LIMIT 1`

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, season.LeagueCTFPL, ctfpl); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get active season ctfpl=%t: %w", ctfpl, err)
	}

	return season.Season{
		ID:         row.ID,
		League:     row.League,
		LeagueName: row.LeagueName,
		Number:     row.Number,
		Name:       row.Name,
		Status:     season.Status(row.Status),
	}, true, nil
}

func (r *SeasonRepository) CurrentLock(ctx context.Context, seasonID string) (season.RosterLock, bool, error) {
	const query = `
SELECT season_id, is_locked, reason
FROM roster_locks
WHERE season_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1`

	var row struct {
		SeasonID string `db:"season_id"`
		IsLocked bool   `db:"is_locked"`
		Reason   string `db:"reason"`
	}
	if err := r.db.GetContext(ctx, &row, query, seasonID); err != nil {
		if isNotFound(err) {
			return season.RosterLock{}, false, nil
		}
		return season.RosterLock{}, false, fmt.Errorf("get roster lock season=%s: %w", seasonID, err)
	}
	return season.RosterLock{SeasonID: row.SeasonID, IsLocked: row.IsLocked, Reason: row.Reason}, true, nil
}
