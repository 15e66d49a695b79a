package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
)

// BootstrapSeed inserts the default seasons into an empty database so a fresh
// deployment has an active CTFPL season to lock rosters against.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM seasons`); err != nil {
		return fmt.Errorf("count seasons for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, s := range memory.SeedSeasons() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO seasons (id, league, league_name, season_number, season_name, status)
VALUES (:id, :league, :league_name, :season_number, :season_name, :status)
ON CONFLICT (id) DO NOTHING`, seasonTableModel{
			ID:         s.ID,
			League:     s.League,
			LeagueName: s.LeagueName,
			Number:     s.Number,
			Name:       s.Name,
			Status:     string(s.Status),
		})
		if err != nil {
			return fmt.Errorf("bind seed season %s query: %w", s.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed season %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
