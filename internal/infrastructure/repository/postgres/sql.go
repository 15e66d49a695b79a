package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports a 23505 error, optionally limited to one
// constraint or index name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func withTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s tx: %w", name, err)
	}
	return nil
}

const playerLockQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

func playerLockKey(playerID string) string {
	return "squad-member:" + playerID
}

// lockPlayer serializes membership changes of one player until the
// transaction ends.
func lockPlayer(ctx context.Context, tx sqlx.ExecerContext, playerID string) error {
	if _, err := tx.ExecContext(ctx, playerLockQuery, playerLockKey(playerID)); err != nil {
		return fmt.Errorf("lock player=%s: %w", playerID, err)
	}
	return nil
}

// lockPlayers takes the advisory locks of several players in sorted order so
// two transactions over the same roster cannot deadlock.
func lockPlayers(ctx context.Context, tx sqlx.ExecerContext, playerIDs ...string) error {
	ids := slices.Clone(playerIDs)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		if err := lockPlayer(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nullStringValue(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
