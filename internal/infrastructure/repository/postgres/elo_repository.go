package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

// eloInsertChunk keeps multi-row inserts well below the 65535 parameter cap.
const eloInsertChunk = 500

type EloRepository struct {
	db *sqlx.DB
}

func NewEloRepository(db *sqlx.DB) *EloRepository {
	return &EloRepository{db: db}
}

func (r *EloRepository) Leaderboard(ctx context.Context, query elo.LeaderboardQuery) (elo.LeaderboardPage, error) {
	conds := []qb.Condition{
		qb.Eq("season", query.Season),
		qb.Expr("LOWER(game_mode) = LOWER(?)", query.GameMode),
		qb.Gte("total_games", query.MinGames),
	}
	if query.PlayerName != "" {
		conds = append(conds, qb.ILike("player_name", "%"+query.PlayerName+"%"))
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("player_elo_ratings").Where(conds...).ToSQL()
	if err != nil {
		return elo.LeaderboardPage{}, fmt.Errorf("build count elo leaderboard query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return elo.LeaderboardPage{}, fmt.Errorf("count elo leaderboard: %w", err)
	}

	sortExpr, ok := eloSortExpressions[query.SortBy]
	if !ok {
		sortExpr = eloSortExpressions[elo.DefaultSortBy]
	}
	direction := "DESC NULLS LAST"
	if query.Ascending {
		direction = "ASC NULLS LAST"
	}

	pageQuery, pageArgs, err := qb.Select(eloColumns).
		From("player_elo_ratings").
		Where(conds...).
		OrderBy(sortExpr+" "+direction, "player_key ASC").
		Limit(query.Limit).
		Offset(query.Offset).
		ToSQL()
	if err != nil {
		return elo.LeaderboardPage{}, fmt.Errorf("build elo leaderboard query: %w", err)
	}

	var rows []eloRatingModel
	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return elo.LeaderboardPage{}, fmt.Errorf("select elo leaderboard: %w", err)
	}

	page := elo.LeaderboardPage{Ratings: make([]elo.Rating, 0, len(rows)), Total: total}
	for _, row := range rows {
		page.Ratings = append(page.Ratings, row.toDomain())
	}
	return page, nil
}

func (r *EloRepository) GameModes(ctx context.Context, season string) ([]string, error) {
	query, args, err := qb.Select("DISTINCT game_mode").
		From("player_elo_ratings").
		Where(qb.Eq("season", season)).
		OrderBy("game_mode").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build elo game modes query: %w", err)
	}

	var modes []string
	if err := r.db.SelectContext(ctx, &modes, query, args...); err != nil {
		return nil, fmt.Errorf("select elo game modes: %w", err)
	}
	return modes, nil
}

func (r *EloRepository) GetRating(ctx context.Context, season, gameMode, playerName string) (elo.Rating, bool, error) {
	query, args, err := qb.Select(eloColumns).
		From("player_elo_ratings").
		Where(
			qb.Eq("season", season),
			qb.Expr("LOWER(game_mode) = LOWER(?)", gameMode),
			qb.Eq("player_key", elo.PlayerKey(playerName)),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return elo.Rating{}, false, fmt.Errorf("build get elo rating query: %w", err)
	}

	var row eloRatingModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return elo.Rating{}, false, nil
		}
		return elo.Rating{}, false, fmt.Errorf("get elo rating player=%s: %w", playerName, err)
	}
	return row.toDomain(), true, nil
}

func (r *EloRepository) ListSeason(ctx context.Context, season string) ([]elo.Rating, error) {
	query, args, err := qb.Select(eloColumns).
		From("player_elo_ratings").
		Where(qb.Eq("season", season)).
		OrderBy("game_mode", "player_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season ratings query: %w", err)
	}

	var rows []eloRatingModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select season ratings season=%s: %w", season, err)
	}

	out := make([]elo.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *EloRepository) CountSeason(ctx context.Context, season string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM player_elo_ratings WHERE season = $1`, season); err != nil {
		return 0, fmt.Errorf("count season ratings season=%s: %w", season, err)
	}
	return total, nil
}

func (r *EloRepository) ReplaceSeason(ctx context.Context, season string, ratings []elo.Rating) error {
	return withTx(ctx, r.db, "replace elo season", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM player_elo_ratings WHERE season = $1`, season); err != nil {
			return fmt.Errorf("clear season ratings season=%s: %w", season, err)
		}
		items := make([]elo.Rating, len(ratings))
		for i, item := range ratings {
			item.Season = season
			items[i] = item
		}
		return insertRatings(ctx, tx, items, "")
	})
}

const eloUpsertSuffix = `ON CONFLICT (season, game_mode, player_key)
DO UPDATE SET
    player_name = EXCLUDED.player_name,
    player_id = COALESCE(EXCLUDED.player_id, player_elo_ratings.player_id),
    elo_rating = EXCLUDED.elo_rating,
    elo_peak = GREATEST(EXCLUDED.elo_peak, player_elo_ratings.elo_peak),
    elo_confidence = EXCLUDED.elo_confidence,
    total_games = EXCLUDED.total_games,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    last_game_at = EXCLUDED.last_game_at,
    updated_at = NOW()`

func (r *EloRepository) UpsertRatings(ctx context.Context, ratings []elo.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "upsert elo ratings", func(tx *sqlx.Tx) error {
		return insertRatings(ctx, tx, ratings, eloUpsertSuffix)
	})
}

// TransitionSeason snapshots the finished season into the archive and seeds
// the next one. The from-season rows stay readable.
func (r *EloRepository) TransitionSeason(ctx context.Context, fromSeason string, next []elo.Rating) error {
	return withTx(ctx, r.db, "transition elo season", func(tx *sqlx.Tx) error {
		const archiveQuery = `
INSERT INTO player_elo_archive (season, game_mode, player_key, player_name, player_id, elo_rating, elo_peak,
    elo_confidence, total_games, wins, losses, last_game_at)
SELECT season, game_mode, player_key, player_name, player_id, elo_rating, elo_peak,
    elo_confidence, total_games, wins, losses, last_game_at
FROM player_elo_ratings
WHERE season = $1`
		if _, err := tx.ExecContext(ctx, archiveQuery, fromSeason); err != nil {
			return fmt.Errorf("archive season ratings season=%s: %w", fromSeason, err)
		}
		return insertRatings(ctx, tx, next, eloUpsertSuffix)
	})
}

func insertRatings(ctx context.Context, tx *sqlx.Tx, ratings []elo.Rating, suffix string) error {
	for start := 0; start < len(ratings); start += eloInsertChunk {
		end := min(start+eloInsertChunk, len(ratings))

		builder := qb.InsertInto("player_elo_ratings").Columns(eloInsertColumns...).Suffix(suffix)
		for _, item := range ratings[start:end] {
			builder.Values(eloRowValues(item)...)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert elo ratings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert elo ratings: %w", err)
		}
	}
	return nil
}
