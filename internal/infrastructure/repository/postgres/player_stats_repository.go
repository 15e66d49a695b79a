package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) InsertGame(ctx context.Context, rows []playerstats.GameStat) error {
	if len(rows) == 0 {
		return nil
	}
	models := make([]playerStatInsertModel, 0, len(rows))
	for _, row := range rows {
		models = append(models, newPlayerStatInsertModel(row))
	}
	query, args, err := qb.InsertModels("player_stats", models, "")
	if err != nil {
		return fmt.Errorf("build insert player stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "uq_player_stats_game_player") {
			return fmt.Errorf("a player appears twice in game %s: %w", rows[0].GameID, err)
		}
		return fmt.Errorf("insert player stats game=%s: %w", rows[0].GameID, err)
	}
	return nil
}

func (r *PlayerStatsRepository) GameExists(ctx context.Context, gameID string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM player_stats WHERE game_id = $1)`, gameID); err != nil {
		return false, fmt.Errorf("check game exists game=%s: %w", gameID, err)
	}
	return exists, nil
}

func (r *PlayerStatsRepository) selectRows(ctx context.Context, label string, order string, conds ...qb.Condition) ([]playerstats.GameStat, error) {
	query, args, err := qb.Select(playerStatColumns).
		From("player_stats").
		Where(conds...).
		OrderBy(order, "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", label, err)
	}

	var rows []playerStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}

	out := make([]playerstats.GameStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerStatsRepository) ListByGame(ctx context.Context, gameID string) ([]playerstats.GameStat, error) {
	return r.selectRows(ctx, "game stats", "team", qb.Eq("game_id", gameID))
}

func (r *PlayerStatsRepository) ListRecentGames(ctx context.Context, limit int) ([]playerstats.GameSummary, error) {
	const gamesQuery = `
SELECT game_id, MAX(game_date) AS game_date
FROM player_stats
GROUP BY game_id
ORDER BY MAX(game_date) DESC
LIMIT $1`

	var games []struct {
		GameID   string    `db:"game_id"`
		GameDate time.Time `db:"game_date"`
	}
	if err := r.db.SelectContext(ctx, &games, gamesQuery, limit); err != nil {
		return nil, fmt.Errorf("select recent games: %w", err)
	}
	if len(games) == 0 {
		return []playerstats.GameSummary{}, nil
	}

	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.GameID)
	}
	rows, err := r.selectRows(ctx, "recent game stats", "game_date DESC", qb.In("game_id", stringSliceToAny(ids)))
	if err != nil {
		return nil, err
	}

	byGame := make(map[string]*playerstats.GameSummary, len(games))
	out := make([]playerstats.GameSummary, len(games))
	for i, g := range games {
		out[i] = playerstats.GameSummary{GameID: g.GameID, GameDate: g.GameDate.UTC()}
		byGame[g.GameID] = &out[i]
	}
	for _, row := range rows {
		g := byGame[row.GameID]
		if g == nil {
			continue
		}
		if g.GameMode == "" {
			g.GameMode = row.GameMode
			g.ArenaName = row.ArenaName
		}
		g.Players = append(g.Players, row)
	}
	return out, nil
}

func (r *PlayerStatsRepository) ListBetween(ctx context.Context, from, to time.Time) ([]playerstats.GameStat, error) {
	return r.selectRows(ctx, "game stats between", "game_date",
		qb.Gte("game_date", from.UTC()),
		qb.Expr("game_date < ?", to.UTC()),
	)
}

func (r *PlayerStatsRepository) ListByMode(ctx context.Context, gameMode string) ([]playerstats.GameStat, error) {
	return r.selectRows(ctx, "game stats by mode", "game_date", qb.Eq("game_mode", gameMode))
}

const aggregateColumns = `MIN(player_name) AS player_name,
    COUNT(*) AS total_games,
    COUNT(*) FILTER (WHERE result = 'Win') AS wins,
    COUNT(*) FILTER (WHERE result <> 'Win') AS losses,
    COALESCE(SUM(kills), 0) AS kills,
    COALESCE(SUM(deaths), 0) AS deaths,
    COALESCE(SUM(captures), 0) AS captures,
    COALESCE(SUM(carrier_kills), 0) AS carrier_kills,
    COALESCE(SUM(carry_time_seconds), 0) AS carry_time_seconds,
    COALESCE(AVG(accuracy), 0) AS avg_accuracy,
    MAX(game_date) AS last_game_date`

func (r *PlayerStatsRepository) GetAggregate(ctx context.Context, playerName string) (playerstats.Aggregate, bool, error) {
	key := strings.ToLower(strings.TrimSpace(playerName))
	query, args, err := qb.Select(aggregateColumns).
		From("player_stats").
		Where(qb.Expr("LOWER(player_name) = ?", key)).
		GroupBy("LOWER(player_name)").
		ToSQL()
	if err != nil {
		return playerstats.Aggregate{}, false, fmt.Errorf("build player aggregate query: %w", err)
	}

	var row playerAggregateModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstats.Aggregate{}, false, nil
		}
		return playerstats.Aggregate{}, false, fmt.Errorf("get player aggregate player=%s: %w", key, err)
	}
	return row.toDomain(), true, nil
}

var aggregateSortExpressions = map[string]string{
	"total_games":    "total_games",
	"wins":           "wins",
	"win_rate":       "(CASE WHEN COUNT(*) = 0 THEN 0 ELSE COUNT(*) FILTER (WHERE result = 'Win')::float8 / COUNT(*) END)",
	"kills":          "kills",
	"deaths":         "deaths",
	"kill_death":     "(CASE WHEN SUM(deaths) = 0 THEN SUM(kills)::float8 ELSE SUM(kills)::float8 / SUM(deaths) END)",
	"captures":       "captures",
	"carrier_kills":  "carrier_kills",
	"avg_accuracy":   "avg_accuracy",
	"last_game_date": "last_game_date",
}

func (r *PlayerStatsRepository) Leaderboard(ctx context.Context, query playerstats.LeaderboardQuery) ([]playerstats.Aggregate, int, error) {
	conds := make([]qb.Condition, 0, 1)
	if query.GameMode != "" {
		conds = append(conds, qb.Expr("LOWER(game_mode) = LOWER(?)", query.GameMode))
	}

	inner, innerArgs, err := qb.Select("LOWER(player_name) AS player_key").
		From("player_stats").
		Where(conds...).
		GroupBy("LOWER(player_name)").
		Having(qb.Gte("COUNT(*)", query.MinGames)).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build leaderboard count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM ("+inner+") players", innerArgs...); err != nil {
		return nil, 0, fmt.Errorf("count player leaderboard: %w", err)
	}

	sortExpr, ok := aggregateSortExpressions[query.SortBy]
	if !ok {
		sortExpr = "kills"
	}
	direction := "DESC NULLS LAST"
	if query.Ascending {
		direction = "ASC NULLS LAST"
	}

	pageQuery, pageArgs, err := qb.Select(aggregateColumns).
		From("player_stats").
		Where(conds...).
		GroupBy("LOWER(player_name)").
		Having(qb.Gte("COUNT(*)", query.MinGames)).
		OrderBy(sortExpr+" "+direction, "LOWER(player_name)").
		Limit(query.Limit).
		Offset(query.Offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build player leaderboard query: %w", err)
	}

	var rows []playerAggregateModel
	if err := r.db.SelectContext(ctx, &rows, pageQuery, pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("select player leaderboard: %w", err)
	}

	out := make([]playerstats.Aggregate, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (r *PlayerStatsRepository) UpdateSides(ctx context.Context, fixes []playerstats.SideFix) error {
	if len(fixes) == 0 {
		return nil
	}
	return withTx(ctx, r.db, "update ovd sides", func(tx *sqlx.Tx) error {
		for _, fix := range fixes {
			query, args, err := qb.Update("player_stats").
				Set("side", fix.To).
				Where(
					qb.Eq("game_id", fix.GameID),
					qb.Eq("team", fix.Team),
					qb.Eq("player_name", fix.PlayerName),
				).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update side query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update side game=%s player=%s: %w", fix.GameID, fix.PlayerName, err)
			}
		}
		return nil
	})
}
