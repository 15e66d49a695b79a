package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type DuelingRepository struct {
	db *sqlx.DB
}

func NewDuelingRepository(db *sqlx.DB) *DuelingRepository {
	return &DuelingRepository{db: db}
}

func (r *DuelingRepository) Create(ctx context.Context, match dueling.Match) error {
	return withTx(ctx, r.db, "create duel", func(tx *sqlx.Tx) error {
		query, args, err := qb.InsertModel("dueling_matches", duelMatchInsertModel{
			ID:               match.ID,
			MatchType:        string(match.MatchType),
			Player1Name:      match.Player1Name,
			Player2Name:      match.Player2Name,
			Player1ID:        optionalString(match.Player1ID),
			Player2ID:        optionalString(match.Player2ID),
			WinnerName:       match.WinnerName,
			WinnerID:         optionalString(match.WinnerID),
			ArenaName:        match.ArenaName,
			Status:           string(match.Status),
			Player1RoundsWon: match.Player1RoundsWon,
			Player2RoundsWon: match.Player2RoundsWon,
			StartedAt:        match.StartedAt,
			CompletedAt:      match.CompletedAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert duel query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert duel id=%s: %w", match.ID, err)
		}

		for _, round := range match.Rounds {
			query, args, err := qb.InsertModel("dueling_rounds", duelRoundModel{
				MatchID:         match.ID,
				RoundNumber:     round.RoundNumber,
				WinnerName:      round.WinnerName,
				LoserName:       round.LoserName,
				WinnerHPLeft:    round.WinnerHPLeft,
				LoserHPLeft:     round.LoserHPLeft,
				DurationSeconds: round.DurationSeconds,
			}, "")
			if err != nil {
				return fmt.Errorf("build insert duel round query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert duel round match=%s round=%d: %w", match.ID, round.RoundNumber, err)
			}

			for _, kill := range round.Kills {
				query, args, err := qb.InsertModel("dueling_kills", duelKillModel{
					MatchID:        match.ID,
					RoundNumber:    round.RoundNumber,
					KillerName:     kill.KillerName,
					VictimName:     kill.VictimName,
					WeaponUsed:     kill.WeaponUsed,
					DamageDealt:    kill.DamageDealt,
					VictimHPBefore: kill.VictimHPBefore,
					VictimHPAfter:  kill.VictimHPAfter,
					ShotsFired:     kill.ShotsFired,
					ShotsHit:       kill.ShotsHit,
					IsDoubleHit:    kill.IsDoubleHit,
					IsTripleHit:    kill.IsTripleHit,
				}, "")
				if err != nil {
					return fmt.Errorf("build insert duel kill query: %w", err)
				}
				if _, err := tx.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("insert duel kill match=%s round=%d: %w", match.ID, round.RoundNumber, err)
				}
			}
		}
		return nil
	})
}

func (r *DuelingRepository) GetByID(ctx context.Context, matchID string) (dueling.Match, bool, error) {
	items, err := r.selectMatches(ctx, "duel", qb.Select(duelColumns).
		From("dueling_matches").
		Where(qb.Eq("id", matchID)))
	if err != nil {
		return dueling.Match{}, false, err
	}
	if len(items) == 0 {
		return dueling.Match{}, false, nil
	}
	return items[0], true, nil
}

func (r *DuelingRepository) List(ctx context.Context, query dueling.ListQuery) ([]dueling.Match, int, error) {
	conds := make([]qb.Condition, 0, 3)
	if query.MatchType != "" {
		conds = append(conds, qb.Eq("match_type", query.MatchType))
	}
	if query.Status != "" {
		conds = append(conds, qb.Eq("status", query.Status))
	}
	if query.PlayerName != "" {
		conds = append(conds, qb.Or(
			qb.Expr("LOWER(player1_name) = LOWER(?)", query.PlayerName),
			qb.Expr("LOWER(player2_name) = LOWER(?)", query.PlayerName),
		))
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("dueling_matches").Where(conds...).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count duels query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count duels: %w", err)
	}

	items, err := r.selectMatches(ctx, "duels", qb.Select(duelColumns).
		From("dueling_matches").
		Where(conds...).
		OrderBy("started_at DESC", "id").
		Limit(query.Limit).
		Offset(query.Offset))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *DuelingRepository) ListRankedBetween(ctx context.Context, from, to time.Time) ([]dueling.Match, error) {
	return r.selectMatches(ctx, "ranked duels", qb.Select(duelColumns).
		From("dueling_matches").
		Where(
			qb.In("match_type", []any{string(dueling.MatchRankedBo3), string(dueling.MatchRankedBo5)}),
			qb.EqLiteral("status", string(dueling.StatusCompleted)),
			qb.Gte("completed_at", from.UTC()),
			qb.Expr("completed_at < ?", to.UTC()),
		).
		OrderBy("completed_at", "id"))
}

func (r *DuelingRepository) selectMatches(ctx context.Context, label string, builder *qb.SelectBuilder) ([]dueling.Match, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", label, err)
	}

	var rows []duelMatchModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}
	if len(rows) == 0 {
		return []dueling.Match{}, nil
	}

	out := make([]dueling.Match, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
		ids = append(ids, row.ID)
	}
	if err := r.attachRounds(ctx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DuelingRepository) attachRounds(ctx context.Context, matches []dueling.Match, ids []string) error {
	roundsQuery, roundsArgs, err := qb.Select("match_id", "round_number", "winner_name", "loser_name",
		"winner_hp_left", "loser_hp_left", "duration_seconds").
		From("dueling_rounds").
		Where(qb.In("match_id", stringSliceToAny(ids))).
		OrderBy("match_id", "round_number").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select duel rounds query: %w", err)
	}
	var rounds []duelRoundModel
	if err := r.db.SelectContext(ctx, &rounds, roundsQuery, roundsArgs...); err != nil {
		return fmt.Errorf("select duel rounds: %w", err)
	}

	killsQuery, killsArgs, err := qb.Select("match_id", "round_number", "killer_name", "victim_name", "weapon_used",
		"damage_dealt", "victim_hp_before", "victim_hp_after", "shots_fired", "shots_hit", "is_double_hit", "is_triple_hit").
		From("dueling_kills").
		Where(qb.In("match_id", stringSliceToAny(ids))).
		OrderBy("match_id", "round_number", "id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select duel kills query: %w", err)
	}
	var kills []duelKillModel
	if err := r.db.SelectContext(ctx, &kills, killsQuery, killsArgs...); err != nil {
		return fmt.Errorf("select duel kills: %w", err)
	}

	type roundKey struct {
		matchID string
		number  int
	}
	killsByRound := make(map[roundKey][]dueling.Kill)
	for _, k := range kills {
		key := roundKey{matchID: k.MatchID, number: k.RoundNumber}
		killsByRound[key] = append(killsByRound[key], k.toDomain())
	}

	byMatch := make(map[string]int, len(matches))
	for i, m := range matches {
		byMatch[m.ID] = i
	}
	for _, row := range rounds {
		idx, ok := byMatch[row.MatchID]
		if !ok {
			continue
		}
		matches[idx].Rounds = append(matches[idx].Rounds, dueling.Round{
			RoundNumber:     row.RoundNumber,
			WinnerName:      row.WinnerName,
			LoserName:       row.LoserName,
			WinnerHPLeft:    row.WinnerHPLeft,
			LoserHPLeft:     row.LoserHPLeft,
			DurationSeconds: row.DurationSeconds,
			Kills:           killsByRound[roundKey{matchID: row.MatchID, number: row.RoundNumber}],
		})
	}
	return nil
}
