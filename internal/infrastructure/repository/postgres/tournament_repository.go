package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) Create(ctx context.Context, t tournament.Tournament) error {
	query, args, err := qb.InsertModel("tournaments", tournamentInsertModel{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		Type:                 t.Type,
		MaxParticipants:      t.MaxParticipants,
		EntryFeeCents:        t.EntryFeeCents,
		PrizePoolCents:       t.PrizePoolCents,
		Status:               string(t.Status),
		RegistrationDeadline: t.RegistrationDeadline,
		StartTime:            t.StartTime,
		CreatedBy:            t.CreatedBy,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tournament id=%s: %w", t.ID, err)
	}
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return getTournament(ctx, r.db, tournamentID, false)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, tournamentID string, forUpdate bool) (tournament.Tournament, bool, error) {
	builder := qb.Select(tournamentColumns).From("tournaments").Where(qb.Eq("id", tournamentID))
	if forUpdate {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament id=%s: %w", tournamentID, err)
	}
	return row.toDomain(), true, nil
}

func (r *TournamentRepository) List(ctx context.Context, query tournament.ListQuery) ([]tournament.Tournament, error) {
	builder := qb.Select(tournamentColumns).From("tournaments").OrderBy("created_at DESC").Limit(query.Limit)
	if query.Status != "" {
		builder = builder.Where(qb.Eq("status", query.Status))
	}
	sqlQuery, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("select tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TournamentRepository) ListParticipants(ctx context.Context, tournamentID string) ([]tournament.Participant, error) {
	return listParticipants(ctx, r.db, tournamentID)
}

func listParticipants(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]tournament.Participant, error) {
	const query = `
SELECT tournament_id, player_id, player_alias, seed_position, registered_at
FROM tournament_participants
WHERE tournament_id = $1
ORDER BY registered_at, player_id`

	var rows []tournamentParticipantModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("select participants tournament=%s: %w", tournamentID, err)
	}

	out := make([]tournament.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournament.Participant{
			TournamentID: row.TournamentID,
			PlayerID:     row.PlayerID,
			PlayerAlias:  row.PlayerAlias,
			SeedPosition: row.SeedPosition,
			RegisteredAt: row.RegisteredAt,
		})
	}
	return out, nil
}

func (r *TournamentRepository) ListMatches(ctx context.Context, tournamentID string) ([]tournament.BracketMatch, error) {
	const query = `
SELECT id, tournament_id, round, position, player1_id, player1_alias, player2_id, player2_alias,
    winner_id, winner_alias, loser_id, loser_alias, duel_id, status, completed_at
FROM tournament_matches
WHERE tournament_id = $1
ORDER BY round, position`

	var rows []tournamentMatchModel
	if err := r.db.SelectContext(ctx, &rows, query, tournamentID); err != nil {
		return nil, fmt.Errorf("select bracket matches tournament=%s: %w", tournamentID, err)
	}

	out := make([]tournament.BracketMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Register holds the tournament row lock while counting, so concurrent
// registrations cannot overfill it.
func (r *TournamentRepository) Register(ctx context.Context, p tournament.Participant, check func(t tournament.Tournament, count int) error) error {
	return withTx(ctx, r.db, "register participant", func(tx *sqlx.Tx) error {
		t, exists, err := getTournament(ctx, tx, p.TournamentID, true)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("tournament %s not found", p.TournamentID)
		}

		current, err := listParticipants(ctx, tx, p.TournamentID)
		if err != nil {
			return err
		}
		for _, existing := range current {
			if existing.PlayerID == p.PlayerID {
				return tournament.ErrAlreadyRegistered
			}
		}
		if check != nil {
			if err := check(t, len(current)); err != nil {
				return err
			}
		}

		query, args, err := qb.InsertModel("tournament_participants", tournamentParticipantModel{
			TournamentID: p.TournamentID,
			PlayerID:     p.PlayerID,
			PlayerAlias:  p.PlayerAlias,
			SeedPosition: p.SeedPosition,
			RegisteredAt: p.RegisteredAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert participant query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err, "") {
				return tournament.ErrAlreadyRegistered
			}
			return fmt.Errorf("insert participant tournament=%s player=%s: %w", p.TournamentID, p.PlayerID, err)
		}
		return nil
	})
}

func (r *TournamentRepository) SaveBracket(ctx context.Context, tournamentID string, participants []tournament.Participant, matches []tournament.BracketMatch, at time.Time) error {
	return withTx(ctx, r.db, "save bracket", func(tx *sqlx.Tx) error {
		t, exists, err := getTournament(ctx, tx, tournamentID, true)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("tournament %s not found", tournamentID)
		}
		if t.Status != tournament.StatusRegistration {
			return tournament.ErrBracketExists
		}

		for _, p := range participants {
			query, args, err := qb.Update("tournament_participants").
				Set("seed_position", p.SeedPosition).
				Where(qb.Eq("tournament_id", tournamentID), qb.Eq("player_id", p.PlayerID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update seed query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update seed tournament=%s player=%s: %w", tournamentID, p.PlayerID, err)
			}
		}

		for _, m := range matches {
			query, args, err := qb.InsertModel("tournament_matches", newTournamentMatchInsertModel(m), "")
			if err != nil {
				return fmt.Errorf("build insert bracket match query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert bracket match id=%s: %w", m.ID, err)
			}
		}

		return updateTournamentStatus(ctx, tx, tournamentID, tournament.StatusInProgress, at)
	})
}

func (r *TournamentRepository) UpdateMatches(ctx context.Context, matches []tournament.BracketMatch) error {
	return withTx(ctx, r.db, "update bracket matches", func(tx *sqlx.Tx) error {
		for _, m := range matches {
			model := newTournamentMatchInsertModel(m)
			query, args, err := qb.Update("tournament_matches").
				Set("player1_id", model.Player1ID).
				Set("player1_alias", model.Player1Alias).
				Set("player2_id", model.Player2ID).
				Set("player2_alias", model.Player2Alias).
				Set("winner_id", model.WinnerID).
				Set("winner_alias", model.WinnerAlias).
				Set("loser_id", model.LoserID).
				Set("loser_alias", model.LoserAlias).
				Set("duel_id", model.DuelID).
				Set("status", model.Status).
				Set("completed_at", model.CompletedAt).
				Where(qb.Eq("id", m.ID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update bracket match query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("update bracket match id=%s: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (r *TournamentRepository) Complete(ctx context.Context, tournamentID, winnerID, runnerUpID string, at time.Time) error {
	query, args, err := qb.Update("tournaments").
		Set("status", string(tournament.StatusCompleted)).
		Set("winner_id", optionalString(winnerID)).
		Set("runner_up_id", optionalString(runnerUpID)).
		Set("end_time", at).
		Set("updated_at", at).
		Where(qb.Eq("id", tournamentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build complete tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("complete tournament id=%s: %w", tournamentID, err)
	}
	return nil
}

func (r *TournamentRepository) UpdateStatus(ctx context.Context, tournamentID string, status tournament.Status, at time.Time) error {
	return updateTournamentStatus(ctx, r.db, tournamentID, status, at)
}

func updateTournamentStatus(ctx context.Context, exec sqlx.ExecerContext, tournamentID string, status tournament.Status, at time.Time) error {
	query, args, err := qb.Update("tournaments").
		Set("status", string(status)).
		Set("updated_at", at).
		Where(qb.Eq("id", tournamentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update tournament status query: %w", err)
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tournament status id=%s: %w", tournamentID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("tournament %s not found", tournamentID)
	}
	return nil
}
