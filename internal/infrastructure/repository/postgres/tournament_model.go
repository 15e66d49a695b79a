package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
)

const tournamentColumns = `id, name, description, tournament_type, max_participants, entry_fee_cents, prize_pool_cents,
    status, registration_deadline, start_time, end_time, created_by, winner_id, runner_up_id, created_at, updated_at`

type tournamentTableModel struct {
	ID                   string         `db:"id"`
	Name                 string         `db:"name"`
	Description          string         `db:"description"`
	Type                 string         `db:"tournament_type"`
	MaxParticipants      int            `db:"max_participants"`
	EntryFeeCents        int64          `db:"entry_fee_cents"`
	PrizePoolCents       int64          `db:"prize_pool_cents"`
	Status               string         `db:"status"`
	RegistrationDeadline *time.Time     `db:"registration_deadline"`
	StartTime            *time.Time     `db:"start_time"`
	EndTime              *time.Time     `db:"end_time"`
	CreatedBy            string         `db:"created_by"`
	WinnerID             sql.NullString `db:"winner_id"`
	RunnerUpID           sql.NullString `db:"runner_up_id"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type tournamentInsertModel struct {
	ID                   string     `db:"id"`
	Name                 string     `db:"name"`
	Description          string     `db:"description"`
	Type                 string     `db:"tournament_type"`
	MaxParticipants      int        `db:"max_participants"`
	EntryFeeCents        int64      `db:"entry_fee_cents"`
	PrizePoolCents       int64      `db:"prize_pool_cents"`
	Status               string     `db:"status"`
	RegistrationDeadline *time.Time `db:"registration_deadline"`
	StartTime            *time.Time `db:"start_time"`
	CreatedBy            string     `db:"created_by"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

type tournamentParticipantModel struct {
	TournamentID string    `db:"tournament_id"`
	PlayerID     string    `db:"player_id"`
	PlayerAlias  string    `db:"player_alias"`
	SeedPosition int       `db:"seed_position"`
	RegisteredAt time.Time `db:"registered_at"`
}

type tournamentMatchModel struct {
	ID           string         `db:"id"`
	TournamentID string         `db:"tournament_id"`
	Round        int            `db:"round"`
	Position     int            `db:"position"`
	Player1ID    sql.NullString `db:"player1_id"`
	Player1Alias string         `db:"player1_alias"`
	Player2ID    sql.NullString `db:"player2_id"`
	Player2Alias string         `db:"player2_alias"`
	WinnerID     sql.NullString `db:"winner_id"`
	WinnerAlias  string         `db:"winner_alias"`
	LoserID      sql.NullString `db:"loser_id"`
	LoserAlias   string         `db:"loser_alias"`
	DuelID       sql.NullString `db:"duel_id"`
	Status       string         `db:"status"`
	CompletedAt  *time.Time     `db:"completed_at"`
}

type tournamentMatchInsertModel struct {
	ID           string     `db:"id"`
	TournamentID string     `db:"tournament_id"`
	Round        int        `db:"round"`
	Position     int        `db:"position"`
	Player1ID    *string    `db:"player1_id"`
	Player1Alias string     `db:"player1_alias"`
	Player2ID    *string    `db:"player2_id"`
	Player2Alias string     `db:"player2_alias"`
	WinnerID     *string    `db:"winner_id"`
	WinnerAlias  string     `db:"winner_alias"`
	LoserID      *string    `db:"loser_id"`
	LoserAlias   string     `db:"loser_alias"`
	DuelID       *string    `db:"duel_id"`
	Status       string     `db:"status"`
	CompletedAt  *time.Time `db:"completed_at"`
}

func (m tournamentTableModel) toDomain() tournament.Tournament {
	return tournament.Tournament{
		ID:                   m.ID,
		Name:                 m.Name,
		Description:          m.Description,
		Type:                 m.Type,
		MaxParticipants:      m.MaxParticipants,
		EntryFeeCents:        m.EntryFeeCents,
		PrizePoolCents:       m.PrizePoolCents,
		Status:               tournament.Status(m.Status),
		RegistrationDeadline: m.RegistrationDeadline,
		StartTime:            m.StartTime,
		EndTime:              m.EndTime,
		CreatedBy:            m.CreatedBy,
		WinnerID:             nullStringValue(m.WinnerID),
		RunnerUpID:           nullStringValue(m.RunnerUpID),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func (m tournamentMatchModel) toDomain() tournament.BracketMatch {
	return tournament.BracketMatch{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		Round:        m.Round,
		Position:     m.Position,
		Player1ID:    nullStringValue(m.Player1ID),
		Player1Alias: m.Player1Alias,
		Player2ID:    nullStringValue(m.Player2ID),
		Player2Alias: m.Player2Alias,
		WinnerID:     nullStringValue(m.WinnerID),
		WinnerAlias:  m.WinnerAlias,
		LoserID:      nullStringValue(m.LoserID),
		LoserAlias:   m.LoserAlias,
		DuelID:       nullStringValue(m.DuelID),
		Status:       tournament.MatchStatus(m.Status),
		CompletedAt:  m.CompletedAt,
	}
}

func newTournamentMatchInsertModel(m tournament.BracketMatch) tournamentMatchInsertModel {
	return tournamentMatchInsertModel{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		Round:        m.Round,
		Position:     m.Position,
		Player1ID:    optionalString(m.Player1ID),
		Player1Alias: m.Player1Alias,
		Player2ID:    optionalString(m.Player2ID),
		Player2Alias: m.Player2Alias,
		WinnerID:     optionalString(m.WinnerID),
		WinnerAlias:  m.WinnerAlias,
		LoserID:      optionalString(m.LoserID),
		LoserAlias:   m.LoserAlias,
		DuelID:       optionalString(m.DuelID),
		Status:       string(m.Status),
		CompletedAt:  m.CompletedAt,
	}
}
