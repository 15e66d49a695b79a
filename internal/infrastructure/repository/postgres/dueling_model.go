package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
)

const duelColumns = `id, match_type, player1_name, player2_name, player1_id, player2_id, winner_name, winner_id,
    arena_name, status, player1_rounds_won, player2_rounds_won, started_at, completed_at`

type duelMatchModel struct {
	ID               string         `db:"id"`
	MatchType        string         `db:"match_type"`
	Player1Name      string         `db:"player1_name"`
	Player2Name      string         `db:"player2_name"`
	Player1ID        sql.NullString `db:"player1_id"`
	Player2ID        sql.NullString `db:"player2_id"`
	WinnerName       string         `db:"winner_name"`
	WinnerID         sql.NullString `db:"winner_id"`
	ArenaName        string         `db:"arena_name"`
	Status           string         `db:"status"`
	Player1RoundsWon int            `db:"player1_rounds_won"`
	Player2RoundsWon int            `db:"player2_rounds_won"`
	StartedAt        time.Time      `db:"started_at"`
	CompletedAt      *time.Time     `db:"completed_at"`
}

type duelMatchInsertModel struct {
	ID               string     `db:"id"`
	MatchType        string     `db:"match_type"`
	Player1Name      string     `db:"player1_name"`
	Player2Name      string     `db:"player2_name"`
	Player1ID        *string    `db:"player1_id"`
	Player2ID        *string    `db:"player2_id"`
	WinnerName       string     `db:"winner_name"`
	WinnerID         *string    `db:"winner_id"`
	ArenaName        string     `db:"arena_name"`
	Status           string     `db:"status"`
	Player1RoundsWon int        `db:"player1_rounds_won"`
	Player2RoundsWon int        `db:"player2_rounds_won"`
	StartedAt        time.Time  `db:"started_at"`
	CompletedAt      *time.Time `db:"completed_at"`
}

type duelRoundModel struct {
	MatchID         string `db:"match_id"`
	RoundNumber     int    `db:"round_number"`
	WinnerName      string `db:"winner_name"`
	LoserName       string `db:"loser_name"`
	WinnerHPLeft    int    `db:"winner_hp_left"`
	LoserHPLeft     int    `db:"loser_hp_left"`
	DurationSeconds int    `db:"duration_seconds"`
}

type duelKillModel struct {
	MatchID        string `db:"match_id"`
	RoundNumber    int    `db:"round_number"`
	KillerName     string `db:"killer_name"`
	VictimName     string `db:"victim_name"`
	WeaponUsed     string `db:"weapon_used"`
	DamageDealt    int    `db:"damage_dealt"`
	VictimHPBefore int    `db:"victim_hp_before"`
	VictimHPAfter  int    `db:"victim_hp_after"`
	ShotsFired     int    `db:"shots_fired"`
	ShotsHit       int    `db:"shots_hit"`
	IsDoubleHit    bool   `db:"is_double_hit"`
	IsTripleHit    bool   `db:"is_triple_hit"`
}

func (m duelMatchModel) toDomain() dueling.Match {
	return dueling.Match{
		ID:               m.ID,
		MatchType:        dueling.MatchType(m.MatchType),
		Player1Name:      m.Player1Name,
		Player2Name:      m.Player2Name,
		Player1ID:        nullStringValue(m.Player1ID),
		Player2ID:        nullStringValue(m.Player2ID),
		WinnerName:       m.WinnerName,
		WinnerID:         nullStringValue(m.WinnerID),
		ArenaName:        m.ArenaName,
		Status:           dueling.Status(m.Status),
		Player1RoundsWon: m.Player1RoundsWon,
		Player2RoundsWon: m.Player2RoundsWon,
		StartedAt:        m.StartedAt.UTC(),
		CompletedAt:      m.CompletedAt,
	}
}

func (m duelKillModel) toDomain() dueling.Kill {
	return dueling.Kill{
		RoundNumber:    m.RoundNumber,
		KillerName:     m.KillerName,
		VictimName:     m.VictimName,
		WeaponUsed:     m.WeaponUsed,
		DamageDealt:    m.DamageDealt,
		VictimHPBefore: m.VictimHPBefore,
		VictimHPAfter:  m.VictimHPAfter,
		ShotsFired:     m.ShotsFired,
		ShotsHit:       m.ShotsHit,
		IsDoubleHit:    m.IsDoubleHit,
		IsTripleHit:    m.IsTripleHit,
	}
}
