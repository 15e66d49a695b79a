package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
)

const eloColumns = `season, game_mode, player_name, player_id, elo_rating, elo_peak, elo_confidence,
    total_games, wins, losses, last_game_at`

type eloRatingModel struct {
	Season     string         `db:"season"`
	GameMode   string         `db:"game_mode"`
	PlayerName string         `db:"player_name"`
	PlayerID   sql.NullString `db:"player_id"`
	Rating     float64        `db:"elo_rating"`
	Peak       float64        `db:"elo_peak"`
	Confidence float64        `db:"elo_confidence"`
	TotalGames int            `db:"total_games"`
	Wins       int            `db:"wins"`
	Losses     int            `db:"losses"`
	LastGameAt *time.Time     `db:"last_game_at"`
}

func (m eloRatingModel) toDomain() elo.Rating {
	out := elo.Rating{
		PlayerName:  m.PlayerName,
		PlayerID:    nullStringValue(m.PlayerID),
		GameMode:    m.GameMode,
		Season:      m.Season,
		Rating:      m.Rating,
		Peak:        m.Peak,
		Confidence:  m.Confidence,
		GamesPlayed: m.TotalGames,
		Wins:        m.Wins,
		Losses:      m.Losses,
	}
	if m.LastGameAt != nil {
		out.LastGameAt = m.LastGameAt.UTC()
	}
	return out
}

// eloRowValues matches the column order of eloInsertColumns.
func eloRowValues(r elo.Rating) []any {
	var lastGameAt *time.Time
	if !r.LastGameAt.IsZero() {
		at := r.LastGameAt.UTC()
		lastGameAt = &at
	}
	return []any{
		r.Season,
		r.GameMode,
		elo.PlayerKey(r.PlayerName),
		r.PlayerName,
		optionalString(r.PlayerID),
		r.Rating,
		r.Peak,
		r.Confidence,
		r.GamesPlayed,
		r.Wins,
		r.Losses,
		lastGameAt,
	}
}

var eloInsertColumns = []string{
	"season", "game_mode", "player_key", "player_name", "player_id", "elo_rating", "elo_peak",
	"elo_confidence", "total_games", "wins", "losses", "last_game_at",
}

var eloSortExpressions = map[string]string{
	"weighted_elo":   "(elo_rating * elo_confidence + 1200 * (1 - elo_confidence))",
	"elo_rating":     "elo_rating",
	"elo_confidence": "elo_confidence",
	"elo_peak":       "elo_peak",
	"total_games":    "total_games",
	"win_rate":       "(CASE WHEN total_games = 0 THEN 0 ELSE wins::float8 / total_games END)",
	"last_game_date": "last_game_at",
}
