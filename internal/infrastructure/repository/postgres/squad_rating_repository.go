package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type SquadRatingRepository struct {
	db *sqlx.DB
}

func NewSquadRatingRepository(db *sqlx.DB) *SquadRatingRepository {
	return &SquadRatingRepository{db: db}
}

type squadRatingModel struct {
	ID               string    `db:"id"`
	SquadID          string    `db:"squad_id"`
	SquadName        string    `db:"squad_name"`
	SeasonName       string    `db:"season_name"`
	AnalysisDate     time.Time `db:"analysis_date"`
	AnalystID        string    `db:"analyst_id"`
	AnalystAlias     string    `db:"analyst_alias"`
	Commentary       string    `db:"analyst_commentary"`
	AnalystQuote     string    `db:"analyst_quote"`
	BreakdownSummary string    `db:"breakdown_summary"`
	CreatedAt        time.Time `db:"created_at"`
}

type squadRatingInsertModel struct {
	ID               string    `db:"id"`
	SquadID          string    `db:"squad_id"`
	SeasonName       string    `db:"season_name"`
	AnalysisDate     time.Time `db:"analysis_date"`
	AnalystID        string    `db:"analyst_id"`
	AnalystAlias     string    `db:"analyst_alias"`
	Commentary       string    `db:"analyst_commentary"`
	AnalystQuote     string    `db:"analyst_quote"`
	BreakdownSummary string    `db:"breakdown_summary"`
	CreatedAt        time.Time `db:"created_at"`
}

type playerRatingModel struct {
	SquadRatingID string  `db:"squad_rating_id"`
	PlayerID      string  `db:"player_id"`
	PlayerAlias   string  `db:"player_alias"`
	Rating        float64 `db:"rating"`
	Notes         string  `db:"notes"`
}

func (r *SquadRatingRepository) List(ctx context.Context, squadID string) ([]squadrating.Rating, error) {
	builder := qb.Select("r.id", "r.squad_id", "COALESCE(s.name, '') AS squad_name", "r.season_name", "r.analysis_date",
		"r.analyst_id", "r.analyst_alias", "r.analyst_commentary", "r.analyst_quote", "r.breakdown_summary", "r.created_at").
		From("squad_ratings r LEFT JOIN squads s ON s.id = r.squad_id").
		OrderBy("r.analysis_date DESC", "r.created_at DESC")
	if squadID != "" {
		builder = builder.Where(qb.Eq("r.squad_id", squadID))
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squad ratings query: %w", err)
	}

	var rows []squadRatingModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select squad ratings: %w", err)
	}
	if len(rows) == 0 {
		return []squadrating.Rating{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	playerQuery, playerArgs, err := qb.Select("squad_rating_id", "player_id", "player_alias", "rating", "notes").
		From("player_ratings").
		Where(qb.In("squad_rating_id", stringSliceToAny(ids))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player ratings query: %w", err)
	}
	var players []playerRatingModel
	if err := r.db.SelectContext(ctx, &players, playerQuery, playerArgs...); err != nil {
		return nil, fmt.Errorf("select player ratings: %w", err)
	}
	byRating := make(map[string][]squadrating.PlayerRating, len(rows))
	for _, p := range players {
		byRating[p.SquadRatingID] = append(byRating[p.SquadRatingID], squadrating.PlayerRating{
			PlayerID:    p.PlayerID,
			PlayerAlias: p.PlayerAlias,
			Rating:      p.Rating,
			Notes:       p.Notes,
		})
	}

	out := make([]squadrating.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, squadrating.Rating{
			ID:               row.ID,
			SquadID:          row.SquadID,
			SquadName:        row.SquadName,
			SeasonName:       row.SeasonName,
			AnalysisDate:     row.AnalysisDate,
			AnalystID:        row.AnalystID,
			AnalystAlias:     row.AnalystAlias,
			Commentary:       row.Commentary,
			AnalystQuote:     row.AnalystQuote,
			BreakdownSummary: row.BreakdownSummary,
			PlayerRatings:    byRating[row.ID],
			CreatedAt:        row.CreatedAt,
		})
	}
	return out, nil
}

func (r *SquadRatingRepository) Create(ctx context.Context, rating squadrating.Rating) error {
	return withTx(ctx, r.db, "create squad rating", func(tx *sqlx.Tx) error {
		query, args, err := qb.InsertModel("squad_ratings", squadRatingInsertModel{
			ID:               rating.ID,
			SquadID:          rating.SquadID,
			SeasonName:       rating.SeasonName,
			AnalysisDate:     rating.AnalysisDate,
			AnalystID:        rating.AnalystID,
			AnalystAlias:     rating.AnalystAlias,
			Commentary:       rating.Commentary,
			AnalystQuote:     rating.AnalystQuote,
			BreakdownSummary: rating.BreakdownSummary,
			CreatedAt:        rating.CreatedAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert squad rating query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert squad rating id=%s: %w", rating.ID, err)
		}

		for _, p := range rating.PlayerRatings {
			query, args, err := qb.InsertModel("player_ratings", playerRatingModel{
				SquadRatingID: rating.ID,
				PlayerID:      p.PlayerID,
				PlayerAlias:   p.PlayerAlias,
				Rating:        p.Rating,
				Notes:         p.Notes,
			}, "")
			if err != nil {
				return fmt.Errorf("build insert player rating query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert player rating squad_rating=%s player=%s: %w", rating.ID, p.PlayerID, err)
			}
		}
		return nil
	})
}
