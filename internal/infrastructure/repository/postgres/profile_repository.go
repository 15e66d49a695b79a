package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (profile.Profile, bool, error) {
	return r.getOne(ctx, "id="+id, qb.Eq("p.id", id))
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (profile.Profile, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return profile.Profile{}, false, nil
	}
	return r.getOne(ctx, "email", qb.Expr("LOWER(p.email) = LOWER(?)", email))
}

func (r *ProfileRepository) getOne(ctx context.Context, label string, cond qb.Condition) (profile.Profile, bool, error) {
	query, args, err := qb.Select(profileColumns).
		From("profiles p").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile %s: %w", label, err)
	}
	return row.toDomain(), true, nil
}

// FindByAlias checks registered aliases first, then the profile's own
// in-game alias.
func (r *ProfileRepository) FindByAlias(ctx context.Context, alias string) (profile.Profile, bool, error) {
	key := profile.NormalizeAlias(alias)
	if key == "" {
		return profile.Profile{}, false, nil
	}

	query := `
SELECT ` + profileColumns + `
FROM profiles p
LEFT JOIN profile_aliases a ON a.profile_id = p.id AND LOWER(a.alias) = $1
WHERE a.id IS NOT NULL OR LOWER(p.in_game_alias) = $1
ORDER BY (a.id IS NOT NULL) DESC, p.created_at
LIMIT 1`

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("find profile by alias=%s: %w", key, err)
	}
	return row.toDomain(), true, nil
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []string) ([]profile.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select(profileColumns).
		From("profiles p").
		Where(qb.In("p.id", stringSliceToAny(ids))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list profiles query: %w", err)
	}

	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}

	out := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProfileRepository) ListAliases(ctx context.Context, profileID string) ([]profile.Alias, error) {
	query, args, err := qb.Select("profile_id", "alias", "is_primary").
		From("profile_aliases").
		Where(qb.Eq("profile_id", profileID)).
		OrderBy("is_primary DESC", "created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list aliases query: %w", err)
	}

	var rows []profileAliasModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select aliases profile=%s: %w", profileID, err)
	}

	out := make([]profile.Alias, 0, len(rows))
	for _, row := range rows {
		out = append(out, profile.Alias{ProfileID: row.ProfileID, Alias: row.Alias, IsPrimary: row.IsPrimary})
	}
	return out, nil
}
