package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
)

const profileColumns = `p.id, p.email, p.in_game_alias, p.avatar_url, p.is_admin, p.is_media_manager, p.is_zone_admin,
    p.site_admin, p.ctf_role, p.registration_status, p.is_league_banned, p.transitional_player, p.created_at`

type profileTableModel struct {
	ID                 string         `db:"id"`
	Email              string         `db:"email"`
	InGameAlias        sql.NullString `db:"in_game_alias"`
	AvatarURL          sql.NullString `db:"avatar_url"`
	IsAdmin            bool           `db:"is_admin"`
	IsMediaManager     bool           `db:"is_media_manager"`
	IsZoneAdmin        bool           `db:"is_zone_admin"`
	SiteAdmin          bool           `db:"site_admin"`
	CTFRole            sql.NullString `db:"ctf_role"`
	RegistrationStatus string         `db:"registration_status"`
	IsLeagueBanned     bool           `db:"is_league_banned"`
	TransitionalPlayer bool           `db:"transitional_player"`
	CreatedAt          time.Time      `db:"created_at"`
}

type profileAliasModel struct {
	ProfileID string `db:"profile_id"`
	Alias     string `db:"alias"`
	IsPrimary bool   `db:"is_primary"`
}

func (m profileTableModel) toDomain() profile.Profile {
	return profile.Profile{
		ID:                 m.ID,
		Email:              m.Email,
		InGameAlias:        nullStringValue(m.InGameAlias),
		AvatarURL:          nullStringValue(m.AvatarURL),
		IsAdmin:            m.IsAdmin,
		IsMediaManager:     m.IsMediaManager,
		IsZoneAdmin:        m.IsZoneAdmin,
		SiteAdmin:          m.SiteAdmin,
		CTFRole:            nullStringValue(m.CTFRole),
		RegistrationStatus: m.RegistrationStatus,
		IsLeagueBanned:     m.IsLeagueBanned,
		TransitionalPlayer: m.TransitionalPlayer,
		CreatedAt:          m.CreatedAt,
	}
}
