package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/squad"
)

const squadColumns = `s.id, s.name, s.tag, s.description, s.discord_link, s.website_link, s.banner_url,
    s.captain_id, s.is_active, s.is_legacy, s.tournament_eligible, s.max_members, s.created_at, s.updated_at`

type squadTableModel struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	Tag                string    `db:"tag"`
	Description        string    `db:"description"`
	DiscordLink        string    `db:"discord_link"`
	WebsiteLink        string    `db:"website_link"`
	BannerURL          string    `db:"banner_url"`
	CaptainID          string    `db:"captain_id"`
	IsActive           bool      `db:"is_active"`
	IsLegacy           bool      `db:"is_legacy"`
	TournamentEligible bool      `db:"tournament_eligible"`
	MaxMembers         int       `db:"max_members"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type squadSummaryModel struct {
	squadTableModel
	MemberCount  int            `db:"member_count"`
	CaptainAlias sql.NullString `db:"captain_alias"`
}

type squadInsertModel struct {
	ID                 string    `db:"id"`
	Name               string    `db:"name"`
	Tag                string    `db:"tag"`
	Description        string    `db:"description"`
	DiscordLink        string    `db:"discord_link"`
	WebsiteLink        string    `db:"website_link"`
	BannerURL          string    `db:"banner_url"`
	CaptainID          string    `db:"captain_id"`
	IsActive           bool      `db:"is_active"`
	IsLegacy           bool      `db:"is_legacy"`
	TournamentEligible bool      `db:"tournament_eligible"`
	MaxMembers         int       `db:"max_members"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type squadMemberModel struct {
	ID           string         `db:"id"`
	SquadID      string         `db:"squad_id"`
	PlayerID     string         `db:"player_id"`
	PlayerAlias  sql.NullString `db:"player_alias"`
	Role         string         `db:"role"`
	Status       string         `db:"status"`
	Transitional bool           `db:"transitional"`
	JoinedAt     time.Time      `db:"joined_at"`
}

type squadMemberInsertModel struct {
	ID           string    `db:"id"`
	SquadID      string    `db:"squad_id"`
	PlayerID     string    `db:"player_id"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	Transitional bool      `db:"transitional"`
	JoinedAt     time.Time `db:"joined_at"`
}

type squadInviteModel struct {
	ID              string     `db:"id"`
	SquadID         string     `db:"squad_id"`
	InvitedPlayerID string     `db:"invited_player_id"`
	InvitedBy       string     `db:"invited_by"`
	Status          string     `db:"status"`
	ExpiresAt       time.Time  `db:"expires_at"`
	CreatedAt       time.Time  `db:"created_at"`
	RespondedAt     *time.Time `db:"responded_at"`
}

func (m squadTableModel) toDomain() squad.Squad {
	return squad.Squad{
		ID:                 m.ID,
		Name:               m.Name,
		Tag:                m.Tag,
		Description:        m.Description,
		DiscordLink:        m.DiscordLink,
		WebsiteLink:        m.WebsiteLink,
		BannerURL:          m.BannerURL,
		CaptainID:          m.CaptainID,
		IsActive:           m.IsActive,
		IsLegacy:           m.IsLegacy,
		TournamentEligible: m.TournamentEligible,
		MaxMembers:         m.MaxMembers,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (m squadMemberModel) toDomain() squad.Member {
	return squad.Member{
		ID:           m.ID,
		SquadID:      m.SquadID,
		PlayerID:     m.PlayerID,
		PlayerAlias:  nullStringValue(m.PlayerAlias),
		Role:         squad.Role(m.Role),
		Status:       squad.MemberStatus(m.Status),
		Transitional: m.Transitional,
		JoinedAt:     m.JoinedAt,
	}
}

func (m squadInviteModel) toDomain() squad.Invite {
	return squad.Invite{
		ID:              m.ID,
		SquadID:         m.SquadID,
		InvitedPlayerID: m.InvitedPlayerID,
		InvitedBy:       m.InvitedBy,
		Status:          squad.InviteStatus(m.Status),
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
		RespondedAt:     m.RespondedAt,
	}
}
