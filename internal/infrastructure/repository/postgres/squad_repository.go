package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) ListActive(ctx context.Context) ([]squad.Summary, error) {
	const query = `
SELECT ` + squadColumns + `,
    COUNT(m.id) AS member_count,
    MAX(CASE WHEN m.player_id = s.captain_id THEN p.in_game_alias END) AS captain_alias
FROM squads s
LEFT JOIN squad_members m ON m.squad_id = s.id AND m.status = 'active'
LEFT JOIN profiles p ON p.id = m.player_id
WHERE s.is_active = TRUE
GROUP BY s.id
ORDER BY s.created_at DESC`

	var rows []squadSummaryModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select active squads: %w", err)
	}

	out := make([]squad.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, squad.Summary{
			Squad:        row.toDomain(),
			MemberCount:  row.MemberCount,
			CaptainAlias: nullStringValue(row.CaptainAlias),
		})
	}
	return out, nil
}

func (r *SquadRepository) GetByID(ctx context.Context, squadID string) (squad.Squad, bool, error) {
	query, args, err := qb.Select(squadColumns).
		From("squads s").
		Where(qb.Eq("s.id", squadID)).
		ToSQL()
	if err != nil {
		return squad.Squad{}, false, fmt.Errorf("build get squad query: %w", err)
	}

	var row squadTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return squad.Squad{}, false, nil
		}
		return squad.Squad{}, false, fmt.Errorf("get squad id=%s: %w", squadID, err)
	}
	return row.toDomain(), true, nil
}

const memberSelect = `
SELECT m.id, m.squad_id, m.player_id, p.in_game_alias AS player_alias, m.role, m.status, m.transitional, m.joined_at
FROM squad_members m
LEFT JOIN profiles p ON p.id = m.player_id`

func (r *SquadRepository) ListMembers(ctx context.Context, squadID string) ([]squad.Member, error) {
	return listMembers(ctx, r.db, squadID, false)
}

func listMembers(ctx context.Context, q sqlx.QueryerContext, squadID string, forUpdate bool) ([]squad.Member, error) {
	query := memberSelect + `
WHERE m.squad_id = $1
  AND m.status = 'active'
ORDER BY m.joined_at`
	if forUpdate {
		query += "\nFOR UPDATE OF m"
	}

	var rows []squadMemberModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, squadID); err != nil {
		return nil, fmt.Errorf("select squad members squad=%s: %w", squadID, err)
	}

	out := make([]squad.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SquadRepository) FindActiveMembership(ctx context.Context, playerID string) (squad.Member, bool, error) {
	return findActiveMembership(ctx, r.db, playerID, "")
}

// findActiveMembership looks up the player's slot in an active, non-legacy
// squad other than exceptSquadID.
func findActiveMembership(ctx context.Context, q sqlx.QueryerContext, playerID, exceptSquadID string) (squad.Member, bool, error) {
	const query = memberSelect + `
JOIN squads s ON s.id = m.squad_id
WHERE m.player_id = $1
  AND m.status = 'active'
  AND s.is_active = TRUE
  AND s.is_legacy = FALSE
  AND s.id <> $2
ORDER BY m.joined_at
LIMIT 1`

	var row squadMemberModel
	if err := sqlx.GetContext(ctx, q, &row, query, playerID, exceptSquadID); err != nil {
		if isNotFound(err) {
			return squad.Member{}, false, nil
		}
		return squad.Member{}, false, fmt.Errorf("find active membership player=%s: %w", playerID, err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) CreateWithCaptain(ctx context.Context, s squad.Squad, captain squad.Member) error {
	return withTx(ctx, r.db, "create squad", func(tx *sqlx.Tx) error {
		if err := lockPlayer(ctx, tx, captain.PlayerID); err != nil {
			return err
		}
		if s.CountsTowardActiveLimit() {
			if _, exists, err := findActiveMembership(ctx, tx, captain.PlayerID, ""); err != nil {
				return err
			} else if exists {
				return squad.ErrAlreadyInActiveSquad
			}
		}

		query, args, err := qb.InsertModel("squads", squadInsertModel{
			ID:                 s.ID,
			Name:               s.Name,
			Tag:                s.Tag,
			Description:        s.Description,
			DiscordLink:        s.DiscordLink,
			WebsiteLink:        s.WebsiteLink,
			BannerURL:          s.BannerURL,
			CaptainID:          s.CaptainID,
			IsActive:           s.IsActive,
			IsLegacy:           s.IsLegacy,
			TournamentEligible: s.TournamentEligible,
			MaxMembers:         s.MaxMembers,
			CreatedAt:          s.CreatedAt,
			UpdatedAt:          s.UpdatedAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert squad query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			switch {
			case isUniqueViolation(err, "uq_squads_name_lower"):
				return squad.ErrNameTaken
			case isUniqueViolation(err, "uq_squads_tag_upper"):
				return squad.ErrTagTaken
			}
			return fmt.Errorf("insert squad: %w", err)
		}

		return insertMember(ctx, tx, captain)
	})
}

func insertMember(ctx context.Context, tx *sqlx.Tx, m squad.Member) error {
	query, args, err := qb.InsertModel("squad_members", squadMemberInsertModel{
		ID:           m.ID,
		SquadID:      m.SquadID,
		PlayerID:     m.PlayerID,
		Role:         string(m.Role),
		Status:       string(squad.MemberStatusActive),
		Transitional: m.Transitional,
		JoinedAt:     m.JoinedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert squad member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "uq_squad_members_active") {
			return squad.ErrAlreadyMember
		}
		return fmt.Errorf("insert squad member squad=%s player=%s: %w", m.SquadID, m.PlayerID, err)
	}
	return nil
}

func (r *SquadRepository) AddMember(ctx context.Context, member squad.Member, policy squad.JoinPolicy) error {
	return withTx(ctx, r.db, "add squad member", func(tx *sqlx.Tx) error {
		if err := lockPlayer(ctx, tx, member.PlayerID); err != nil {
			return err
		}

		var row squadTableModel
		query := `SELECT ` + squadColumns + ` FROM squads s WHERE s.id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, query, member.SquadID); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("squad %s not found", member.SquadID)
			}
			return fmt.Errorf("lock squad id=%s: %w", member.SquadID, err)
		}
		s := row.toDomain()

		if s.CountsTowardActiveLimit() {
			if _, exists, err := findActiveMembership(ctx, tx, member.PlayerID, s.ID); err != nil {
				return err
			} else if exists {
				return squad.ErrAlreadyInActiveSquad
			}
		}

		current, err := listMembers(ctx, tx, s.ID, true)
		if err != nil {
			return err
		}
		if policy != nil {
			if err := policy(current); err != nil {
				return err
			}
		}
		return insertMember(ctx, tx, member)
	})
}

func (r *SquadRepository) RemoveMember(ctx context.Context, squadID, playerID, successorID string, at time.Time) error {
	return withTx(ctx, r.db, "remove squad member", func(tx *sqlx.Tx) error {
		if successorID != "" {
			if err := setRole(ctx, tx, squadID, successorID, squad.RoleCaptain); err != nil {
				return err
			}
			if err := setCaptain(ctx, tx, squadID, successorID, at); err != nil {
				return err
			}
		}

		query, args, err := qb.Update("squad_members").
			Set("status", string(squad.MemberStatusLeft)).
			Set("left_at", at).
			Where(
				qb.Eq("squad_id", squadID),
				qb.Eq("player_id", playerID),
				qb.EqLiteral("status", string(squad.MemberStatusActive)),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build leave squad query: %w", err)
		}
		return execAffectingMember(ctx, tx, query, args)
	})
}

func (r *SquadRepository) TransferCaptain(ctx context.Context, squadID, fromPlayerID, toPlayerID string, at time.Time) error {
	return withTx(ctx, r.db, "transfer captain", func(tx *sqlx.Tx) error {
		if err := setRole(ctx, tx, squadID, fromPlayerID, squad.RolePlayer); err != nil {
			return err
		}
		if err := setRole(ctx, tx, squadID, toPlayerID, squad.RoleCaptain); err != nil {
			return err
		}
		return setCaptain(ctx, tx, squadID, toPlayerID, at)
	})
}

func setRole(ctx context.Context, tx *sqlx.Tx, squadID, playerID string, role squad.Role) error {
	query, args, err := qb.Update("squad_members").
		Set("role", string(role)).
		Where(
			qb.Eq("squad_id", squadID),
			qb.Eq("player_id", playerID),
			qb.EqLiteral("status", string(squad.MemberStatusActive)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update member role query: %w", err)
	}
	return execAffectingMember(ctx, tx, query, args)
}

func setCaptain(ctx context.Context, tx *sqlx.Tx, squadID, captainID string, at time.Time) error {
	query, args, err := qb.Update("squads").
		Set("captain_id", captainID).
		Set("updated_at", at).
		Where(qb.Eq("id", squadID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update captain query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update squad captain squad=%s: %w", squadID, err)
	}
	return nil
}

func execAffectingMember(ctx context.Context, tx *sqlx.Tx, query string, args []any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update squad member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected squad members: %w", err)
	}
	if affected == 0 {
		return squad.ErrNotMember
	}
	return nil
}

func (r *SquadRepository) SetLegacy(ctx context.Context, squadID string, legacy bool, at time.Time) error {
	return withTx(ctx, r.db, "set squad legacy", func(tx *sqlx.Tx) error {
		var row squadTableModel
		query := `SELECT ` + squadColumns + ` FROM squads s WHERE s.id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, query, squadID); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("squad %s not found", squadID)
			}
			return fmt.Errorf("lock squad id=%s: %w", squadID, err)
		}

		if !legacy && row.IsActive {
			members, err := listMembers(ctx, tx, squadID, true)
			if err != nil {
				return err
			}
			playerIDs := make([]string, 0, len(members))
			for _, m := range members {
				playerIDs = append(playerIDs, m.PlayerID)
			}
			if err := lockPlayers(ctx, tx, playerIDs...); err != nil {
				return err
			}
			for _, m := range members {
				_, exists, err := findActiveMembership(ctx, tx, m.PlayerID, squadID)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%w: %s", squad.ErrLegacyConflict, m.PlayerAlias)
				}
			}
		}

		update, args, err := qb.Update("squads").
			Set("is_legacy", legacy).
			Set("updated_at", at).
			Where(qb.Eq("id", squadID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build set legacy query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return fmt.Errorf("update squad legacy squad=%s: %w", squadID, err)
		}
		return nil
	})
}

func (r *SquadRepository) CreateInvite(ctx context.Context, invite squad.Invite) error {
	query, args, err := qb.InsertModel("squad_invites", squadInviteModel{
		ID:              invite.ID,
		SquadID:         invite.SquadID,
		InvitedPlayerID: invite.InvitedPlayerID,
		InvitedBy:       invite.InvitedBy,
		Status:          string(invite.Status),
		ExpiresAt:       invite.ExpiresAt,
		CreatedAt:       invite.CreatedAt,
		RespondedAt:     invite.RespondedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert invite query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "uq_squad_invites_pending") {
			return squad.ErrDuplicateInvite
		}
		return fmt.Errorf("insert invite squad=%s player=%s: %w", invite.SquadID, invite.InvitedPlayerID, err)
	}
	return nil
}

const inviteColumns = "id, squad_id, invited_player_id, invited_by, status, expires_at, created_at, responded_at"

func (r *SquadRepository) GetInvite(ctx context.Context, inviteID string) (squad.Invite, bool, error) {
	query, args, err := qb.Select(inviteColumns).
		From("squad_invites").
		Where(qb.Eq("id", inviteID)).
		ToSQL()
	if err != nil {
		return squad.Invite{}, false, fmt.Errorf("build get invite query: %w", err)
	}

	var row squadInviteModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return squad.Invite{}, false, nil
		}
		return squad.Invite{}, false, fmt.Errorf("get invite id=%s: %w", inviteID, err)
	}
	return row.toDomain(), true, nil
}

func (r *SquadRepository) UpdateInviteStatus(ctx context.Context, inviteID string, status squad.InviteStatus, at time.Time) error {
	query, args, err := qb.Update("squad_invites").
		Set("status", string(status)).
		Set("responded_at", at).
		Where(qb.Eq("id", inviteID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update invite query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update invite id=%s: %w", inviteID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("invite %s not found", inviteID)
	}
	return nil
}

func (r *SquadRepository) ListPendingInvitesForPlayer(ctx context.Context, playerID string) ([]squad.Invite, error) {
	query, args, err := qb.Select(inviteColumns).
		From("squad_invites").
		Where(
			qb.Eq("invited_player_id", playerID),
			qb.EqLiteral("status", string(squad.InviteStatusPending)),
		).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list invites query: %w", err)
	}

	var rows []squadInviteModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pending invites player=%s: %w", playerID, err)
	}

	out := make([]squad.Invite, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
