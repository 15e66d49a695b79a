package squad

import (
	"strings"
	"time"
)

const (
	DefaultMaxMembers = 15
	MaxTagLength      = 5
	MaxNameLength     = 50
	InviteTTL         = 7 * 24 * time.Hour
)

type Role string

const (
	RoleCaptain   Role = "captain"
	RoleCoCaptain Role = "co_captain"
	RolePlayer    Role = "player"
)

// CanLead reports whether the role may invite players and succeed a captain.
func (r Role) CanLead() bool {
	return r == RoleCaptain || r == RoleCoCaptain
}

type MemberStatus string

const (
	MemberStatusActive MemberStatus = "active"
	MemberStatusLeft   MemberStatus = "left"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
)

type Squad struct {
	ID                 string
	Name               string
	Tag                string
	Description        string
	DiscordLink        string
	WebsiteLink        string
	BannerURL          string
	CaptainID          string
	IsActive           bool
	IsLegacy           bool
	TournamentEligible bool
	MaxMembers         int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EffectiveMaxMembers applies the default when the squad has no explicit limit.
func (s Squad) EffectiveMaxMembers() int {
	if s.MaxMembers <= 0 {
		return DefaultMaxMembers
	}
	return s.MaxMembers
}

// CountsTowardActiveLimit is true for squads that take the player's single
// active slot.
func (s Squad) CountsTowardActiveLimit() bool {
	return s.IsActive && !s.IsLegacy
}

// Summary is the list projection of a squad.
type Summary struct {
	Squad
	MemberCount  int
	CaptainAlias string
}

type Member struct {
	ID           string
	SquadID      string
	PlayerID     string
	PlayerAlias  string
	Role         Role
	Status       MemberStatus
	Transitional bool
	JoinedAt     time.Time
}

type Invite struct {
	ID              string
	SquadID         string
	InvitedPlayerID string
	InvitedBy       string
	Status          InviteStatus
	ExpiresAt       time.Time
	CreatedAt       time.Time
	RespondedAt     *time.Time
}

func (i Invite) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// NormalizeTag uppercases and trims a squad tag.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// FindMember returns the active member entry for playerID.
func FindMember(members []Member, playerID string) (Member, bool) {
	for _, m := range members {
		if m.PlayerID == playerID && m.Status == MemberStatusActive {
			return m, true
		}
	}
	return Member{}, false
}

// Successor picks who takes over when leaving captain departs: another
// captain first, then the longest-serving co-captain.
func Successor(members []Member, leavingPlayerID string) (Member, bool) {
	var best Member
	found := false
	for _, m := range members {
		if m.PlayerID == leavingPlayerID || m.Status != MemberStatusActive || !m.Role.CanLead() {
			continue
		}
		if !found {
			best, found = m, true
			continue
		}
		if m.Role == RoleCaptain && best.Role != RoleCaptain {
			best = m
			continue
		}
		if m.Role == best.Role && m.JoinedAt.Before(best.JoinedAt) {
			best = m
		}
	}
	return best, found
}
