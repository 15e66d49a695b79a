package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/squad"
)

type SquadRepository struct {
	mu      sync.RWMutex
	squads  map[string]squad.Squad
	members []squad.Member
	invites map[string]squad.Invite
}

func NewSquadRepository() *SquadRepository {
	return &SquadRepository{
		squads:  make(map[string]squad.Squad),
		invites: make(map[string]squad.Invite),
	}
}

// Seed inserts a squad and members without any invariant checks.
func (r *SquadRepository) Seed(s squad.Squad, members ...squad.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.squads[s.ID] = s
	r.members = append(r.members, members...)
}

func (r *SquadRepository) ListActive(_ context.Context) ([]squad.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squad.Summary, 0, len(r.squads))
	for _, s := range r.squads {
		if !s.IsActive {
			continue
		}
		summary := squad.Summary{Squad: s}
		for _, m := range r.members {
			if m.SquadID != s.ID || m.Status != squad.MemberStatusActive {
				continue
			}
			summary.MemberCount++
			if m.PlayerID == s.CaptainID {
				summary.CaptainAlias = m.PlayerAlias
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SquadRepository) GetByID(_ context.Context, squadID string) (squad.Squad, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.squads[squadID]
	return s, ok, nil
}

func (r *SquadRepository) ListMembers(_ context.Context, squadID string) ([]squad.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squad.Member, 0)
	for _, m := range r.members {
		if m.SquadID == squadID && m.Status == squad.MemberStatusActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *SquadRepository) FindActiveMembership(_ context.Context, playerID string) (squad.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.activeMembershipLocked(playerID, "")
	return m, ok, nil
}

// activeMembershipLocked finds the player's membership in an active,
// non-legacy squad other than exceptSquadID.
func (r *SquadRepository) activeMembershipLocked(playerID, exceptSquadID string) (squad.Member, bool) {
	for _, m := range r.members {
		if m.PlayerID != playerID || m.Status != squad.MemberStatusActive || m.SquadID == exceptSquadID {
			continue
		}
		if s, ok := r.squads[m.SquadID]; ok && s.CountsTowardActiveLimit() {
			return m, true
		}
	}
	return squad.Member{}, false
}

func (r *SquadRepository) CreateWithCaptain(_ context.Context, s squad.Squad, captain squad.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.squads {
		if !existing.IsActive || !s.IsActive {
			continue
		}
		if strings.EqualFold(existing.Name, s.Name) {
			return squad.ErrNameTaken
		}
		if strings.EqualFold(existing.Tag, s.Tag) {
			return squad.ErrTagTaken
		}
	}
	if s.CountsTowardActiveLimit() {
		if _, ok := r.activeMembershipLocked(captain.PlayerID, ""); ok {
			return squad.ErrAlreadyInActiveSquad
		}
	}

	r.squads[s.ID] = s
	r.members = append(r.members, captain)
	return nil
}

func (r *SquadRepository) AddMember(_ context.Context, member squad.Member, policy squad.JoinPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.squads[member.SquadID]
	if !ok {
		return fmt.Errorf("squad %s not found", member.SquadID)
	}
	if s.CountsTowardActiveLimit() {
		if _, ok := r.activeMembershipLocked(member.PlayerID, s.ID); ok {
			return squad.ErrAlreadyInActiveSquad
		}
	}

	current := make([]squad.Member, 0)
	for _, m := range r.members {
		if m.SquadID == s.ID && m.Status == squad.MemberStatusActive {
			current = append(current, m)
		}
	}
	if policy != nil {
		if err := policy(current); err != nil {
			return err
		}
	}

	r.members = append(r.members, member)
	return nil
}

func (r *SquadRepository) RemoveMember(_ context.Context, squadID, playerID, successorID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.memberIndexLocked(squadID, playerID)
	if idx < 0 {
		return squad.ErrNotMember
	}
	if successorID != "" {
		succ := r.memberIndexLocked(squadID, successorID)
		if succ < 0 {
			return squad.ErrNotMember
		}
		r.members[succ].Role = squad.RoleCaptain
		s := r.squads[squadID]
		s.CaptainID = successorID
		s.UpdatedAt = at
		r.squads[squadID] = s
	}
	r.members[idx].Status = squad.MemberStatusLeft
	return nil
}

func (r *SquadRepository) TransferCaptain(_ context.Context, squadID, fromPlayerID, toPlayerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from := r.memberIndexLocked(squadID, fromPlayerID)
	to := r.memberIndexLocked(squadID, toPlayerID)
	if from < 0 || to < 0 {
		return squad.ErrNotMember
	}
	r.members[from].Role = squad.RolePlayer
	r.members[to].Role = squad.RoleCaptain
	s := r.squads[squadID]
	s.CaptainID = toPlayerID
	s.UpdatedAt = at
	r.squads[squadID] = s
	return nil
}

func (r *SquadRepository) SetLegacy(_ context.Context, squadID string, legacy bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.squads[squadID]
	if !ok {
		return fmt.Errorf("squad %s not found", squadID)
	}
	if !legacy && s.IsActive {
		for _, m := range r.members {
			if m.SquadID != squadID || m.Status != squad.MemberStatusActive {
				continue
			}
			if _, ok := r.activeMembershipLocked(m.PlayerID, squadID); ok {
				return fmt.Errorf("%w: %s", squad.ErrLegacyConflict, m.PlayerAlias)
			}
		}
	}
	s.IsLegacy = legacy
	s.UpdatedAt = at
	r.squads[squadID] = s
	return nil
}

func (r *SquadRepository) CreateInvite(_ context.Context, invite squad.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.invites {
		if existing.SquadID == invite.SquadID &&
			existing.InvitedPlayerID == invite.InvitedPlayerID &&
			existing.Status == squad.InviteStatusPending {
			return squad.ErrDuplicateInvite
		}
	}
	r.invites[invite.ID] = invite
	return nil
}

func (r *SquadRepository) GetInvite(_ context.Context, inviteID string) (squad.Invite, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invite, ok := r.invites[inviteID]
	return invite, ok, nil
}

func (r *SquadRepository) UpdateInviteStatus(_ context.Context, inviteID string, status squad.InviteStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invite, ok := r.invites[inviteID]
	if !ok {
		return fmt.Errorf("invite %s not found", inviteID)
	}
	invite.Status = status
	invite.RespondedAt = &at
	r.invites[inviteID] = invite
	return nil
}

func (r *SquadRepository) ListPendingInvitesForPlayer(_ context.Context, playerID string) ([]squad.Invite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]squad.Invite, 0)
	for _, invite := range r.invites {
		if invite.InvitedPlayerID == playerID && invite.Status == squad.InviteStatusPending {
			out = append(out, invite)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *SquadRepository) memberIndexLocked(squadID, playerID string) int {
	for i, m := range r.members {
		if m.SquadID == squadID && m.PlayerID == playerID && m.Status == squad.MemberStatusActive {
			return i
		}
	}
	return -1
}
