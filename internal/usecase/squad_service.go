package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/season"
	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	idgen "github.com/riskibarqy/infantry-community/internal/platform/id"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type CreateSquadInput struct {
	ActorID     string
	Name        string
	Tag         string
	Description string
	DiscordLink string
	WebsiteLink string
	BannerURL   string
}

type TransferCaptainInput struct {
	ActorID      string
	SquadID      string
	NewCaptainID string
}

type InvitePlayerInput struct {
	ActorID  string
	SquadID  string
	PlayerID string
}

type RespondInviteInput struct {
	PlayerID string
	InviteID string
	Accept   bool
}

// SquadDetail is a squad with its active roster.
type SquadDetail struct {
	Squad        squad.Squad
	Members      []squad.Member
	MemberCount  string
	CaptainAlias string
}

type rosterLockReader interface {
	Status(ctx context.Context) (season.LockStatus, error)
}

type SquadService struct {
	squadRepo   squad.Repository
	profileRepo profile.Repository
	rosterLock  rosterLockReader
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewSquadService(
	squadRepo squad.Repository,
	profileRepo profile.Repository,
	rosterLock rosterLockReader,
	idGen idgen.Generator,
	logger *logging.Logger,
) *SquadService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SquadService{
		squadRepo:   squadRepo,
		profileRepo: profileRepo,
		rosterLock:  rosterLock,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SquadService) CreateSquad(ctx context.Context, input CreateSquadInput) (squad.Squad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.CreateSquad")
	defer span.End()

	input.ActorID = strings.TrimSpace(input.ActorID)
	input.Name = strings.TrimSpace(input.Name)
	input.Tag = squad.NormalizeTag(input.Tag)
	if input.ActorID == "" || input.Name == "" || input.Tag == "" {
		return squad.Squad{}, fmt.Errorf("%w: name and tag are required", ErrInvalidInput)
	}
	if len([]rune(input.Name)) > squad.MaxNameLength {
		return squad.Squad{}, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, squad.MaxNameLength)
	}
	if len([]rune(input.Tag)) > squad.MaxTagLength {
		return squad.Squad{}, fmt.Errorf("%w: tag must be 1-%d characters", ErrInvalidInput, squad.MaxTagLength)
	}

	actor, err := s.requireProfile(ctx, input.ActorID)
	if err != nil {
		return squad.Squad{}, err
	}
	if actor.IsLeagueBanned {
		return squad.Squad{}, fmt.Errorf("%w: banned players cannot create squads", ErrForbidden)
	}

	if _, exists, err := s.squadRepo.FindActiveMembership(ctx, actor.ID); err != nil {
		return squad.Squad{}, fmt.Errorf("find active membership: %w", err)
	} else if exists {
		return squad.Squad{}, squad.ErrAlreadyInActiveSquad
	}

	squadID, err := s.idGen.NewID()
	if err != nil {
		return squad.Squad{}, fmt.Errorf("generate squad id: %w", err)
	}
	memberID, err := s.idGen.NewID()
	if err != nil {
		return squad.Squad{}, fmt.Errorf("generate member id: %w", err)
	}

	now := s.now().UTC()
	item := squad.Squad{
		ID:          squadID,
		Name:        input.Name,
		Tag:         input.Tag,
		Description: strings.TrimSpace(input.Description),
		DiscordLink: strings.TrimSpace(input.DiscordLink),
		WebsiteLink: strings.TrimSpace(input.WebsiteLink),
		BannerURL:   strings.TrimSpace(input.BannerURL),
		CaptainID:   actor.ID,
		IsActive:    true,
		MaxMembers:  squad.DefaultMaxMembers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	captain := squad.Member{
		ID:           memberID,
		SquadID:      squadID,
		PlayerID:     actor.ID,
		PlayerAlias:  actor.InGameAlias,
		Role:         squad.RoleCaptain,
		Status:       squad.MemberStatusActive,
		Transitional: actor.TransitionalPlayer,
		JoinedAt:     now,
	}
	if err := s.squadRepo.CreateWithCaptain(ctx, item, captain); err != nil {
		return squad.Squad{}, fmt.Errorf("create squad: %w", err)
	}

	s.logger.InfoContext(ctx, "squad created", "squad_id", item.ID, "tag", item.Tag, "captain_id", actor.ID)
	return item, nil
}

func (s *SquadService) ListActive(ctx context.Context) ([]squad.Summary, error) {
	items, err := s.squadRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active squads: %w", err)
	}
	return items, nil
}

func (s *SquadService) GetSquad(ctx context.Context, squadID string) (SquadDetail, error) {
	item, err := s.requireSquad(ctx, squadID)
	if err != nil {
		return SquadDetail{}, err
	}

	members, err := s.activeMembers(ctx, item.ID)
	if err != nil {
		return SquadDetail{}, err
	}

	out := SquadDetail{
		Squad:       item,
		Members:     members,
		MemberCount: squad.MemberCountDisplay(item, members),
	}
	if captain, ok := squad.FindMember(members, item.CaptainID); ok {
		out.CaptainAlias = captain.PlayerAlias
	}
	return out, nil
}

// LeaveSquad ends the player's membership. A leaving captain hands the squad
// to the successor picked by squad.Successor.
func (s *SquadService) LeaveSquad(ctx context.Context, playerID, squadID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.LeaveSquad")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	squadID = strings.TrimSpace(squadID)
	if playerID == "" || squadID == "" {
		return fmt.Errorf("%w: squad id is required", ErrInvalidInput)
	}

	members, err := s.activeMembers(ctx, squadID)
	if err != nil {
		return err
	}
	member, ok := squad.FindMember(members, playerID)
	if !ok {
		return fmt.Errorf("%w: not an active member of squad=%s", ErrNotFound, squadID)
	}

	successorID := ""
	if member.Role == squad.RoleCaptain {
		successor, ok := squad.Successor(members, playerID)
		if !ok {
			return squad.ErrCaptainNeedsSuccessor
		}
		successorID = successor.PlayerID
	}

	if err := s.squadRepo.RemoveMember(ctx, squadID, playerID, successorID, s.now().UTC()); err != nil {
		return fmt.Errorf("leave squad: %w", err)
	}

	s.logger.InfoContext(ctx, "player left squad",
		"squad_id", squadID,
		"player_id", playerID,
		"successor_id", successorID,
	)
	return nil
}

func (s *SquadService) TransferCaptain(ctx context.Context, input TransferCaptainInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.TransferCaptain")
	defer span.End()

	input.NewCaptainID = strings.TrimSpace(input.NewCaptainID)
	if input.NewCaptainID == "" {
		return fmt.Errorf("%w: new captain id is required", ErrInvalidInput)
	}

	item, err := s.requireSquad(ctx, input.SquadID)
	if err != nil {
		return err
	}
	actor, err := s.requireProfile(ctx, input.ActorID)
	if err != nil {
		return err
	}
	if !actor.IsCTFAdmin() && item.CaptainID != actor.ID {
		return fmt.Errorf("%w: only the captain or a CTF admin can transfer captaincy", ErrForbidden)
	}

	members, err := s.activeMembers(ctx, item.ID)
	if err != nil {
		return err
	}
	if _, ok := squad.FindMember(members, input.NewCaptainID); !ok {
		return squad.ErrNotMember
	}
	if input.NewCaptainID == item.CaptainID {
		return squad.ErrAlreadyCaptain
	}

	if err := s.squadRepo.TransferCaptain(ctx, item.ID, item.CaptainID, input.NewCaptainID, s.now().UTC()); err != nil {
		return fmt.Errorf("transfer captain: %w", err)
	}

	s.logger.InfoContext(ctx, "squad captain transferred",
		"squad_id", item.ID,
		"from", item.CaptainID,
		"to", input.NewCaptainID,
		"actor_id", actor.ID,
	)
	return nil
}

func (s *SquadService) InvitePlayer(ctx context.Context, input InvitePlayerInput) (squad.Invite, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.InvitePlayer")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.PlayerID == "" {
		return squad.Invite{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, err := s.requireSquad(ctx, input.SquadID)
	if err != nil {
		return squad.Invite{}, err
	}
	if !item.IsActive {
		return squad.Invite{}, squad.ErrSquadInactive
	}
	actor, err := s.requireProfile(ctx, input.ActorID)
	if err != nil {
		return squad.Invite{}, err
	}
	members, err := s.activeMembers(ctx, item.ID)
	if err != nil {
		return squad.Invite{}, err
	}

	override := actor.HasAdminOverride()
	actorMember, isMember := squad.FindMember(members, actor.ID)
	if !override && !actor.IsCTFAdmin() && (!isMember || !actorMember.Role.CanLead()) {
		return squad.Invite{}, fmt.Errorf("%w: only captains and co-captains can invite players", ErrForbidden)
	}
	if !override {
		if err := s.ensureRosterUnlocked(ctx); err != nil {
			return squad.Invite{}, err
		}
	}

	target, err := s.requireProfile(ctx, input.PlayerID)
	if err != nil {
		return squad.Invite{}, err
	}
	if _, ok := squad.FindMember(members, target.ID); ok {
		return squad.Invite{}, squad.ErrAlreadyMember
	}
	capacity := squad.CheckCapacity(item, members, target.TransitionalPlayer, override)
	if !capacity.Allowed {
		return squad.Invite{}, fmt.Errorf("%w: %s", squad.ErrSquadFull, capacity.Reason)
	}

	now := s.now().UTC()
	pending, err := s.squadRepo.ListPendingInvitesForPlayer(ctx, target.ID)
	if err != nil {
		return squad.Invite{}, fmt.Errorf("list pending invites: %w", err)
	}
	for _, inv := range pending {
		if inv.SquadID != item.ID {
			continue
		}
		if !inv.IsExpired(now) {
			return squad.Invite{}, squad.ErrDuplicateInvite
		}
		// A lapsed invite still holds the pending slot until it is closed.
		if err := s.squadRepo.UpdateInviteStatus(ctx, inv.ID, squad.InviteStatusExpired, now); err != nil {
			return squad.Invite{}, fmt.Errorf("expire lapsed invite: %w", err)
		}
	}

	inviteID, err := s.idGen.NewID()
	if err != nil {
		return squad.Invite{}, fmt.Errorf("generate invite id: %w", err)
	}
	invite := squad.Invite{
		ID:              inviteID,
		SquadID:         item.ID,
		InvitedPlayerID: target.ID,
		InvitedBy:       actor.ID,
		Status:          squad.InviteStatusPending,
		ExpiresAt:       now.Add(squad.InviteTTL),
		CreatedAt:       now,
	}
	if err := s.squadRepo.CreateInvite(ctx, invite); err != nil {
		return squad.Invite{}, fmt.Errorf("create invite: %w", err)
	}
	return invite, nil
}

func (s *SquadService) ListPendingInvites(ctx context.Context, playerID string) ([]squad.Invite, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	items, err := s.squadRepo.ListPendingInvitesForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list pending invites: %w", err)
	}
	now := s.now().UTC()
	out := make([]squad.Invite, 0, len(items))
	for _, item := range items {
		if !item.IsExpired(now) {
			out = append(out, item)
		}
	}
	return out, nil
}

// RespondInvite accepts or declines an invite. Accepting joins the squad under
// the one-active-squad and capacity rules inside the membership transaction.
func (s *SquadService) RespondInvite(ctx context.Context, input RespondInviteInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.RespondInvite")
	defer span.End()

	input.InviteID = strings.TrimSpace(input.InviteID)
	if input.InviteID == "" {
		return fmt.Errorf("%w: invite id is required", ErrInvalidInput)
	}

	invite, exists, err := s.squadRepo.GetInvite(ctx, input.InviteID)
	if err != nil {
		return fmt.Errorf("get invite: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: invite=%s", ErrNotFound, input.InviteID)
	}
	if invite.InvitedPlayerID != input.PlayerID {
		return fmt.Errorf("%w: invite belongs to another player", ErrForbidden)
	}
	if invite.Status != squad.InviteStatusPending {
		return fmt.Errorf("%w: status=%s", squad.ErrInviteNotPending, invite.Status)
	}

	now := s.now().UTC()
	if invite.IsExpired(now) {
		if err := s.squadRepo.UpdateInviteStatus(ctx, invite.ID, squad.InviteStatusExpired, now); err != nil {
			s.logger.WarnContext(ctx, "mark invite expired failed", "invite_id", invite.ID, "error", err)
		}
		return squad.ErrInviteExpired
	}

	if !input.Accept {
		if err := s.squadRepo.UpdateInviteStatus(ctx, invite.ID, squad.InviteStatusDeclined, now); err != nil {
			return fmt.Errorf("decline invite: %w", err)
		}
		return nil
	}

	item, err := s.requireSquad(ctx, invite.SquadID)
	if err != nil {
		return err
	}
	if !item.IsActive {
		return squad.ErrSquadInactive
	}
	player, err := s.requireProfile(ctx, input.PlayerID)
	if err != nil {
		return err
	}
	override := player.HasAdminOverride()
	if !override {
		if err := s.ensureRosterUnlocked(ctx); err != nil {
			return err
		}
	}

	memberID, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate member id: %w", err)
	}
	member := squad.Member{
		ID:           memberID,
		SquadID:      item.ID,
		PlayerID:     player.ID,
		PlayerAlias:  player.InGameAlias,
		Role:         squad.RolePlayer,
		Status:       squad.MemberStatusActive,
		Transitional: player.TransitionalPlayer,
		JoinedAt:     now,
	}
	policy := func(current []squad.Member) error {
		if _, ok := squad.FindMember(current, player.ID); ok {
			return squad.ErrAlreadyMember
		}
		capacity := squad.CheckCapacity(item, current, player.TransitionalPlayer, override)
		if !capacity.Allowed {
			return fmt.Errorf("%w: %s", squad.ErrSquadFull, capacity.Reason)
		}
		return nil
	}
	if err := s.squadRepo.AddMember(ctx, member, policy); err != nil {
		return fmt.Errorf("join squad: %w", err)
	}

	if err := s.squadRepo.UpdateInviteStatus(ctx, invite.ID, squad.InviteStatusAccepted, now); err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}

	s.logger.InfoContext(ctx, "player joined squad", "squad_id", item.ID, "player_id", player.ID)
	return nil
}

func (s *SquadService) SetLegacy(ctx context.Context, actorID, squadID string, legacy bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.SetLegacy")
	defer span.End()

	actor, err := s.requireProfile(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.HasAdminOverride() && !actor.IsCTFAdmin() {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	item, err := s.requireSquad(ctx, squadID)
	if err != nil {
		return err
	}
	if item.IsLegacy == legacy {
		return nil
	}

	if err := s.squadRepo.SetLegacy(ctx, item.ID, legacy, s.now().UTC()); err != nil {
		return fmt.Errorf("set squad legacy: %w", err)
	}
	return nil
}

// CheckCapacity previews whether playerID could join; an empty playerID
// checks the actor.
func (s *SquadService) CheckCapacity(ctx context.Context, actorID, squadID, playerID string) (squad.CapacityCheck, error) {
	item, err := s.requireSquad(ctx, squadID)
	if err != nil {
		return squad.CapacityCheck{}, err
	}
	actor, err := s.requireProfile(ctx, actorID)
	if err != nil {
		return squad.CapacityCheck{}, err
	}
	candidate := actor
	if playerID = strings.TrimSpace(playerID); playerID != "" && playerID != actor.ID {
		candidate, err = s.requireProfile(ctx, playerID)
		if err != nil {
			return squad.CapacityCheck{}, err
		}
	}

	members, err := s.activeMembers(ctx, item.ID)
	if err != nil {
		return squad.CapacityCheck{}, err
	}
	return squad.CheckCapacity(item, members, candidate.TransitionalPlayer, actor.HasAdminOverride()), nil
}

func (s *SquadService) ensureRosterUnlocked(ctx context.Context) error {
	if s.rosterLock == nil {
		return nil
	}
	status, err := s.rosterLock.Status(ctx)
	if err != nil {
		return fmt.Errorf("roster lock status: %w", err)
	}
	if status.IsLocked {
		return fmt.Errorf("%w: rosters are locked for %s", ErrConflict, status.LockedLabel)
	}
	return nil
}

func (s *SquadService) requireSquad(ctx context.Context, squadID string) (squad.Squad, error) {
	squadID = strings.TrimSpace(squadID)
	if squadID == "" {
		return squad.Squad{}, fmt.Errorf("%w: squad id is required", ErrInvalidInput)
	}
	item, exists, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return squad.Squad{}, fmt.Errorf("get squad: %w", err)
	}
	if !exists {
		return squad.Squad{}, fmt.Errorf("%w: squad=%s", ErrNotFound, squadID)
	}
	return item, nil
}

func (s *SquadService) requireProfile(ctx context.Context, profileID string) (profile.Profile, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return profile.Profile{}, fmt.Errorf("%w: profile id is required", ErrUnauthorized)
	}
	item, exists, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile=%s", ErrNotFound, profileID)
	}
	return item, nil
}

func (s *SquadService) activeMembers(ctx context.Context, squadID string) ([]squad.Member, error) {
	items, err := s.squadRepo.ListMembers(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("list squad members: %w", err)
	}
	out := make([]squad.Member, 0, len(items))
	for _, m := range items {
		if m.Status == squad.MemberStatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}
