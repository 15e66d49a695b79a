package squad

import (
	"context"
	"time"
)

// JoinPolicy runs inside the membership transaction with the squad's current
// active roster and may veto the join.
type JoinPolicy func(current []Member) error

type Repository interface {
	ListActive(ctx context.Context) ([]Summary, error)
	GetByID(ctx context.Context, squadID string) (Squad, bool, error)
	ListMembers(ctx context.Context, squadID string) ([]Member, error)
	FindActiveMembership(ctx context.Context, playerID string) (Member, bool, error)

	// CreateWithCaptain inserts the squad and its captain atomically. It fails
	// with ErrNameTaken, ErrTagTaken or ErrAlreadyInActiveSquad.
	CreateWithCaptain(ctx context.Context, s Squad, captain Member) error
	// AddMember joins a player while holding the player's membership lock.
	AddMember(ctx context.Context, member Member, policy JoinPolicy) error
	// RemoveMember marks the membership left and, when successorID is set,
	// promotes that member to captain in the same transaction.
	RemoveMember(ctx context.Context, squadID, playerID, successorID string, at time.Time) error
	TransferCaptain(ctx context.Context, squadID, fromPlayerID, toPlayerID string, at time.Time) error
	// SetLegacy flips the legacy flag. Reactivating fails with ErrLegacyConflict
	// if any active member already holds another active slot.
	SetLegacy(ctx context.Context, squadID string, legacy bool, at time.Time) error

	CreateInvite(ctx context.Context, invite Invite) error
	GetInvite(ctx context.Context, inviteID string) (Invite, bool, error)
	UpdateInviteStatus(ctx context.Context, inviteID string, status InviteStatus, at time.Time) error
	ListPendingInvitesForPlayer(ctx context.Context, playerID string) ([]Invite, error)
}
