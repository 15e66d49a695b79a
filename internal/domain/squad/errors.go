package squad

import "errors"

var (
	ErrNameTaken             = errors.New("Squad name already taken")
	ErrTagTaken              = errors.New("Squad tag already taken")
	ErrAlreadyInActiveSquad  = errors.New("You are already a member of an active squad. You can be in legacy squads and one active squad.")
	ErrAlreadyMember         = errors.New("player is already a member of this squad")
	ErrNotMember             = errors.New("player is not an active member of this squad")
	ErrSquadFull             = errors.New("squad is at capacity")
	ErrCaptainNeedsSuccessor = errors.New("Captains cannot leave squad without appointing a successor")
	ErrAlreadyCaptain        = errors.New("player is already the captain")
	ErrInviteNotPending      = errors.New("invite is no longer pending")
	ErrInviteExpired         = errors.New("invite has expired")
	ErrDuplicateInvite       = errors.New("player already has a pending invite to this squad")
	ErrLegacyConflict        = errors.New("a member already belongs to another active squad")
	ErrSquadInactive         = errors.New("squad is not accepting members")
)
