package tournament

import (
	"errors"
	"time"
)

const (
	TypeSingleElimination  = "single_elimination"
	DefaultMaxParticipants = 16
	DefaultListLimit       = 20
)

type Status string

const (
	StatusRegistration Status = "registration"
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(raw); s {
	case StatusRegistration, StatusInProgress, StatusCompleted, StatusCancelled:
		return s, true
	default:
		return "", false
	}
}

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchReady     MatchStatus = "ready"
	MatchCompleted MatchStatus = "completed"
	MatchBye       MatchStatus = "bye"
)

var (
	ErrNotAcceptingRegistrations = errors.New("Tournament is not accepting registrations")
	ErrFull                      = errors.New("Tournament is full")
	ErrAlreadyRegistered         = errors.New("Already registered for this tournament")
	ErrNotEnoughParticipants     = errors.New("at least two participants are required")
	ErrBracketExists             = errors.New("bracket already generated")
	ErrMatchNotFound             = errors.New("bracket match not found")
	ErrMatchNotReady             = errors.New("match is not ready to be reported")
	ErrInvalidWinner             = errors.New("winner must be one of the match players")
	ErrInvalidStatus             = errors.New("invalid tournament status")
	ErrNegativeAmount            = errors.New("amounts must be non-negative cents")
)

type Tournament struct {
	ID                   string
	Name                 string
	Description          string
	Type                 string
	MaxParticipants      int
	EntryFeeCents        int64
	PrizePoolCents       int64
	Status               Status
	RegistrationDeadline *time.Time
	StartTime            *time.Time
	EndTime              *time.Time
	CreatedBy            string
	WinnerID             string
	RunnerUpID           string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Participants []Participant
	Matches      []BracketMatch
}

// ApplyDefaults fills the creation defaults.
func (t Tournament) ApplyDefaults() Tournament {
	if t.Type == "" {
		t.Type = TypeSingleElimination
	}
	if t.MaxParticipants <= 0 {
		t.MaxParticipants = DefaultMaxParticipants
	}
	t.Status = StatusRegistration
	return t
}

func (t Tournament) Validate() error {
	if t.EntryFeeCents < 0 || t.PrizePoolCents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// CanRegister checks status, deadline and capacity for one more player.
func (t Tournament) CanRegister(currentCount int, now time.Time) error {
	if t.Status != StatusRegistration {
		return ErrNotAcceptingRegistrations
	}
	if t.RegistrationDeadline != nil && now.After(*t.RegistrationDeadline) {
		return ErrNotAcceptingRegistrations
	}
	if currentCount >= t.MaxParticipants {
		return ErrFull
	}
	return nil
}

type Participant struct {
	TournamentID string
	PlayerID     string
	PlayerAlias  string
	SeedPosition int
	RegisteredAt time.Time
}

type BracketMatch struct {
	ID           string
	TournamentID string
	Round        int
	Position     int
	Player1ID    string
	Player1Alias string
	Player2ID    string
	Player2Alias string
	WinnerID     string
	WinnerAlias  string
	LoserID      string
	LoserAlias   string
	DuelID       string
	Status       MatchStatus
	CompletedAt  *time.Time
}

func (m BracketMatch) HasPlayer(playerID string) bool {
	return playerID != "" && (m.Player1ID == playerID || m.Player2ID == playerID)
}

type ListQuery struct {
	Status              string
	Limit               int
	IncludeParticipants bool
}
