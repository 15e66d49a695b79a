package dueling

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type MatchType string

const (
	MatchUnranked  MatchType = "unranked"
	MatchRankedBo3 MatchType = "ranked_bo3"
	MatchRankedBo5 MatchType = "ranked_bo5"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 50
	FullHP           = 100
)

var (
	ErrUnknownMatchType = errors.New("unknown match type")
	ErrMissingPlayers   = errors.New("both players are required")
	ErrInvalidWinner    = errors.New("winner must be one of the match players")
	ErrNotEnoughRounds  = errors.New("winner has not won the majority of rounds")
)

func ParseMatchType(raw string) (MatchType, error) {
	switch t := MatchType(strings.ToLower(strings.TrimSpace(raw))); t {
	case MatchUnranked, MatchRankedBo3, MatchRankedBo5:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMatchType, raw)
	}
}

func (t MatchType) Ranked() bool {
	return t == MatchRankedBo3 || t == MatchRankedBo5
}

// RoundsToWin is the majority of a best-of series; zero for unranked.
func (t MatchType) RoundsToWin() int {
	switch t {
	case MatchRankedBo3:
		return 2
	case MatchRankedBo5:
		return 3
	default:
		return 0
	}
}

type Match struct {
	ID               string
	MatchType        MatchType
	Player1Name      string
	Player2Name      string
	Player1ID        string
	Player2ID        string
	WinnerName       string
	WinnerID         string
	ArenaName        string
	Status           Status
	Player1RoundsWon int
	Player2RoundsWon int
	StartedAt        time.Time
	CompletedAt      *time.Time
	Rounds           []Round
}

type Round struct {
	RoundNumber     int
	WinnerName      string
	LoserName       string
	WinnerHPLeft    int
	LoserHPLeft     int
	DurationSeconds int
	Kills           []Kill
}

type Kill struct {
	RoundNumber    int
	KillerName     string
	VictimName     string
	WeaponUsed     string
	DamageDealt    int
	VictimHPBefore int
	VictimHPAfter  int
	ShotsFired     int
	ShotsHit       int
	IsDoubleHit    bool
	IsTripleHit    bool
}

func (m Match) LoserName() string {
	if strings.EqualFold(m.WinnerName, m.Player1Name) {
		return m.Player2Name
	}
	return m.Player1Name
}

func (m Match) DurationSeconds() int {
	total := 0
	for _, r := range m.Rounds {
		total += r.DurationSeconds
	}
	return total
}

// Normalize fills round numbers, counts rounds won and checks the winner.
func (m Match) Normalize() (Match, error) {
	m.Player1Name = strings.TrimSpace(m.Player1Name)
	m.Player2Name = strings.TrimSpace(m.Player2Name)
	m.WinnerName = strings.TrimSpace(m.WinnerName)
	if m.Player1Name == "" || m.Player2Name == "" {
		return Match{}, ErrMissingPlayers
	}
	if !strings.EqualFold(m.WinnerName, m.Player1Name) && !strings.EqualFold(m.WinnerName, m.Player2Name) {
		return Match{}, fmt.Errorf("%w: %s", ErrInvalidWinner, m.WinnerName)
	}

	m.Player1RoundsWon, m.Player2RoundsWon = 0, 0
	rounds := make([]Round, len(m.Rounds))
	for i, r := range m.Rounds {
		if r.RoundNumber <= 0 {
			r.RoundNumber = i + 1
		}
		kills := make([]Kill, len(r.Kills))
		for j, k := range r.Kills {
			k.RoundNumber = r.RoundNumber
			if k.VictimHPBefore == 0 {
				k.VictimHPBefore = FullHP
			}
			kills[j] = k
		}
		r.Kills = kills
		rounds[i] = r

		switch {
		case strings.EqualFold(r.WinnerName, m.Player1Name):
			m.Player1RoundsWon++
		case strings.EqualFold(r.WinnerName, m.Player2Name):
			m.Player2RoundsWon++
		}
	}
	m.Rounds = rounds

	if need := m.MatchType.RoundsToWin(); need > 0 {
		won := m.Player1RoundsWon
		if strings.EqualFold(m.WinnerName, m.Player2Name) {
			won = m.Player2RoundsWon
		}
		if won < need {
			return Match{}, fmt.Errorf("%w: %d of %d", ErrNotEnoughRounds, won, need)
		}
	}
	return m, nil
}

type ListQuery struct {
	Limit      int
	Offset     int
	MatchType  string
	PlayerName string
	Status     string
}

func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.MatchType == "all" {
		q.MatchType = ""
	}
	switch q.Status {
	case "":
		q.Status = string(StatusCompleted)
	case "all":
		q.Status = ""
	}
	q.PlayerName = strings.TrimSpace(q.PlayerName)
	return q
}
