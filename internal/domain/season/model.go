package season

import (
	"fmt"
	"strings"
)

const LeagueCTFPL = "ctfpl"

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Season struct {
	ID         string
	League     string
	LeagueName string
	Number     int
	Name       string
	Status     Status
}

type RosterLock struct {
	SeasonID string
	IsLocked bool
	Reason   string
}

// LockStatus is what squad pages and invite checks see.
type LockStatus struct {
	IsLocked       bool
	Reason         string
	SeasonID       string
	LockedLabel    string
	SeasonNumber   int
	SeasonName     string
	NoActiveSeason bool
}

// Label renders "CTFPL Season 3 (Summer)" or "CTFDL Season 5".
func (s Season) Label() string {
	prefix := "CTFPL"
	if !strings.EqualFold(s.League, LeagueCTFPL) {
		prefix = strings.TrimSpace(s.LeagueName)
		if prefix == "" {
			prefix = "League"
		}
	}
	if s.Number <= 0 {
		return prefix
	}
	label := fmt.Sprintf("%s Season %d", prefix, s.Number)
	if name := strings.TrimSpace(s.Name); name != "" {
		label += " (" + name + ")"
	}
	return label
}

// NoActiveSeasonStatus is returned when neither league has an active season.
func NoActiveSeasonStatus() LockStatus {
	return LockStatus{LockedLabel: "No active season", NoActiveSeason: true}
}

// ResolveLockStatus combines a season and its current lock row, if any.
func ResolveLockStatus(s Season, lock RosterLock, hasLock bool) LockStatus {
	out := LockStatus{
		LockedLabel:  s.Label(),
		SeasonNumber: s.Number,
		SeasonName:   s.Name,
	}
	if hasLock {
		out.IsLocked = lock.IsLocked
		out.Reason = lock.Reason
		out.SeasonID = lock.SeasonID
	}
	return out
}
