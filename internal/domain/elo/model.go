package elo

import (
	"strings"
	"time"
)

const (
	BaseRating  = 1200.0
	FloorRating = 100.0
	KMin        = 16.0
	KMax        = 48.0

	// ConfidenceGames is how many games it takes to reach full confidence.
	ConfidenceGames = 30.0

	ModeCombined = "Combined"
	ModeDueling  = "Dueling"
	ModeOvD      = "OvD"
)

type Rating struct {
	PlayerName  string
	PlayerID    string
	GameMode    string
	Season      string
	Rating      float64
	Peak        float64
	Confidence  float64
	GamesPlayed int
	Wins        int
	Losses      int
	LastGameAt  time.Time
}

// NewRating is the starting point for a player without history.
func NewRating(playerName, gameMode, season string) Rating {
	return Rating{
		PlayerName: playerName,
		GameMode:   gameMode,
		Season:     season,
		Rating:     BaseRating,
		Peak:       BaseRating,
	}
}

// Weighted pulls low-confidence ratings toward the base.
func (r Rating) Weighted() float64 {
	return Weighted(r.Rating, r.Confidence)
}

func (r Rating) WinRate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.GamesPlayed)
}

func Weighted(rating, confidence float64) float64 {
	return rating*confidence + BaseRating*(1-confidence)
}

func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "High"
	case confidence >= 0.5:
		return "Medium"
	default:
		return "Low"
	}
}

// PlayerKey identifies a player within one ledger regardless of alias casing.
func PlayerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type Outcome string

const (
	OutcomeWin  Outcome = "Win"
	OutcomeLoss Outcome = "Loss"
	OutcomeDraw Outcome = "Draw"
)

func ParseOutcome(raw string) Outcome {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "win", "w", "won":
		return OutcomeWin
	case "loss", "lose", "l", "lost":
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}

func (o Outcome) Score() float64 {
	switch o {
	case OutcomeWin:
		return 1
	case OutcomeLoss:
		return 0
	default:
		return 0.5
	}
}

// GameResult is one rated game as seen by the rating engine.
type GameResult struct {
	GameID       string
	GameMode     string
	PlayedAt     time.Time
	Participants []Participant
}

type Participant struct {
	PlayerName string
	PlayerID   string
	Team       string
	Outcome    Outcome
}
