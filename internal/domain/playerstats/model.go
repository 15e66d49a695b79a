package playerstats

import (
	"strings"
	"time"
)

const (
	SideOffense = "offense"
	SideDefense = "defense"
	SideNA      = "N/A"

	ResultWin  = "Win"
	ResultLoss = "Loss"

	ModeOvD = "OvD"

	Unknown = "Unknown"

	// OvDTeamSize is the roster of one OvD team per side.
	OvDTeamSize = 5
)

// GameStat is one player's line in one game.
type GameStat struct {
	ID                         int64
	GameID                     string
	PlayerName                 string
	Team                       string
	GameMode                   string
	ArenaName                  string
	BaseUsed                   string
	Side                       string
	Result                     string
	MainClass                  string
	Kills                      int
	Deaths                     int
	Captures                   int
	CarrierKills               int
	CarryTimeSeconds           int
	ClassSwaps                 int
	TurretDamage               int
	EBHits                     int
	Accuracy                   float64
	AvgResourceUnusedPerDeath  float64
	AvgExplosiveUnusedPerDeath float64
	GameLengthMinutes          float64
	LeftEarly                  bool
	Season                     string
	GameDate                   time.Time
}

// Aggregate is a player's lifetime totals.
type Aggregate struct {
	PlayerName       string
	TotalGames       int
	Wins             int
	Losses           int
	Kills            int
	Deaths           int
	Captures         int
	CarrierKills     int
	CarryTimeSeconds int
	AvgAccuracy      float64
	LastGameAt       time.Time
}

func (a Aggregate) KillDeathRatio() float64 {
	if a.Deaths == 0 {
		return float64(a.Kills)
	}
	return float64(a.Kills) / float64(a.Deaths)
}

func (a Aggregate) WinRate() float64 {
	if a.TotalGames == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.TotalGames)
}

// GameSummary groups one game's rows for the recent games feed.
type GameSummary struct {
	GameID    string
	GameDate  time.Time
	GameMode  string
	ArenaName string
	Players   []GameStat
}

func NormalizeSide(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case SideOffense:
		return SideOffense
	case SideDefense:
		return SideDefense
	default:
		return SideNA
	}
}

func NormalizeResult(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), ResultWin) {
		return ResultWin
	}
	return ResultLoss
}
