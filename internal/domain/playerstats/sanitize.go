package playerstats

import (
	"math"
	"strings"
)

// Sanitize cleans a row coming from the game server: names lose commas,
// counters are clamped at zero and accuracy is kept within [0,1].
func Sanitize(s GameStat) GameStat {
	s.PlayerName = strings.TrimSpace(strings.ReplaceAll(s.PlayerName, ",", ""))
	if s.PlayerName == "" {
		s.PlayerName = Unknown
	}
	s.Team = orDefault(s.Team, Unknown)
	s.GameMode = orDefault(s.GameMode, Unknown)
	s.ArenaName = orDefault(s.ArenaName, Unknown)
	s.BaseUsed = orDefault(s.BaseUsed, Unknown)
	s.MainClass = orDefault(s.MainClass, Unknown)
	s.Side = NormalizeSide(s.Side)
	s.Result = NormalizeResult(s.Result)

	s.Kills = max(0, s.Kills)
	s.Deaths = max(0, s.Deaths)
	s.Captures = max(0, s.Captures)
	s.CarrierKills = max(0, s.CarrierKills)
	s.CarryTimeSeconds = max(0, s.CarryTimeSeconds)
	s.ClassSwaps = max(0, s.ClassSwaps)
	s.TurretDamage = max(0, s.TurretDamage)
	s.EBHits = max(0, s.EBHits)

	s.Accuracy = math.Min(1, nonNegative(s.Accuracy))
	s.AvgResourceUnusedPerDeath = nonNegative(s.AvgResourceUnusedPerDeath)
	s.AvgExplosiveUnusedPerDeath = nonNegative(s.AvgExplosiveUnusedPerDeath)
	s.GameLengthMinutes = nonNegative(s.GameLengthMinutes)
	return s
}

func orDefault(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
