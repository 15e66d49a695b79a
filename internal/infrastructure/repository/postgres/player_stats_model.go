package postgres

import (
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
)

const playerStatColumns = `id, game_id, player_name, team, game_mode, arena_name, base_used, side, result, main_class,
    kills, deaths, captures, carrier_kills, carry_time_seconds, class_swaps, turret_damage, eb_hits, accuracy,
    avg_resource_unused_per_death, avg_explosive_unused_per_death, game_length_minutes, left_early, season, game_date`

type playerStatInsertModel struct {
	GameID                     string    `db:"game_id"`
	PlayerName                 string    `db:"player_name"`
	Team                       string    `db:"team"`
	GameMode                   string    `db:"game_mode"`
	ArenaName                  string    `db:"arena_name"`
	BaseUsed                   string    `db:"base_used"`
	Side                       string    `db:"side"`
	Result                     string    `db:"result"`
	MainClass                  string    `db:"main_class"`
	Kills                      int       `db:"kills"`
	Deaths                     int       `db:"deaths"`
	Captures                   int       `db:"captures"`
	CarrierKills               int       `db:"carrier_kills"`
	CarryTimeSeconds           int       `db:"carry_time_seconds"`
	ClassSwaps                 int       `db:"class_swaps"`
	TurretDamage               int       `db:"turret_damage"`
	EBHits                     int       `db:"eb_hits"`
	Accuracy                   float64   `db:"accuracy"`
	AvgResourceUnusedPerDeath  float64   `db:"avg_resource_unused_per_death"`
	AvgExplosiveUnusedPerDeath float64   `db:"avg_explosive_unused_per_death"`
	GameLengthMinutes          float64   `db:"game_length_minutes"`
	LeftEarly                  bool      `db:"left_early"`
	Season                     string    `db:"season"`
	GameDate                   time.Time `db:"game_date"`
}

type playerStatTableModel struct {
	ID int64 `db:"id"`
	playerStatInsertModel
}

type playerAggregateModel struct {
	PlayerName       string     `db:"player_name"`
	TotalGames       int        `db:"total_games"`
	Wins             int        `db:"wins"`
	Losses           int        `db:"losses"`
	Kills            int        `db:"kills"`
	Deaths           int        `db:"deaths"`
	Captures         int        `db:"captures"`
	CarrierKills     int        `db:"carrier_kills"`
	CarryTimeSeconds int        `db:"carry_time_seconds"`
	AvgAccuracy      float64    `db:"avg_accuracy"`
	LastGameAt       *time.Time `db:"last_game_date"`
}

func newPlayerStatInsertModel(s playerstats.GameStat) playerStatInsertModel {
	return playerStatInsertModel{
		GameID:                     s.GameID,
		PlayerName:                 s.PlayerName,
		Team:                       s.Team,
		GameMode:                   s.GameMode,
		ArenaName:                  s.ArenaName,
		BaseUsed:                   s.BaseUsed,
		Side:                       s.Side,
		Result:                     s.Result,
		MainClass:                  s.MainClass,
		Kills:                      s.Kills,
		Deaths:                     s.Deaths,
		Captures:                   s.Captures,
		CarrierKills:               s.CarrierKills,
		CarryTimeSeconds:           s.CarryTimeSeconds,
		ClassSwaps:                 s.ClassSwaps,
		TurretDamage:               s.TurretDamage,
		EBHits:                     s.EBHits,
		Accuracy:                   s.Accuracy,
		AvgResourceUnusedPerDeath:  s.AvgResourceUnusedPerDeath,
		AvgExplosiveUnusedPerDeath: s.AvgExplosiveUnusedPerDeath,
		GameLengthMinutes:          s.GameLengthMinutes,
		LeftEarly:                  s.LeftEarly,
		Season:                     s.Season,
		GameDate:                   s.GameDate.UTC(),
	}
}

func (m playerStatTableModel) toDomain() playerstats.GameStat {
	return playerstats.GameStat{
		ID:                         m.ID,
		GameID:                     m.GameID,
		PlayerName:                 m.PlayerName,
		Team:                       m.Team,
		GameMode:                   m.GameMode,
		ArenaName:                  m.ArenaName,
		BaseUsed:                   m.BaseUsed,
		Side:                       m.Side,
		Result:                     m.Result,
		MainClass:                  m.MainClass,
		Kills:                      m.Kills,
		Deaths:                     m.Deaths,
		Captures:                   m.Captures,
		CarrierKills:               m.CarrierKills,
		CarryTimeSeconds:           m.CarryTimeSeconds,
		ClassSwaps:                 m.ClassSwaps,
		TurretDamage:               m.TurretDamage,
		EBHits:                     m.EBHits,
		Accuracy:                   m.Accuracy,
		AvgResourceUnusedPerDeath:  m.AvgResourceUnusedPerDeath,
		AvgExplosiveUnusedPerDeath: m.AvgExplosiveUnusedPerDeath,
		GameLengthMinutes:          m.GameLengthMinutes,
		LeftEarly:                  m.LeftEarly,
		Season:                     m.Season,
		GameDate:                   m.GameDate.UTC(),
	}
}

func (m playerAggregateModel) toDomain() playerstats.Aggregate {
	out := playerstats.Aggregate{
		PlayerName:       m.PlayerName,
		TotalGames:       m.TotalGames,
		Wins:             m.Wins,
		Losses:           m.Losses,
		Kills:            m.Kills,
		Deaths:           m.Deaths,
		Captures:         m.Captures,
		CarrierKills:     m.CarrierKills,
		CarryTimeSeconds: m.CarryTimeSeconds,
		AvgAccuracy:      m.AvgAccuracy,
	}
	if m.LastGameAt != nil {
		out.LastGameAt = m.LastGameAt.UTC()
	}
	return out
}
