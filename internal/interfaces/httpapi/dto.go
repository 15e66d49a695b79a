package httpapi

import (
	"math"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

type messageDTO struct {
	Message string `json:"message"`
}

type paginationDTO struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

func newPagination(total, limit, offset int) paginationDTO {
	return paginationDTO{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type squadDTO struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Tag                string    `json:"tag"`
	Description        string    `json:"description,omitempty"`
	DiscordLink        string    `json:"discord_link,omitempty"`
	WebsiteLink        string    `json:"website_link,omitempty"`
	BannerURL          string    `json:"banner_url,omitempty"`
	CaptainID          string    `json:"captain_id"`
	IsActive           bool      `json:"is_active"`
	IsLegacy           bool      `json:"is_legacy"`
	TournamentEligible bool      `json:"tournament_eligible"`
	MaxMembers         int       `json:"max_members"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func squadToDTO(s squad.Squad) squadDTO {
	return squadDTO{
		ID:                 s.ID,
		Name:               s.Name,
		Tag:                s.Tag,
		Description:        s.Description,
		DiscordLink:        s.DiscordLink,
		WebsiteLink:        s.WebsiteLink,
		BannerURL:          s.BannerURL,
		CaptainID:          s.CaptainID,
		IsActive:           s.IsActive,
		IsLegacy:           s.IsLegacy,
		TournamentEligible: s.TournamentEligible,
		MaxMembers:         s.EffectiveMaxMembers(),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

type squadSummaryDTO struct {
	squadDTO
	MemberCount  int    `json:"member_count"`
	CaptainAlias string `json:"captain_alias,omitempty"`
}

func squadSummaryToDTO(s squad.Summary) squadSummaryDTO {
	return squadSummaryDTO{
		squadDTO:     squadToDTO(s.Squad),
		MemberCount:  s.MemberCount,
		CaptainAlias: s.CaptainAlias,
	}
}

type squadMemberDTO struct {
	PlayerID     string    `json:"player_id"`
	PlayerAlias  string    `json:"player_alias"`
	Role         string    `json:"role"`
	Transitional bool      `json:"transitional"`
	JoinedAt     time.Time `json:"joined_at"`
}

type squadDetailDTO struct {
	squadDTO
	Members      []squadMemberDTO `json:"members"`
	MemberCount  string           `json:"member_count"`
	CaptainAlias string           `json:"captain_alias,omitempty"`
}

func squadDetailToDTO(d usecase.SquadDetail) squadDetailDTO {
	members := make([]squadMemberDTO, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, squadMemberDTO{
			PlayerID:     m.PlayerID,
			PlayerAlias:  m.PlayerAlias,
			Role:         string(m.Role),
			Transitional: m.Transitional,
			JoinedAt:     m.JoinedAt,
		})
	}
	return squadDetailDTO{
		squadDTO:     squadToDTO(d.Squad),
		Members:      members,
		MemberCount:  d.MemberCount,
		CaptainAlias: d.CaptainAlias,
	}
}

type inviteDTO struct {
	ID              string     `json:"id"`
	SquadID         string     `json:"squad_id"`
	InvitedPlayerID string     `json:"invited_player_id"`
	InvitedBy       string     `json:"invited_by"`
	Status          string     `json:"status"`
	ExpiresAt       time.Time  `json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
}

func inviteToDTO(i squad.Invite) inviteDTO {
	return inviteDTO{
		ID:              i.ID,
		SquadID:         i.SquadID,
		InvitedPlayerID: i.InvitedPlayerID,
		InvitedBy:       i.InvitedBy,
		Status:          string(i.Status),
		ExpiresAt:       i.ExpiresAt,
		CreatedAt:       i.CreatedAt,
		RespondedAt:     i.RespondedAt,
	}
}

type capacityDTO struct {
	Allowed           bool   `json:"allowed"`
	Reason            string `json:"reason,omitempty"`
	RegularCount      int    `json:"regular_count"`
	TransitionalCount int    `json:"transitional_count"`
	MaxMembers        int    `json:"max_members"`
}

type rosterLockDTO struct {
	IsLocked       bool   `json:"is_locked"`
	Reason         string `json:"reason,omitempty"`
	SeasonID       string `json:"season_id,omitempty"`
	Label          string `json:"locked_label,omitempty"`
	SeasonNumber   int    `json:"season_number,omitempty"`
	SeasonName     string `json:"season_name,omitempty"`
	NoActiveSeason bool   `json:"no_active_season"`
}

type eloTierDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type eloRowDTO struct {
	DisplayRank     int        `json:"display_rank"`
	PlayerName      string     `json:"player_name"`
	PlayerID        string     `json:"player_id,omitempty"`
	GameMode        string     `json:"game_mode"`
	Season          string     `json:"season"`
	EloRating       int        `json:"elo_rating"`
	WeightedElo     int        `json:"weighted_elo"`
	EloPeak         int        `json:"elo_peak"`
	EloConfidence   float64    `json:"elo_confidence"`
	ConfidenceLabel string     `json:"confidence_label"`
	TotalGames      int        `json:"total_games"`
	Wins            int        `json:"wins"`
	Losses          int        `json:"losses"`
	WinRate         float64    `json:"win_rate"`
	LastGameAt      *time.Time `json:"last_game_date,omitempty"`
	EloTier         eloTierDTO `json:"elo_tier"`
}

func eloRatingToDTO(r elo.Rating, rank int) eloRowDTO {
	weighted := int(math.Round(r.Weighted()))
	tier := elo.TierFor(weighted)
	return eloRowDTO{
		DisplayRank:     rank,
		PlayerName:      r.PlayerName,
		PlayerID:        r.PlayerID,
		GameMode:        r.GameMode,
		Season:          r.Season,
		EloRating:       int(math.Round(r.Rating)),
		WeightedElo:     weighted,
		EloPeak:         int(math.Round(r.Peak)),
		EloConfidence:   round3(r.Confidence),
		ConfidenceLabel: elo.ConfidenceLabel(r.Confidence),
		TotalGames:      r.GamesPlayed,
		Wins:            r.Wins,
		Losses:          r.Losses,
		WinRate:         round3(r.WinRate()),
		LastGameAt:      timePtr(r.LastGameAt),
		EloTier:         eloTierDTO{Name: tier.Name, Color: tier.Color},
	}
}

type eloFiltersDTO struct {
	Season             string   `json:"season"`
	GameMode           string   `json:"gameMode"`
	SortBy             string   `json:"sortBy"`
	SortOrder          string   `json:"sortOrder"`
	MinGames           int      `json:"minGames"`
	PlayerName         string   `json:"playerName,omitempty"`
	AvailableGameModes []string `json:"availableGameModes"`
}

type eloLeaderboardDTO struct {
	Items      []eloRowDTO   `json:"items"`
	Pagination paginationDTO `json:"pagination"`
	Filters    eloFiltersDTO `json:"filters"`
}

func eloLeaderboardToDTO(result usecase.LeaderboardResult) eloLeaderboardDTO {
	q := result.Query
	items := make([]eloRowDTO, 0, len(result.Page.Ratings))
	for i, r := range result.Page.Ratings {
		items = append(items, eloRatingToDTO(r, q.Offset+i+1))
	}
	order := "desc"
	if q.Ascending {
		order = "asc"
	}
	modes := result.AvailableModes
	if modes == nil {
		modes = []string{}
	}
	return eloLeaderboardDTO{
		Items:      items,
		Pagination: newPagination(result.Page.Total, q.Limit, q.Offset),
		Filters: eloFiltersDTO{
			Season:             q.Season,
			GameMode:           q.GameMode,
			SortBy:             q.SortBy,
			SortOrder:          order,
			MinGames:           q.MinGames,
			PlayerName:         q.PlayerName,
			AvailableGameModes: modes,
		},
	}
}

type aggregateDTO struct {
	DisplayRank      int        `json:"display_rank,omitempty"`
	PlayerName       string     `json:"player_name"`
	TotalGames       int        `json:"total_games"`
	Wins             int        `json:"wins"`
	Losses           int        `json:"losses"`
	WinRate          float64    `json:"win_rate"`
	Kills            int        `json:"total_kills"`
	Deaths           int        `json:"total_deaths"`
	KillDeathRatio   float64    `json:"kill_death_ratio"`
	Captures         int        `json:"total_captures"`
	CarrierKills     int        `json:"total_carrier_kills"`
	CarryTimeSeconds int        `json:"total_carry_time_seconds"`
	AvgAccuracy      float64    `json:"avg_accuracy"`
	LastGameAt       *time.Time `json:"last_game_date,omitempty"`
}

func aggregateToDTO(a playerstats.Aggregate) aggregateDTO {
	return aggregateDTO{
		PlayerName:       a.PlayerName,
		TotalGames:       a.TotalGames,
		Wins:             a.Wins,
		Losses:           a.Losses,
		WinRate:          round3(a.WinRate()),
		Kills:            a.Kills,
		Deaths:           a.Deaths,
		KillDeathRatio:   round3(a.KillDeathRatio()),
		Captures:         a.Captures,
		CarrierKills:     a.CarrierKills,
		CarryTimeSeconds: a.CarryTimeSeconds,
		AvgAccuracy:      round3(a.AvgAccuracy),
		LastGameAt:       timePtr(a.LastGameAt),
	}
}

type statsLeaderboardDTO struct {
	Items      []aggregateDTO `json:"items"`
	Pagination paginationDTO  `json:"pagination"`
}

type gameStatDTO struct {
	GameID                     string    `json:"game_id"`
	GameDate                   time.Time `json:"game_date"`
	PlayerName                 string    `json:"player_name"`
	Team                       string    `json:"team"`
	GameMode                   string    `json:"game_mode"`
	ArenaName                  string    `json:"arena_name"`
	BaseUsed                   string    `json:"base_used"`
	Side                       string    `json:"side"`
	Result                     string    `json:"result"`
	MainClass                  string    `json:"main_class"`
	Kills                      int       `json:"kills"`
	Deaths                     int       `json:"deaths"`
	Captures                   int       `json:"captures"`
	CarrierKills               int       `json:"carrier_kills"`
	CarryTimeSeconds           int       `json:"carry_time_seconds"`
	ClassSwaps                 int       `json:"class_swaps"`
	TurretDamage               int       `json:"turret_damage"`
	EBHits                     int       `json:"eb_hits"`
	Accuracy                   float64   `json:"accuracy"`
	AvgResourceUnusedPerDeath  float64   `json:"avg_resource_unused_per_death"`
	AvgExplosiveUnusedPerDeath float64   `json:"avg_explosive_unused_per_death"`
	GameLengthMinutes          float64   `json:"game_length_minutes"`
	LeftEarly                  bool      `json:"left_early"`
	Season                     string    `json:"season,omitempty"`
}

func gameStatToDTO(s playerstats.GameStat) gameStatDTO {
	return gameStatDTO{
		GameID:                     s.GameID,
		GameDate:                   s.GameDate,
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
	}
}

type gameSummaryDTO struct {
	GameID      string        `json:"game_id"`
	GameDate    time.Time     `json:"game_date"`
	GameMode    string        `json:"game_mode"`
	ArenaName   string        `json:"arena_name"`
	PlayerCount int           `json:"player_count"`
	Players     []gameStatDTO `json:"players"`
}

func gameSummaryToDTO(g playerstats.GameSummary) gameSummaryDTO {
	players := make([]gameStatDTO, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, gameStatToDTO(p))
	}
	return gameSummaryDTO{
		GameID:      g.GameID,
		GameDate:    g.GameDate,
		GameMode:    g.GameMode,
		ArenaName:   g.ArenaName,
		PlayerCount: len(players),
		Players:     players,
	}
}

type profileDTO struct {
	ID                 string    `json:"id"`
	InGameAlias        string    `json:"in_game_alias"`
	AvatarURL          string    `json:"avatar_url,omitempty"`
	CTFRole            string    `json:"ctf_role,omitempty"`
	RegistrationStatus string    `json:"registration_status,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type playerProfileDTO struct {
	PlayerName   string        `json:"player_name"`
	IsRegistered bool          `json:"is_registered"`
	Profile      *profileDTO   `json:"profile,omitempty"`
	Aliases      []string      `json:"aliases"`
	Squad        *squadDTO     `json:"squad,omitempty"`
	Rating       *eloRowDTO    `json:"elo,omitempty"`
	Stats        *aggregateDTO `json:"stats,omitempty"`
}

func playerProfileToDTO(p usecase.PlayerProfile) playerProfileDTO {
	out := playerProfileDTO{
		PlayerName:   p.PlayerName,
		IsRegistered: p.IsRegistered,
		Aliases:      make([]string, 0, len(p.Aliases)),
	}
	for _, a := range p.Aliases {
		out.Aliases = append(out.Aliases, a.Alias)
	}
	if p.Profile != nil {
		out.Profile = profileToDTO(*p.Profile)
	}
	if p.Squad != nil {
		s := squadToDTO(*p.Squad)
		out.Squad = &s
	}
	if p.Rating != nil {
		row := eloRatingToDTO(*p.Rating, 0)
		out.Rating = &row
	}
	if p.Stats != nil {
		a := aggregateToDTO(*p.Stats)
		out.Stats = &a
	}
	return out
}

// profileToDTO omits the email and permission flags.
func profileToDTO(p profile.Profile) *profileDTO {
	return &profileDTO{
		ID:                 p.ID,
		InGameAlias:        p.InGameAlias,
		AvatarURL:          p.AvatarURL,
		CTFRole:            p.CTFRole,
		RegistrationStatus: p.RegistrationStatus,
		CreatedAt:          p.CreatedAt,
	}
}

type duelKillDTO struct {
	KillerName     string `json:"killer_name"`
	VictimName     string `json:"victim_name"`
	WeaponUsed     string `json:"weapon_used,omitempty"`
	DamageDealt    int    `json:"damage_dealt"`
	VictimHPBefore int    `json:"victim_hp_before"`
	VictimHPAfter  int    `json:"victim_hp_after"`
	ShotsFired     int    `json:"shots_fired"`
	ShotsHit       int    `json:"shots_hit"`
	IsDoubleHit    bool   `json:"is_double_hit"`
	IsTripleHit    bool   `json:"is_triple_hit"`
}

type duelRoundDTO struct {
	RoundNumber     int           `json:"round_number"`
	WinnerName      string        `json:"winner_name"`
	LoserName       string        `json:"loser_name"`
	WinnerHPLeft    int           `json:"winner_hp_left"`
	LoserHPLeft     int           `json:"loser_hp_left"`
	DurationSeconds int           `json:"duration_seconds"`
	Kills           []duelKillDTO `json:"kills,omitempty"`
}

type duelMatchDTO struct {
	ID               string         `json:"id"`
	MatchType        string         `json:"match_type"`
	Player1Name      string         `json:"player1_name"`
	Player2Name      string         `json:"player2_name"`
	Player1ID        string         `json:"player1_id,omitempty"`
	Player2ID        string         `json:"player2_id,omitempty"`
	WinnerName       string         `json:"winner_name"`
	WinnerID         string         `json:"winner_id,omitempty"`
	ArenaName        string         `json:"arena_name,omitempty"`
	Status           string         `json:"status"`
	Player1RoundsWon int            `json:"player1_rounds_won"`
	Player2RoundsWon int            `json:"player2_rounds_won"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	Rounds           []duelRoundDTO `json:"rounds,omitempty"`
}

func duelMatchToDTO(m dueling.Match) duelMatchDTO {
	rounds := make([]duelRoundDTO, 0, len(m.Rounds))
	for _, r := range m.Rounds {
		kills := make([]duelKillDTO, 0, len(r.Kills))
		for _, k := range r.Kills {
			kills = append(kills, duelKillDTO{
				KillerName:     k.KillerName,
				VictimName:     k.VictimName,
				WeaponUsed:     k.WeaponUsed,
				DamageDealt:    k.DamageDealt,
				VictimHPBefore: k.VictimHPBefore,
				VictimHPAfter:  k.VictimHPAfter,
				ShotsFired:     k.ShotsFired,
				ShotsHit:       k.ShotsHit,
				IsDoubleHit:    k.IsDoubleHit,
				IsTripleHit:    k.IsTripleHit,
			})
		}
		rounds = append(rounds, duelRoundDTO{
			RoundNumber:     r.RoundNumber,
			WinnerName:      r.WinnerName,
			LoserName:       r.LoserName,
			WinnerHPLeft:    r.WinnerHPLeft,
			LoserHPLeft:     r.LoserHPLeft,
			DurationSeconds: r.DurationSeconds,
			Kills:           kills,
		})
	}
	return duelMatchDTO{
		ID:               m.ID,
		MatchType:        string(m.MatchType),
		Player1Name:      m.Player1Name,
		Player2Name:      m.Player2Name,
		Player1ID:        m.Player1ID,
		Player2ID:        m.Player2ID,
		WinnerName:       m.WinnerName,
		WinnerID:         m.WinnerID,
		ArenaName:        m.ArenaName,
		Status:           string(m.Status),
		Player1RoundsWon: m.Player1RoundsWon,
		Player2RoundsWon: m.Player2RoundsWon,
		StartedAt:        m.StartedAt,
		CompletedAt:      m.CompletedAt,
		Rounds:           rounds,
	}
}

type participantDTO struct {
	PlayerID     string    `json:"player_id"`
	PlayerAlias  string    `json:"player_alias"`
	SeedPosition int       `json:"seed_position,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

func participantToDTO(p tournament.Participant) participantDTO {
	return participantDTO{
		PlayerID:     p.PlayerID,
		PlayerAlias:  p.PlayerAlias,
		SeedPosition: p.SeedPosition,
		RegisteredAt: p.RegisteredAt,
	}
}

type bracketMatchDTO struct {
	ID           string     `json:"id"`
	Round        int        `json:"round"`
	Position     int        `json:"position"`
	Player1ID    string     `json:"player1_id,omitempty"`
	Player1Alias string     `json:"player1_alias,omitempty"`
	Player2ID    string     `json:"player2_id,omitempty"`
	Player2Alias string     `json:"player2_alias,omitempty"`
	WinnerID     string     `json:"winner_id,omitempty"`
	WinnerAlias  string     `json:"winner_alias,omitempty"`
	DuelID       string     `json:"duel_id,omitempty"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func bracketMatchToDTO(m tournament.BracketMatch) bracketMatchDTO {
	return bracketMatchDTO{
		ID:           m.ID,
		Round:        m.Round,
		Position:     m.Position,
		Player1ID:    m.Player1ID,
		Player1Alias: m.Player1Alias,
		Player2ID:    m.Player2ID,
		Player2Alias: m.Player2Alias,
		WinnerID:     m.WinnerID,
		WinnerAlias:  m.WinnerAlias,
		DuelID:       m.DuelID,
		Status:       string(m.Status),
		CompletedAt:  m.CompletedAt,
	}
}

func bracketToDTO(matches []tournament.BracketMatch) []bracketMatchDTO {
	out := make([]bracketMatchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, bracketMatchToDTO(m))
	}
	return out
}

type tournamentDTO struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description,omitempty"`
	Type                 string            `json:"tournament_type"`
	MaxParticipants      int               `json:"max_participants"`
	EntryFeeCents        int64             `json:"entry_fee_cents"`
	PrizePoolCents       int64             `json:"prize_pool_cents"`
	Status               string            `json:"status"`
	RegistrationDeadline *time.Time        `json:"registration_deadline,omitempty"`
	StartTime            *time.Time        `json:"start_time,omitempty"`
	EndTime              *time.Time        `json:"end_time,omitempty"`
	CreatedBy            string            `json:"created_by"`
	WinnerID             string            `json:"winner_id,omitempty"`
	RunnerUpID           string            `json:"runner_up_id,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	ParticipantCount     int               `json:"participant_count"`
	Participants         []participantDTO  `json:"participants,omitempty"`
	Matches              []bracketMatchDTO `json:"matches,omitempty"`
}

func tournamentToDTO(t tournament.Tournament) tournamentDTO {
	out := tournamentDTO{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		Type:                 t.Type,
		MaxParticipants:      t.MaxParticipants,
		EntryFeeCents:        t.EntryFeeCents,
		PrizePoolCents:       t.PrizePoolCents,
		Status:               string(t.Status),
		RegistrationDeadline: t.RegistrationDeadline,
		StartTime:            t.StartTime,
		EndTime:              t.EndTime,
		CreatedBy:            t.CreatedBy,
		WinnerID:             t.WinnerID,
		RunnerUpID:           t.RunnerUpID,
		CreatedAt:            t.CreatedAt,
		ParticipantCount:     len(t.Participants),
	}
	for _, p := range t.Participants {
		out.Participants = append(out.Participants, participantToDTO(p))
	}
	if len(t.Matches) > 0 {
		out.Matches = bracketToDTO(t.Matches)
	}
	return out
}

type matchOutcomeDTO struct {
	Final      bool              `json:"final"`
	WinnerID   string            `json:"winner_id,omitempty"`
	RunnerUpID string            `json:"runner_up_id,omitempty"`
	Updated    []bracketMatchDTO `json:"updated"`
}

// donationDTO is the public view of a transaction; contact details stay private.
type donationDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"customer_name"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Message     string    `json:"message,omitempty"`
	Provider    string    `json:"provider"`
	KofiType    string    `json:"kofi_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func donationToDTO(t donation.Transaction) donationDTO {
	return donationDTO{
		ID:          t.ID,
		Name:        t.DisplayName(),
		AmountCents: t.AmountCents,
		Currency:    t.Currency,
		Message:     t.Message,
		Provider:    string(t.Provider),
		KofiType:    t.KofiType,
		CreatedAt:   t.CreatedAt,
	}
}

type supporterDTO struct {
	Name           string    `json:"name"`
	TotalCents     int64     `json:"total_cents"`
	DonationCount  int       `json:"donation_count"`
	Currency       string    `json:"currency"`
	LastDonationAt time.Time `json:"last_donation_at"`
}

func supporterToDTO(s donation.Supporter) supporterDTO {
	return supporterDTO{
		Name:           s.Name,
		TotalCents:     s.TotalCents,
		DonationCount:  s.DonationCount,
		Currency:       s.Currency,
		LastDonationAt: s.LastDonationAt,
	}
}

type playerRatingDTO struct {
	PlayerID    string  `json:"player_id"`
	PlayerAlias string  `json:"player_alias"`
	Rating      float64 `json:"rating"`
	Notes       string  `json:"notes,omitempty"`
}

type squadRatingDTO struct {
	ID               string            `json:"id"`
	SquadID          string            `json:"squad_id"`
	SquadName        string            `json:"squad_name,omitempty"`
	SeasonName       string            `json:"season_name"`
	AnalysisDate     time.Time         `json:"analysis_date"`
	AnalystID        string            `json:"analyst_id"`
	AnalystAlias     string            `json:"analyst_alias,omitempty"`
	Commentary       string            `json:"analyst_commentary,omitempty"`
	AnalystQuote     string            `json:"analyst_quote,omitempty"`
	BreakdownSummary string            `json:"breakdown_summary,omitempty"`
	AverageRating    float64           `json:"average_rating"`
	PlayerRatings    []playerRatingDTO `json:"player_ratings"`
	CreatedAt        time.Time         `json:"created_at"`
}

func squadRatingToDTO(r squadrating.Rating) squadRatingDTO {
	players := make([]playerRatingDTO, 0, len(r.PlayerRatings))
	for _, p := range r.PlayerRatings {
		players = append(players, playerRatingDTO{
			PlayerID:    p.PlayerID,
			PlayerAlias: p.PlayerAlias,
			Rating:      p.Rating,
			Notes:       p.Notes,
		})
	}
	return squadRatingDTO{
		ID:               r.ID,
		SquadID:          r.SquadID,
		SquadName:        r.SquadName,
		SeasonName:       r.SeasonName,
		AnalysisDate:     r.AnalysisDate,
		AnalystID:        r.AnalystID,
		AnalystAlias:     r.AnalystAlias,
		Commentary:       r.Commentary,
		AnalystQuote:     r.AnalystQuote,
		BreakdownSummary: r.BreakdownSummary,
		AverageRating:    round3(r.AverageRating()),
		PlayerRatings:    players,
		CreatedAt:        r.CreatedAt,
	}
}
