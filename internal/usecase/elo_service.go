package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

const (
	defaultEloWorkers      = 4
	transitionPreviewLimit = 20
)

type EloConfig struct {
	Workers int
}

type RecalculationResult struct {
	Season       string              `json:"season"`
	GameModes    []ModeRecalculation `json:"game_modes"`
	TotalRatings int                 `json:"total_ratings"`
	DurationMs   int64               `json:"duration_ms"`
	Skipped      bool                `json:"skipped,omitempty"`
}

type ModeRecalculation struct {
	GameMode string `json:"game_mode"`
	Games    int    `json:"games"`
	Players  int    `json:"players"`
}

type TransitionSeasonInput struct {
	FromSeason string
	ToSeason   string
	Force      bool
}

type TransitionSeasonResult struct {
	FromSeason string              `json:"from_season"`
	ToSeason   string              `json:"to_season"`
	DryRun     bool                `json:"dry_run"`
	Players    int                 `json:"players"`
	Preview    []TransitionPreview `json:"preview"`
}

type TransitionPreview struct {
	PlayerName string  `json:"player_name"`
	GameMode   string  `json:"game_mode"`
	OldRating  float64 `json:"old_rating"`
	NewRating  float64 `json:"new_rating"`
}

type LeaderboardResult struct {
	Query          elo.LeaderboardQuery
	Page           elo.LeaderboardPage
	AvailableModes []string
}

type EloService struct {
	eloRepo   elo.Repository
	statsRepo playerstats.Repository
	duelRepo  dueling.Repository
	cfg       EloConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewEloService(
	eloRepo elo.Repository,
	statsRepo playerstats.Repository,
	duelRepo dueling.Repository,
	cfg EloConfig,
	logger *logging.Logger,
) *EloService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultEloWorkers
	}

	return &EloService{
		eloRepo:   eloRepo,
		statsRepo: statsRepo,
		duelRepo:  duelRepo,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *EloService) CurrentSeason() string {
	return elo.CurrentSeason(s.now())
}

func (s *EloService) resolveSeason(raw string) (elo.Season, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return elo.SeasonAt(s.now()), nil
	}
	parsed, err := elo.ParseSeason(raw)
	if err != nil {
		return elo.Season{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return parsed, nil
}

// RecalculateAll replays every game of the season from scratch, one game
// mode per worker, and replaces the stored ratings.
func (s *EloService) RecalculateAll(ctx context.Context, seasonName string) (RecalculationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.RecalculateAll", seasonAttr(seasonName))
	defer span.End()

	started := time.Now()
	target, err := s.resolveSeason(seasonName)
	if err != nil {
		return RecalculationResult{}, err
	}
	seasonKey := target.String()
	from, to := target.Bounds()

	rows, err := s.statsRepo.ListBetween(ctx, from, to)
	if err != nil {
		return RecalculationResult{}, fmt.Errorf("list season games: %w", err)
	}
	duels, err := s.duelRepo.ListRankedBetween(ctx, from, to)
	if err != nil {
		return RecalculationResult{}, fmt.Errorf("list season duels: %w", err)
	}
	previous, err := s.eloRepo.ListSeason(ctx, target.Previous().String())
	if err != nil {
		return RecalculationResult{}, fmt.Errorf("list previous season ratings: %w", err)
	}

	games := gamesByMode(rows)
	if duelGames := duelGameResults(duels); len(duelGames) > 0 {
		games[elo.ModeDueling] = append(games[elo.ModeDueling], duelGames...)
	}
	seeds := make(map[string][]elo.Rating)
	for _, r := range elo.Transition(previous, seasonKey) {
		seeds[r.GameMode] = append(seeds[r.GameMode], r)
		if _, ok := games[r.GameMode]; !ok {
			games[r.GameMode] = nil
		}
	}

	modes := make([]string, 0, len(games))
	for mode := range games {
		modes = append(modes, mode)
	}
	sort.Strings(modes)

	pool, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return RecalculationResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
		ratings []elo.Rating
		summary = make([]ModeRecalculation, 0, len(modes))
	)
	for _, mode := range modes {
		mode := mode
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			rated := replaySeeded(mode, seasonKey, seeds[mode], games[mode])

			mu.Lock()
			defer mu.Unlock()
			ratings = append(ratings, rated...)
			summary = append(summary, ModeRecalculation{
				GameMode: mode,
				Games:    len(games[mode]),
				Players:  len(rated),
			})
		}); err != nil {
			workers.Done()
			return RecalculationResult{}, fmt.Errorf("submit recalculation to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Slice(summary, func(i, j int) bool { return summary[i].GameMode < summary[j].GameMode })

	if err := s.eloRepo.ReplaceSeason(ctx, seasonKey, ratings); err != nil {
		return RecalculationResult{}, fmt.Errorf("replace season ratings: %w", err)
	}

	result := RecalculationResult{
		Season:       seasonKey,
		GameModes:    summary,
		TotalRatings: len(ratings),
		DurationMs:   time.Since(started).Milliseconds(),
	}
	s.logger.InfoContext(ctx, "elo recalculated",
		"season", seasonKey,
		"modes", len(summary),
		"ratings", result.TotalRatings,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

func replaySeeded(mode, season string, seeds []elo.Rating, games []elo.GameResult) []elo.Rating {
	sorted := append([]elo.GameResult(nil), games...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlayedAt.Before(sorted[j].PlayedAt)
	})

	ledger := elo.NewLedger(mode, season)
	ledger.Seed(seeds)
	for _, g := range sorted {
		ledger.Apply(g)
	}
	return ledger.Ratings()
}

// gamesByMode turns stat rows into rated games per mode. Every game also
// counts toward the Combined ladder.
func gamesByMode(rows []playerstats.GameStat) map[string][]elo.GameResult {
	type gameKey struct{ id, mode string }
	byGame := make(map[gameKey]*elo.GameResult)
	order := make([]gameKey, 0)
	for _, row := range rows {
		mode := strings.TrimSpace(row.GameMode)
		if mode == "" || strings.EqualFold(mode, playerstats.Unknown) {
			continue
		}
		k := gameKey{row.GameID, mode}
		g, ok := byGame[k]
		if !ok {
			g = &elo.GameResult{GameID: row.GameID, GameMode: mode, PlayedAt: row.GameDate}
			byGame[k] = g
			order = append(order, k)
		}
		g.Participants = append(g.Participants, elo.Participant{
			PlayerName: row.PlayerName,
			Team:       row.Team,
			Outcome:    elo.ParseOutcome(row.Result),
		})
	}

	out := make(map[string][]elo.GameResult)
	for _, k := range order {
		g := *byGame[k]
		out[g.GameMode] = append(out[g.GameMode], g)
		combined := g
		combined.GameMode = elo.ModeCombined
		out[elo.ModeCombined] = append(out[elo.ModeCombined], combined)
	}
	return out
}

func duelGameResults(matches []dueling.Match) []elo.GameResult {
	out := make([]elo.GameResult, 0, len(matches))
	for _, m := range matches {
		if !m.MatchType.Ranked() || m.Status != dueling.StatusCompleted {
			continue
		}
		out = append(out, duelGame(m))
	}
	return out
}

func duelGame(m dueling.Match) elo.GameResult {
	playedAt := m.StartedAt
	if m.CompletedAt != nil {
		playedAt = *m.CompletedAt
	}
	outcome := func(name string) elo.Outcome {
		if strings.EqualFold(name, m.WinnerName) {
			return elo.OutcomeWin
		}
		return elo.OutcomeLoss
	}
	return elo.GameResult{
		GameID:   m.ID,
		GameMode: elo.ModeDueling,
		PlayedAt: playedAt,
		Participants: []elo.Participant{
			{PlayerName: m.Player1Name, PlayerID: m.Player1ID, Team: "1", Outcome: outcome(m.Player1Name)},
			{PlayerName: m.Player2Name, PlayerID: m.Player2ID, Team: "2", Outcome: outcome(m.Player2Name)},
		},
	}
}

// ApplyDuel rates a completed ranked duel on the Dueling ladder of the season
// it finished in.
func (s *EloService) ApplyDuel(ctx context.Context, match dueling.Match) error {
	if !match.MatchType.Ranked() || match.Status != dueling.StatusCompleted {
		return nil
	}
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.ApplyDuel", gameModeAttr(elo.ModeDueling))
	defer span.End()

	game := duelGame(match)
	seasonKey := elo.CurrentSeason(game.PlayedAt)

	ledger := elo.NewLedger(elo.ModeDueling, seasonKey)
	for _, p := range game.Participants {
		existing, exists, err := s.eloRepo.GetRating(ctx, seasonKey, elo.ModeDueling, p.PlayerName)
		if err != nil {
			return fmt.Errorf("get dueling rating player=%s: %w", p.PlayerName, err)
		}
		if exists {
			ledger.Seed([]elo.Rating{existing})
		}
	}
	ledger.Apply(game)

	updated := make([]elo.Rating, 0, len(game.Participants))
	for _, p := range game.Participants {
		if r, ok := ledger.Get(p.PlayerName); ok {
			updated = append(updated, r)
		}
	}
	if err := s.eloRepo.UpsertRatings(ctx, updated); err != nil {
		return fmt.Errorf("upsert dueling ratings: %w", err)
	}
	return nil
}

// TransitionSeason carries ratings into the next season. Without Force it
// only reports what would change.
func (s *EloService) TransitionSeason(ctx context.Context, input TransitionSeasonInput) (TransitionSeasonResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.TransitionSeason", seasonAttr(input.ToSeason))
	defer span.End()

	if strings.TrimSpace(input.ToSeason) == "" {
		return TransitionSeasonResult{}, fmt.Errorf("%w: target season is required", ErrInvalidInput)
	}
	to, err := s.resolveSeason(input.ToSeason)
	if err != nil {
		return TransitionSeasonResult{}, err
	}
	from := to.Previous()
	if strings.TrimSpace(input.FromSeason) != "" {
		from, err = s.resolveSeason(input.FromSeason)
		if err != nil {
			return TransitionSeasonResult{}, err
		}
	}
	if from == to {
		return TransitionSeasonResult{}, fmt.Errorf("%w: source and target season are the same", ErrInvalidInput)
	}

	existing, err := s.eloRepo.CountSeason(ctx, to.String())
	if err != nil {
		return TransitionSeasonResult{}, fmt.Errorf("count target season ratings: %w", err)
	}
	if existing > 0 {
		return TransitionSeasonResult{}, fmt.Errorf("%w: season %s already has %d ratings", ErrConflict, to, existing)
	}

	current, err := s.eloRepo.ListSeason(ctx, from.String())
	if err != nil {
		return TransitionSeasonResult{}, fmt.Errorf("list season ratings: %w", err)
	}
	next := elo.Transition(current, to.String())

	result := TransitionSeasonResult{
		FromSeason: from.String(),
		ToSeason:   to.String(),
		DryRun:     !input.Force,
		Players:    len(next),
		Preview:    make([]TransitionPreview, 0, min(len(next), transitionPreviewLimit)),
	}
	for i := 0; i < len(next) && i < transitionPreviewLimit; i++ {
		result.Preview = append(result.Preview, TransitionPreview{
			PlayerName: current[i].PlayerName,
			GameMode:   current[i].GameMode,
			OldRating:  roundTo(current[i].Rating, 1),
			NewRating:  roundTo(next[i].Rating, 1),
		})
	}
	if !input.Force {
		return result, nil
	}

	if err := s.eloRepo.TransitionSeason(ctx, from.String(), next); err != nil {
		return TransitionSeasonResult{}, fmt.Errorf("transition season: %w", err)
	}

	s.logger.InfoContext(ctx, "elo season transitioned",
		"from", result.FromSeason,
		"to", result.ToSeason,
		"players", result.Players,
	)
	return result, nil
}

// Leaderboard loads one page of ratings together with the game modes that
// have ratings in the season.
func (s *EloService) Leaderboard(ctx context.Context, query elo.LeaderboardQuery) (LeaderboardResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EloService.Leaderboard", seasonAttr(query.Season), gameModeAttr(query.GameMode))
	defer span.End()

	seasonName, err := s.resolveSeason(query.Season)
	if err != nil {
		return LeaderboardResult{}, err
	}
	query.Season = seasonName.String()
	query = query.Normalize()

	var (
		page     elo.LeaderboardPage
		modes    []string
		pageErr  error
		modesErr error
		wg       conc.WaitGroup
	)
	wg.Go(func() {
		page, pageErr = s.eloRepo.Leaderboard(ctx, query)
	})
	wg.Go(func() {
		modes, modesErr = s.eloRepo.GameModes(ctx, query.Season)
	})
	wg.Wait()

	if pageErr != nil {
		return LeaderboardResult{}, fmt.Errorf("elo leaderboard: %w", pageErr)
	}
	if modesErr != nil {
		return LeaderboardResult{}, fmt.Errorf("elo game modes: %w", modesErr)
	}

	return LeaderboardResult{Query: query, Page: page, AvailableModes: modes}, nil
}

func (s *EloService) PlayerRating(ctx context.Context, playerName, gameMode string) (elo.Rating, bool, error) {
	if strings.TrimSpace(gameMode) == "" {
		gameMode = elo.ModeCombined
	}
	item, exists, err := s.eloRepo.GetRating(ctx, s.CurrentSeason(), gameMode, playerName)
	if err != nil {
		return elo.Rating{}, false, fmt.Errorf("get player rating: %w", err)
	}
	return item, exists, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
