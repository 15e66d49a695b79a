package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

const (
	defaultRecentGamesLimit = 10
	maxRecentGamesLimit     = 50
	maxImportProblems       = 5
)

type SubmitGameInput struct {
	GameID    string
	GameDate  time.Time
	ArenaName string
	Players   []playerstats.GameStat
}

type SubmitGameResult struct {
	GameID          string `json:"game_id"`
	PlayersRecorded int    `json:"players_recorded"`
	SideFixes       int    `json:"side_fixes"`
}

type ImportStatsInput struct {
	Source    string
	Reader    io.Reader
	GameID    string
	GameDate  time.Time
	ArenaName string
}

type ImportStatsResult struct {
	Source    string                `json:"source"`
	GameID    string                `json:"game_id"`
	Rows      int                   `json:"rows"`
	SideFixes []playerstats.SideFix `json:"side_fixes"`
	Error     string                `json:"error,omitempty"`
}

type RepairSidesResult struct {
	DryRun bool                  `json:"dry_run"`
	Games  int                   `json:"games"`
	Fixes  []playerstats.SideFix `json:"fixes"`
}

type eloRecalculationTrigger interface {
	RequestEloRecalculation(ctx context.Context, season string) error
}

type PlayerStatsService struct {
	statsRepo  playerstats.Repository
	eloTrigger eloRecalculationTrigger
	workers    int
	logger     *logging.Logger
	now        func() time.Time
}

func NewPlayerStatsService(
	statsRepo playerstats.Repository,
	eloTrigger eloRecalculationTrigger,
	workers int,
	logger *logging.Logger,
) *PlayerStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultEloWorkers
	}

	return &PlayerStatsService{
		statsRepo:  statsRepo,
		eloTrigger: eloTrigger,
		workers:    workers,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitGame stores the stat lines the game server reports at the end of a
// game and schedules an ELO refresh.
func (s *PlayerStatsService) SubmitGame(ctx context.Context, input SubmitGameInput) (SubmitGameResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.SubmitGame")
	defer span.End()

	if len(input.Players) == 0 {
		return SubmitGameResult{}, fmt.Errorf("%w: players array is required", ErrInvalidInput)
	}

	gameDate := input.GameDate.UTC()
	if input.GameDate.IsZero() {
		gameDate = s.now().UTC()
	}
	gameID := strings.TrimSpace(input.GameID)
	if gameID == "" {
		gameID = fmt.Sprintf("Game_%s_%d", gameDate.Format("20060102"), gameDate.Unix())
	}
	seasonName := elo.CurrentSeason(gameDate)

	rows := make([]playerstats.GameStat, 0, len(input.Players))
	for _, p := range input.Players {
		row := playerstats.Sanitize(p)
		if row.PlayerName == "" || row.PlayerName == playerstats.Unknown {
			return SubmitGameResult{}, fmt.Errorf("%w: every player needs a name", ErrInvalidInput)
		}
		row.GameID = gameID
		row.GameDate = gameDate
		row.Season = seasonName
		if input.ArenaName != "" && row.ArenaName == playerstats.Unknown {
			row.ArenaName = strings.TrimSpace(input.ArenaName)
		}
		rows = append(rows, row)
	}
	fixes := playerstats.RepairOvDSides(rows)

	if err := s.insertGame(ctx, gameID, rows); err != nil {
		return SubmitGameResult{}, err
	}
	s.requestElo(ctx, seasonName)

	s.logger.InfoContext(ctx, "game stats recorded",
		"game_id", gameID,
		"players", len(rows),
		"side_fixes", len(fixes),
	)
	return SubmitGameResult{GameID: gameID, PlayersRecorded: len(rows), SideFixes: len(fixes)}, nil
}

// ImportCSV loads one exported game sheet.
func (s *PlayerStatsService) ImportCSV(ctx context.Context, input ImportStatsInput) (ImportStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.ImportCSV")
	defer span.End()

	result, err := s.importOne(ctx, input)
	if err != nil {
		return ImportStatsResult{}, err
	}
	s.requestElo(ctx, elo.CurrentSeason(s.resolveImportDate(input)))
	return result, nil
}

// ImportBatch imports several game sheets concurrently. Failures are reported
// per source; one ELO refresh is requested per affected season afterwards.
func (s *PlayerStatsService) ImportBatch(ctx context.Context, inputs []ImportStatsInput) ([]ImportStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.ImportBatch")
	defer span.End()

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no files to import", ErrInvalidInput)
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]ImportStatsResult, len(inputs))
	seasons := make(map[string]struct{})
	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for i, input := range inputs {
		i, input := i, input
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, err := s.importOne(ctx, input)
			if err != nil {
				results[i] = ImportStatsResult{Source: input.Source, Error: err.Error()}
				return
			}
			results[i] = row

			mu.Lock()
			seasons[elo.CurrentSeason(s.resolveImportDate(input))] = struct{}{}
			mu.Unlock()
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit import to worker pool: %w", err)
		}
	}
	workers.Wait()

	for seasonName := range seasons {
		s.requestElo(ctx, seasonName)
	}
	return results, nil
}

func (s *PlayerStatsService) resolveImportDate(input ImportStatsInput) time.Time {
	if input.GameDate.IsZero() {
		return s.now().UTC()
	}
	return input.GameDate.UTC()
}

func (s *PlayerStatsService) importOne(ctx context.Context, input ImportStatsInput) (ImportStatsResult, error) {
	if input.Reader == nil {
		return ImportStatsResult{}, fmt.Errorf("%w: csv body is required", ErrInvalidInput)
	}

	parsed, err := playerstats.ParseCSV(input.Reader)
	if err != nil {
		return ImportStatsResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(parsed) == 0 {
		return ImportStatsResult{}, fmt.Errorf("%w: csv has no player rows", ErrInvalidInput)
	}
	if problems := playerstats.Validate(parsed); len(problems) > 0 {
		if len(problems) > maxImportProblems {
			problems = append(problems[:maxImportProblems], fmt.Sprintf("... and %d more", len(problems)-maxImportProblems))
		}
		return ImportStatsResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}

	rows, fixes := playerstats.PrepareImport(parsed, playerstats.ImportOptions{
		GameID:    input.GameID,
		GameDate:  s.resolveImportDate(input),
		ArenaName: strings.TrimSpace(input.ArenaName),
	}, elo.CurrentSeason)
	for i := range rows {
		rows[i] = playerstats.Sanitize(rows[i])
	}

	gameID := rows[0].GameID
	if err := s.insertGame(ctx, gameID, rows); err != nil {
		return ImportStatsResult{}, err
	}

	s.logger.InfoContext(ctx, "game stats imported",
		"source", input.Source,
		"game_id", gameID,
		"rows", len(rows),
		"side_fixes", len(fixes),
	)
	return ImportStatsResult{Source: input.Source, GameID: gameID, Rows: len(rows), SideFixes: fixes}, nil
}

func (s *PlayerStatsService) insertGame(ctx context.Context, gameID string, rows []playerstats.GameStat) error {
	exists, err := s.statsRepo.GameExists(ctx, gameID)
	if err != nil {
		return fmt.Errorf("check game exists: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: game %s was already recorded", ErrConflict, gameID)
	}
	if err := s.statsRepo.InsertGame(ctx, rows); err != nil {
		return fmt.Errorf("insert game stats: %w", err)
	}
	return nil
}

func (s *PlayerStatsService) requestElo(ctx context.Context, seasonName string) {
	if s.eloTrigger == nil {
		return
	}
	if err := s.eloTrigger.RequestEloRecalculation(ctx, seasonName); err != nil {
		s.logger.WarnContext(ctx, "request elo recalculation failed", "season", seasonName, "error", err)
	}
}

// RepairStoredOvDSides runs the OvD side repair over every stored OvD game.
func (s *PlayerStatsService) RepairStoredOvDSides(ctx context.Context, dryRun bool) (RepairSidesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerStatsService.RepairStoredOvDSides")
	defer span.End()

	rows, err := s.statsRepo.ListByMode(ctx, playerstats.ModeOvD)
	if err != nil {
		return RepairSidesResult{}, fmt.Errorf("list ovd games: %w", err)
	}

	games := make(map[string]struct{})
	for _, r := range rows {
		games[r.GameID] = struct{}{}
	}
	fixes := playerstats.RepairOvDSides(rows)
	result := RepairSidesResult{DryRun: dryRun, Games: len(games), Fixes: fixes}
	if dryRun || len(fixes) == 0 {
		return result, nil
	}

	if err := s.statsRepo.UpdateSides(ctx, fixes); err != nil {
		return RepairSidesResult{}, fmt.Errorf("update ovd sides: %w", err)
	}
	s.logger.InfoContext(ctx, "ovd sides repaired", "games", result.Games, "fixes", len(fixes))
	return result, nil
}

func (s *PlayerStatsService) GameStats(ctx context.Context, gameID string) ([]playerstats.GameStat, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	rows, err := s.statsRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game stats: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	return rows, nil
}

func (s *PlayerStatsService) RecentGames(ctx context.Context, limit int) ([]playerstats.GameSummary, error) {
	if limit <= 0 {
		limit = defaultRecentGamesLimit
	}
	if limit > maxRecentGamesLimit {
		limit = maxRecentGamesLimit
	}

	items, err := s.statsRepo.ListRecentGames(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent games: %w", err)
	}
	return items, nil
}

func (s *PlayerStatsService) Leaderboard(ctx context.Context, query playerstats.LeaderboardQuery) ([]playerstats.Aggregate, int, error) {
	query = query.Normalize()
	items, total, err := s.statsRepo.Leaderboard(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("player stats leaderboard: %w", err)
	}
	return items, total, nil
}
