package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/dueling"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	idgen "github.com/riskibarqy/infantry-community/internal/platform/id"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type RecordDuelInput struct {
	MatchType   string
	Player1Name string
	Player2Name string
	WinnerName  string
	ArenaName   string
	StartedAt   time.Time
	CompletedAt time.Time
	Rounds      []dueling.Round
}

type duelRater interface {
	ApplyDuel(ctx context.Context, match dueling.Match) error
}

type DuelingService struct {
	duelRepo    dueling.Repository
	profileRepo profile.Repository
	rater       duelRater
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewDuelingService(
	duelRepo dueling.Repository,
	profileRepo profile.Repository,
	rater duelRater,
	idGen idgen.Generator,
	logger *logging.Logger,
) *DuelingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DuelingService{
		duelRepo:    duelRepo,
		profileRepo: profileRepo,
		rater:       rater,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// RecordMatch stores a finished duel reported by the game server. Ranked
// duels also move both players on the Dueling ladder.
func (s *DuelingService) RecordMatch(ctx context.Context, input RecordDuelInput) (dueling.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DuelingService.RecordMatch", gameModeAttr(elo.ModeDueling))
	defer span.End()

	if strings.TrimSpace(input.MatchType) == "" || strings.TrimSpace(input.WinnerName) == "" {
		return dueling.Match{}, fmt.Errorf("%w: matchType and winnerName are required", ErrInvalidInput)
	}
	matchType, err := dueling.ParseMatchType(input.MatchType)
	if err != nil {
		return dueling.Match{}, err
	}

	match, err := dueling.Match{
		MatchType:   matchType,
		Player1Name: input.Player1Name,
		Player2Name: input.Player2Name,
		WinnerName:  input.WinnerName,
		ArenaName:   strings.TrimSpace(input.ArenaName),
		Status:      dueling.StatusCompleted,
		Rounds:      input.Rounds,
	}.Normalize()
	if err != nil {
		return dueling.Match{}, err
	}

	completedAt := input.CompletedAt.UTC()
	if input.CompletedAt.IsZero() {
		completedAt = s.now().UTC()
	}
	match.CompletedAt = &completedAt
	match.StartedAt = input.StartedAt.UTC()
	if input.StartedAt.IsZero() {
		match.StartedAt = completedAt.Add(-time.Duration(match.DurationSeconds()) * time.Second)
	}

	match.Player1ID = s.resolvePlayerID(ctx, match.Player1Name)
	match.Player2ID = s.resolvePlayerID(ctx, match.Player2Name)
	switch {
	case strings.EqualFold(match.WinnerName, match.Player1Name):
		match.WinnerName, match.WinnerID = match.Player1Name, match.Player1ID
	default:
		match.WinnerName, match.WinnerID = match.Player2Name, match.Player2ID
	}

	match.ID, err = s.idGen.NewID()
	if err != nil {
		return dueling.Match{}, fmt.Errorf("generate duel id: %w", err)
	}
	if err := s.duelRepo.Create(ctx, match); err != nil {
		return dueling.Match{}, fmt.Errorf("create duel: %w", err)
	}

	if match.MatchType.Ranked() && s.rater != nil {
		if err := s.rater.ApplyDuel(ctx, match); err != nil {
			s.logger.WarnContext(ctx, "apply duel rating failed", "match_id", match.ID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "duel recorded",
		"match_id", match.ID,
		"match_type", match.MatchType,
		"winner", match.WinnerName,
		"rounds", len(match.Rounds),
	)
	return match, nil
}

func (s *DuelingService) resolvePlayerID(ctx context.Context, alias string) string {
	item, exists, err := s.profileRepo.FindByAlias(ctx, alias)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve duel player failed", "alias", alias, "error", err)
		return ""
	}
	if !exists {
		return ""
	}
	return item.ID
}

func (s *DuelingService) ListMatches(ctx context.Context, query dueling.ListQuery) ([]dueling.Match, int, dueling.ListQuery, error) {
	query = query.Normalize()
	if query.MatchType != "" {
		if _, err := dueling.ParseMatchType(query.MatchType); err != nil {
			return nil, 0, query, err
		}
	}

	items, total, err := s.duelRepo.List(ctx, query)
	if err != nil {
		return nil, 0, query, fmt.Errorf("list duels: %w", err)
	}
	return items, total, query, nil
}

func (s *DuelingService) GetMatch(ctx context.Context, matchID string) (dueling.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return dueling.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.duelRepo.GetByID(ctx, matchID)
	if err != nil {
		return dueling.Match{}, fmt.Errorf("get duel: %w", err)
	}
	if !exists {
		return dueling.Match{}, fmt.Errorf("%w: duel=%s", ErrNotFound, matchID)
	}
	return item, nil
}
