package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/squadrating"
	idgen "github.com/riskibarqy/infantry-community/internal/platform/id"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type CreateSquadRatingInput struct {
	ActorID          string
	SquadID          string
	SeasonName       string
	AnalysisDate     time.Time
	Commentary       string
	AnalystQuote     string
	BreakdownSummary string
	PlayerRatings    []squadrating.PlayerRating
}

type SquadRatingService struct {
	ratingRepo  squadrating.Repository
	profileRepo profile.Repository
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewSquadRatingService(
	ratingRepo squadrating.Repository,
	profileRepo profile.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *SquadRatingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SquadRatingService{
		ratingRepo:  ratingRepo,
		profileRepo: profileRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SquadRatingService) List(ctx context.Context, squadID string) ([]squadrating.Rating, error) {
	items, err := s.ratingRepo.List(ctx, strings.TrimSpace(squadID))
	if err != nil {
		return nil, fmt.Errorf("list squad ratings: %w", err)
	}
	return items, nil
}

// Create publishes an analyst rating. Only admins and media managers may rate.
func (s *SquadRatingService) Create(ctx context.Context, input CreateSquadRatingInput) (squadrating.Rating, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadRatingService.Create")
	defer span.End()

	actorID := strings.TrimSpace(input.ActorID)
	if actorID == "" {
		return squadrating.Rating{}, fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}
	actor, exists, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return squadrating.Rating{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists || !actor.CanRateSquads() {
		return squadrating.Rating{}, fmt.Errorf("%w: only admins and media managers can rate squads", ErrForbidden)
	}

	now := s.now().UTC()
	analysisDate := input.AnalysisDate
	if analysisDate.IsZero() {
		analysisDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	item := squadrating.Rating{
		SquadID:          strings.TrimSpace(input.SquadID),
		SeasonName:       strings.TrimSpace(input.SeasonName),
		AnalysisDate:     analysisDate,
		AnalystID:        actor.ID,
		AnalystAlias:     actor.DisplayName(),
		Commentary:       strings.TrimSpace(input.Commentary),
		AnalystQuote:     strings.TrimSpace(input.AnalystQuote),
		BreakdownSummary: strings.TrimSpace(input.BreakdownSummary),
		PlayerRatings:    input.PlayerRatings,
		CreatedAt:        now,
	}
	if err := item.Validate(); err != nil {
		return squadrating.Rating{}, err
	}

	item.ID, err = s.idGen.NewID()
	if err != nil {
		return squadrating.Rating{}, fmt.Errorf("generate squad rating id: %w", err)
	}
	if err := s.ratingRepo.Create(ctx, item); err != nil {
		return squadrating.Rating{}, fmt.Errorf("create squad rating: %w", err)
	}

	s.logger.InfoContext(ctx, "squad rating published", "squad_id", item.SquadID, "analyst_id", actor.ID)
	return item, nil
}
