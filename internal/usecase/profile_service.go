package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/squad"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

// PlayerProfile is everything the public player page shows. Players who never
// registered still get their stats and rating.
type PlayerProfile struct {
	PlayerName   string
	IsRegistered bool
	Profile      *profile.Profile
	Aliases      []profile.Alias
	Squad        *squad.Squad
	Rating       *elo.Rating
	Stats        *playerstats.Aggregate
}

type ProfileService struct {
	profileRepo profile.Repository
	squadRepo   squad.Repository
	eloRepo     elo.Repository
	statsRepo   playerstats.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewProfileService(
	profileRepo profile.Repository,
	squadRepo squad.Repository,
	eloRepo elo.Repository,
	statsRepo playerstats.Repository,
	logger *logging.Logger,
) *ProfileService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ProfileService{
		profileRepo: profileRepo,
		squadRepo:   squadRepo,
		eloRepo:     eloRepo,
		statsRepo:   statsRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ProfileService) PlayerProfile(ctx context.Context, playerName string) (PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.PlayerProfile")
	defer span.End()

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return PlayerProfile{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	out := PlayerProfile{PlayerName: playerName}
	account, registered, err := s.profileRepo.FindByAlias(ctx, playerName)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("find profile by alias: %w", err)
	}
	if registered {
		out.IsRegistered = true
		out.Profile = &account
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		rating, exists, err := s.eloRepo.GetRating(ctx, elo.CurrentSeason(s.now()), elo.ModeCombined, playerName)
		if err != nil {
			return fmt.Errorf("get combined rating: %w", err)
		}
		if exists {
			out.Rating = &rating
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		stats, exists, err := s.statsRepo.GetAggregate(ctx, playerName)
		if err != nil {
			return fmt.Errorf("get aggregate stats: %w", err)
		}
		if exists {
			out.Stats = &stats
		}
		return nil
	})
	if registered {
		p.Go(func(ctx context.Context) error {
			aliases, err := s.profileRepo.ListAliases(ctx, account.ID)
			if err != nil {
				return fmt.Errorf("list aliases: %w", err)
			}
			out.Aliases = aliases
			return nil
		})
		p.Go(func(ctx context.Context) error {
			member, exists, err := s.squadRepo.FindActiveMembership(ctx, account.ID)
			if err != nil {
				return fmt.Errorf("find active membership: %w", err)
			}
			if !exists {
				return nil
			}
			item, exists, err := s.squadRepo.GetByID(ctx, member.SquadID)
			if err != nil {
				return fmt.Errorf("get squad: %w", err)
			}
			if exists {
				out.Squad = &item
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return PlayerProfile{}, err
	}

	if !out.IsRegistered && out.Rating == nil && out.Stats == nil {
		return PlayerProfile{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerName)
	}
	return out, nil
}
