package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/infantry-community/internal/domain/season"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type RosterLockService struct {
	seasonRepo season.Repository
	logger     *logging.Logger
}

func NewRosterLockService(seasonRepo season.Repository, logger *logging.Logger) *RosterLockService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterLockService{seasonRepo: seasonRepo, logger: logger}
}

// Status reports the roster lock of the active CTFPL season. When CTFPL is
// open or has no active season, any locked season of another league wins.
func (s *RosterLockService) Status(ctx context.Context) (season.LockStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterLockService.Status")
	defer span.End()

	var fallback *season.LockStatus
	for _, ctfpl := range []bool{true, false} {
		current, exists, err := s.seasonRepo.ActiveSeason(ctx, ctfpl)
		if err != nil {
			return season.LockStatus{}, fmt.Errorf("get active season: %w", err)
		}
		if !exists {
			continue
		}

		lock, hasLock, err := s.seasonRepo.CurrentLock(ctx, current.ID)
		if err != nil {
			return season.LockStatus{}, fmt.Errorf("get roster lock season=%s: %w", current.ID, err)
		}
		status := season.ResolveLockStatus(current, lock, hasLock)
		if status.IsLocked {
			return status, nil
		}
		if fallback == nil {
			fallback = &status
		}
	}

	if fallback == nil {
		return season.NoActiveSeasonStatus(), nil
	}
	return *fallback, nil
}
