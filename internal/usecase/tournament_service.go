package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
	idgen "github.com/riskibarqy/infantry-community/internal/platform/id"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

const tournamentFanOut = 8

type CreateTournamentInput struct {
	ActorID              string
	Name                 string
	Description          string
	MaxParticipants      int
	EntryFeeCents        int64
	PrizePoolCents       int64
	RegistrationDeadline *time.Time
	StartTime            *time.Time
	EndTime              *time.Time
}

type ReportMatchInput struct {
	ActorID      string
	TournamentID string
	MatchID      string
	WinnerID     string
	DuelID       string
}

type TournamentService struct {
	tournamentRepo tournament.Repository
	profileRepo    profile.Repository
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo tournament.Repository,
	profileRepo profile.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *TournamentService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TournamentService{
		tournamentRepo: tournamentRepo,
		profileRepo:    profileRepo,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ActorID) == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}

	now := s.now().UTC()
	item := tournament.Tournament{
		Name:                 input.Name,
		Description:          strings.TrimSpace(input.Description),
		MaxParticipants:      input.MaxParticipants,
		EntryFeeCents:        input.EntryFeeCents,
		PrizePoolCents:       input.PrizePoolCents,
		RegistrationDeadline: input.RegistrationDeadline,
		StartTime:            input.StartTime,
		EndTime:              input.EndTime,
		CreatedBy:            input.ActorID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return tournament.Tournament{}, err
	}

	var err error
	item.ID, err = s.idGen.NewID()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("generate tournament id: %w", err)
	}
	if err := s.tournamentRepo.Create(ctx, item); err != nil {
		return tournament.Tournament{}, fmt.Errorf("create tournament: %w", err)
	}
	return item, nil
}

func (s *TournamentService) List(ctx context.Context, query tournament.ListQuery) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.List")
	defer span.End()

	if query.Status != "" && query.Status != "all" {
		if _, ok := tournament.ParseStatus(query.Status); !ok {
			return nil, fmt.Errorf("%w: %s", tournament.ErrInvalidStatus, query.Status)
		}
	}
	if query.Status == "all" {
		query.Status = ""
	}
	if query.Limit <= 0 {
		query.Limit = tournament.DefaultListLimit
	}

	items, err := s.tournamentRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	if !query.IncludeParticipants || len(items) == 0 {
		return items, nil
	}

	p := pool.New().WithMaxGoroutines(tournamentFanOut).WithContext(ctx).WithCancelOnError()
	for i := range items {
		i := i
		p.Go(func(ctx context.Context) error {
			participants, err := s.tournamentRepo.ListParticipants(ctx, items[i].ID)
			if err != nil {
				return fmt.Errorf("list participants tournament=%s: %w", items[i].ID, err)
			}
			items[i].Participants = participants
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns the tournament with its participants and bracket.
func (s *TournamentService) Get(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	item, err := s.requireTournament(ctx, tournamentID)
	if err != nil {
		return tournament.Tournament{}, err
	}

	var (
		participants    []tournament.Participant
		matches         []tournament.BracketMatch
		participantsErr error
		matchesErr      error
		wg              conc.WaitGroup
	)
	wg.Go(func() {
		participants, participantsErr = s.tournamentRepo.ListParticipants(ctx, item.ID)
	})
	wg.Go(func() {
		matches, matchesErr = s.tournamentRepo.ListMatches(ctx, item.ID)
	})
	wg.Wait()

	if participantsErr != nil {
		return tournament.Tournament{}, fmt.Errorf("list participants: %w", participantsErr)
	}
	if matchesErr != nil {
		return tournament.Tournament{}, fmt.Errorf("list bracket matches: %w", matchesErr)
	}
	item.Participants = participants
	item.Matches = matches
	return item, nil
}

func (s *TournamentService) Register(ctx context.Context, actorID, tournamentID string) (tournament.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Register")
	defer span.End()

	item, err := s.requireTournament(ctx, tournamentID)
	if err != nil {
		return tournament.Participant{}, err
	}
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return tournament.Participant{}, err
	}

	now := s.now().UTC()
	participant := tournament.Participant{
		TournamentID: item.ID,
		PlayerID:     actor.ID,
		PlayerAlias:  actor.DisplayName(),
		RegisteredAt: now,
	}
	check := func(current tournament.Tournament, count int) error {
		return current.CanRegister(count, now)
	}
	if err := s.tournamentRepo.Register(ctx, participant, check); err != nil {
		return tournament.Participant{}, fmt.Errorf("register participant: %w", err)
	}
	return participant, nil
}

// GenerateBracket seeds the registered players and starts the tournament.
func (s *TournamentService) GenerateBracket(ctx context.Context, actorID, tournamentID string) ([]tournament.BracketMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GenerateBracket")
	defer span.End()

	item, err := s.requireTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOrganizer(ctx, actorID, item); err != nil {
		return nil, err
	}
	if item.Status != tournament.StatusRegistration {
		return nil, fmt.Errorf("%w: status=%s", tournament.ErrBracketExists, item.Status)
	}

	participants, err := s.tournamentRepo.ListParticipants(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	seeded := tournament.SeedParticipants(participants)
	now := s.now().UTC()
	matches, err := tournament.GenerateBracket(item.ID, seeded, s.idGen.NewID, now)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.SaveBracket(ctx, item.ID, seeded, matches, now); err != nil {
		return nil, fmt.Errorf("save bracket: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament bracket generated",
		"tournament_id", item.ID,
		"participants", len(seeded),
		"matches", len(matches),
	)
	return matches, nil
}

// ReportMatch completes a bracket match. The organizer, an admin or one of
// the two players may report.
func (s *TournamentService) ReportMatch(ctx context.Context, input ReportMatchInput) (tournament.Outcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ReportMatch")
	defer span.End()

	input.WinnerID = strings.TrimSpace(input.WinnerID)
	if input.WinnerID == "" {
		return tournament.Outcome{}, fmt.Errorf("%w: winner id is required", ErrInvalidInput)
	}

	item, err := s.requireTournament(ctx, input.TournamentID)
	if err != nil {
		return tournament.Outcome{}, err
	}
	if item.Status != tournament.StatusInProgress {
		return tournament.Outcome{}, fmt.Errorf("%w: tournament status=%s", tournament.ErrMatchNotReady, item.Status)
	}

	matches, err := s.tournamentRepo.ListMatches(ctx, item.ID)
	if err != nil {
		return tournament.Outcome{}, fmt.Errorf("list bracket matches: %w", err)
	}
	var target tournament.BracketMatch
	for _, m := range matches {
		if m.ID == input.MatchID {
			target = m
			break
		}
	}
	if target.ID == "" {
		return tournament.Outcome{}, fmt.Errorf("%w: %w", ErrNotFound, tournament.ErrMatchNotFound)
	}
	if !target.HasPlayer(input.ActorID) {
		if err := s.requireOrganizer(ctx, input.ActorID, item); err != nil {
			return tournament.Outcome{}, err
		}
	}

	now := s.now().UTC()
	outcome, err := tournament.ReportResult(matches, input.MatchID, input.WinnerID, strings.TrimSpace(input.DuelID), now)
	if err != nil {
		return tournament.Outcome{}, err
	}
	if err := s.tournamentRepo.UpdateMatches(ctx, outcome.Updated); err != nil {
		return tournament.Outcome{}, fmt.Errorf("update bracket matches: %w", err)
	}
	if outcome.Final {
		if err := s.tournamentRepo.Complete(ctx, item.ID, outcome.WinnerID, outcome.RunnerUpID, now); err != nil {
			return tournament.Outcome{}, fmt.Errorf("complete tournament: %w", err)
		}
		s.logger.InfoContext(ctx, "tournament completed",
			"tournament_id", item.ID,
			"winner_id", outcome.WinnerID,
			"runner_up_id", outcome.RunnerUpID,
		)
	}
	return outcome, nil
}

func (s *TournamentService) UpdateStatus(ctx context.Context, actorID, tournamentID, rawStatus string) error {
	status, ok := tournament.ParseStatus(strings.TrimSpace(rawStatus))
	if !ok {
		return fmt.Errorf("%w: %s", tournament.ErrInvalidStatus, rawStatus)
	}

	item, err := s.requireTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	if err := s.requireOrganizer(ctx, actorID, item); err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, item.ID, status, s.now().UTC()); err != nil {
		return fmt.Errorf("update tournament status: %w", err)
	}
	return nil
}

func (s *TournamentService) requireTournament(ctx context.Context, tournamentID string) (tournament.Tournament, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	item, exists, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}
	return item, nil
}

func (s *TournamentService) requireActor(ctx context.Context, actorID string) (profile.Profile, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return profile.Profile{}, fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}
	item, exists, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile=%s", ErrNotFound, actorID)
	}
	return item, nil
}

func (s *TournamentService) requireOrganizer(ctx context.Context, actorID string, item tournament.Tournament) error {
	if strings.TrimSpace(actorID) != "" && actorID == item.CreatedBy {
		return nil
	}
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.HasAdminOverride() || actor.IsCTFAdmin() {
		return nil
	}
	return fmt.Errorf("%w: only the organizer or an admin can manage this tournament", ErrForbidden)
}
