package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/tournament"
)

type TournamentRepository struct {
	mu           sync.RWMutex
	items        map[string]tournament.Tournament
	participants map[string][]tournament.Participant
	matches      map[string][]tournament.BracketMatch
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{
		items:        make(map[string]tournament.Tournament),
		participants: make(map[string][]tournament.Participant),
		matches:      make(map[string][]tournament.BracketMatch),
	}
}

func (r *TournamentRepository) Create(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.Participants = nil
	t.Matches = nil
	r.items[t.ID] = t
	return nil
}

func (r *TournamentRepository) GetByID(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[tournamentID]
	return t, ok, nil
}

func (r *TournamentRepository) List(_ context.Context, query tournament.ListQuery) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.items))
	for _, t := range r.items {
		if query.Status != "" && string(t.Status) != query.Status {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *TournamentRepository) ListParticipants(_ context.Context, tournamentID string) ([]tournament.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]tournament.Participant(nil), r.participants[tournamentID]...), nil
}

func (r *TournamentRepository) ListMatches(_ context.Context, tournamentID string) ([]tournament.BracketMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]tournament.BracketMatch(nil), r.matches[tournamentID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r *TournamentRepository) Register(_ context.Context, p tournament.Participant, check func(t tournament.Tournament, count int) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[p.TournamentID]
	if !ok {
		return fmt.Errorf("tournament %s not found", p.TournamentID)
	}
	current := r.participants[p.TournamentID]
	for _, existing := range current {
		if existing.PlayerID == p.PlayerID {
			return tournament.ErrAlreadyRegistered
		}
	}
	if check != nil {
		if err := check(t, len(current)); err != nil {
			return err
		}
	}
	r.participants[p.TournamentID] = append(current, p)
	return nil
}

func (r *TournamentRepository) SaveBracket(_ context.Context, tournamentID string, participants []tournament.Participant, matches []tournament.BracketMatch, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[tournamentID]
	if !ok {
		return fmt.Errorf("tournament %s not found", tournamentID)
	}
	if t.Status != tournament.StatusRegistration {
		return tournament.ErrBracketExists
	}
	t.Status = tournament.StatusInProgress
	t.UpdatedAt = at
	r.items[tournamentID] = t
	r.participants[tournamentID] = append([]tournament.Participant(nil), participants...)
	r.matches[tournamentID] = append([]tournament.BracketMatch(nil), matches...)
	return nil
}

func (r *TournamentRepository) UpdateMatches(_ context.Context, matches []tournament.BracketMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matches {
		items := r.matches[m.TournamentID]
		for i := range items {
			if items[i].ID == m.ID {
				items[i] = m
			}
		}
	}
	return nil
}

func (r *TournamentRepository) Complete(_ context.Context, tournamentID, winnerID, runnerUpID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[tournamentID]
	if !ok {
		return fmt.Errorf("tournament %s not found", tournamentID)
	}
	t.Status = tournament.StatusCompleted
	t.WinnerID = winnerID
	t.RunnerUpID = runnerUpID
	t.EndTime = &at
	t.UpdatedAt = at
	r.items[tournamentID] = t
	return nil
}

func (r *TournamentRepository) UpdateStatus(_ context.Context, tournamentID string, status tournament.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[tournamentID]
	if !ok {
		return fmt.Errorf("tournament %s not found", tournamentID)
	}
	t.Status = status
	t.UpdatedAt = at
	r.items[tournamentID] = t
	return nil
}
