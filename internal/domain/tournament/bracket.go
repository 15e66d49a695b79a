package tournament

import (
	"fmt"
	"sort"
	"time"
)

// BracketSize is the smallest power of two holding n players.
func BracketSize(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// SeedOrder lists seeds in first-round slot order, e.g. 1,8,4,5,2,7,3,6 for
// eight, so the top seeds meet as late as possible.
func SeedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		n := len(order) * 2
		next := make([]int, 0, n)
		for _, s := range order {
			next = append(next, s, n+1-s)
		}
		order = next
	}
	return order
}

func rounds(size int) int {
	r := 0
	for s := size; s > 1; s >>= 1 {
		r++
	}
	return r
}

// SeedParticipants orders players by explicit seed then registration time and
// rewrites SeedPosition to 1..n.
func SeedParticipants(participants []Participant) []Participant {
	out := append([]Participant(nil), participants...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.SeedPosition > 0) != (b.SeedPosition > 0) {
			return a.SeedPosition > 0
		}
		if a.SeedPosition != b.SeedPosition {
			return a.SeedPosition < b.SeedPosition
		}
		return a.RegisteredAt.Before(b.RegisteredAt)
	})
	for i := range out {
		out[i].SeedPosition = i + 1
	}
	return out
}

// GenerateBracket builds every round of a single elimination bracket. First
// round byes are completed immediately and their players advanced.
func GenerateBracket(tournamentID string, participants []Participant, newID func() (string, error), now time.Time) ([]BracketMatch, error) {
	if len(participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}
	seeded := SeedParticipants(participants)
	size := BracketSize(len(seeded))
	total := rounds(size)

	var matches []BracketMatch
	for round := 1; round <= total; round++ {
		for pos := 1; pos <= size>>round; pos++ {
			id, err := newID()
			if err != nil {
				return nil, fmt.Errorf("generate bracket match id: %w", err)
			}
			matches = append(matches, BracketMatch{
				ID:           id,
				TournamentID: tournamentID,
				Round:        round,
				Position:     pos,
				Status:       MatchPending,
			})
		}
	}

	order := SeedOrder(size)
	bySeed := func(seed int) (Participant, bool) {
		if seed > len(seeded) {
			return Participant{}, false
		}
		return seeded[seed-1], true
	}

	for i := 0; i < size/2; i++ {
		m := &matches[i]
		p1, ok1 := bySeed(order[2*i])
		p2, ok2 := bySeed(order[2*i+1])
		if ok1 {
			m.Player1ID, m.Player1Alias = p1.PlayerID, p1.PlayerAlias
		}
		if ok2 {
			m.Player2ID, m.Player2Alias = p2.PlayerID, p2.PlayerAlias
		}
		switch {
		case ok1 && ok2:
			m.Status = MatchReady
		case ok1 || ok2:
			m.Status = MatchBye
			if ok1 {
				m.WinnerID, m.WinnerAlias = p1.PlayerID, p1.PlayerAlias
			} else {
				m.WinnerID, m.WinnerAlias = p2.PlayerID, p2.PlayerAlias
			}
			at := now
			m.CompletedAt = &at
		}
	}

	for i := 0; i < size/2; i++ {
		if matches[i].Status == MatchBye && total > 1 {
			advance(matches, matches[i])
		}
	}
	return matches, nil
}

// Outcome describes what a reported result changed.
type Outcome struct {
	Updated    []BracketMatch
	Final      bool
	WinnerID   string
	RunnerUpID string
}

// ReportResult completes a ready match and moves the winner forward.
func ReportResult(matches []BracketMatch, matchID, winnerID, duelID string, now time.Time) (Outcome, error) {
	idx := -1
	for i := range matches {
		if matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Outcome{}, ErrMatchNotFound
	}

	m := matches[idx]
	if m.Status != MatchReady {
		return Outcome{}, fmt.Errorf("%w: status=%s", ErrMatchNotReady, m.Status)
	}
	if !m.HasPlayer(winnerID) {
		return Outcome{}, ErrInvalidWinner
	}

	if m.Player1ID == winnerID {
		m.WinnerID, m.WinnerAlias = m.Player1ID, m.Player1Alias
		m.LoserID, m.LoserAlias = m.Player2ID, m.Player2Alias
	} else {
		m.WinnerID, m.WinnerAlias = m.Player2ID, m.Player2Alias
		m.LoserID, m.LoserAlias = m.Player1ID, m.Player1Alias
	}
	m.DuelID = duelID
	m.Status = MatchCompleted
	at := now
	m.CompletedAt = &at
	matches[idx] = m

	out := Outcome{Updated: []BracketMatch{m}}
	lastRound := 0
	for _, x := range matches {
		if x.Round > lastRound {
			lastRound = x.Round
		}
	}
	if m.Round == lastRound {
		out.Final = true
		out.WinnerID = m.WinnerID
		out.RunnerUpID = m.LoserID
		return out, nil
	}

	if next, ok := advance(matches, m); ok {
		out.Updated = append(out.Updated, next)
	}
	return out, nil
}

// advance seats the winner of m in the following round and returns the
// updated next match.
func advance(matches []BracketMatch, m BracketMatch) (BracketMatch, bool) {
	nextPos := (m.Position + 1) / 2
	for i := range matches {
		n := &matches[i]
		if n.Round != m.Round+1 || n.Position != nextPos {
			continue
		}
		if m.Position%2 == 1 {
			n.Player1ID, n.Player1Alias = m.WinnerID, m.WinnerAlias
		} else {
			n.Player2ID, n.Player2Alias = m.WinnerID, m.WinnerAlias
		}
		if n.Player1ID != "" && n.Player2ID != "" && n.Status == MatchPending {
			n.Status = MatchReady
		}
		return *n, true
	}
	return BracketMatch{}, false
}
