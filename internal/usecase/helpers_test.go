package usecase

import (
	"fmt"
	"sync"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

func seedProfiles(aliases ...string) *memory.ProfileRepository {
	repo := memory.NewProfileRepository()
	for _, alias := range aliases {
		repo.Add(profile.Profile{ID: "user-" + alias, InGameAlias: alias, Email: alias + "@example.com"})
	}
	return repo
}
