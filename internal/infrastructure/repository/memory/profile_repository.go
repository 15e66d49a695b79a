package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/infantry-community/internal/domain/profile"
)

type ProfileRepository struct {
	mu      sync.RWMutex
	items   map[string]profile.Profile
	aliases []profile.Alias
}

func NewProfileRepository(profiles ...profile.Profile) *ProfileRepository {
	r := &ProfileRepository{items: make(map[string]profile.Profile, len(profiles))}
	for _, p := range profiles {
		r.Add(p)
	}
	return r
}

// Add stores the profile and registers its in-game alias as primary.
func (r *ProfileRepository) Add(p profile.Profile, extraAliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.ID] = p
	if alias := strings.TrimSpace(p.InGameAlias); alias != "" {
		r.aliases = append(r.aliases, profile.Alias{ProfileID: p.ID, Alias: alias, IsPrimary: true})
	}
	for _, alias := range extraAliases {
		r.aliases = append(r.aliases, profile.Alias{ProfileID: p.ID, Alias: alias})
	}
}

func (r *ProfileRepository) GetByID(_ context.Context, id string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	return p, ok, nil
}

func (r *ProfileRepository) GetByEmail(_ context.Context, email string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, p := range r.items {
		if email != "" && strings.EqualFold(p.Email, email) {
			return p, true, nil
		}
	}
	return profile.Profile{}, false, nil
}

func (r *ProfileRepository) FindByAlias(_ context.Context, alias string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := profile.NormalizeAlias(alias)
	if key == "" {
		return profile.Profile{}, false, nil
	}
	for _, a := range r.aliases {
		if profile.NormalizeAlias(a.Alias) == key {
			p, ok := r.items[a.ProfileID]
			return p, ok, nil
		}
	}
	return profile.Profile{}, false, nil
}

func (r *ProfileRepository) ListByIDs(_ context.Context, ids []string) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProfileRepository) ListAliases(_ context.Context, profileID string) ([]profile.Alias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]profile.Alias, 0)
	for _, a := range r.aliases {
		if a.ProfileID == profileID {
			out = append(out, a)
		}
	}
	return out, nil
}
