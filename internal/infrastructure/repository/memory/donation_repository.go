package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
)

type DonationRepository struct {
	mu        sync.RWMutex
	items     []donation.Transaction
	purchases []donation.ProductPurchase
}

func NewDonationRepository(items ...donation.Transaction) *DonationRepository {
	return &DonationRepository{items: append([]donation.Transaction(nil), items...)}
}

func (r *DonationRepository) indexLocked(provider donation.Provider, providerTxID string) int {
	for i, item := range r.items {
		if item.Provider == provider && item.ProviderTransactionID == providerTxID {
			return i
		}
	}
	return -1
}

func (r *DonationRepository) InsertIfAbsent(_ context.Context, t donation.Transaction) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(t.Provider, t.ProviderTransactionID) >= 0 {
		return false, nil
	}
	r.items = append(r.items, t)
	return true, nil
}

func (r *DonationRepository) CompletePending(_ context.Context, provider donation.Provider, providerTxID, paymentIntentID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(provider, providerTxID)
	if idx < 0 || r.items[idx].Status != donation.StatusPending {
		return false, nil
	}
	r.items[idx].Status = donation.StatusCompleted
	r.items[idx].PaymentIntentID = paymentIntentID
	r.items[idx].CompletedAt = &at
	return true, nil
}

func (r *DonationRepository) RecordPurchase(_ context.Context, p donation.ProductPurchase) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.purchases {
		if existing.ProviderSessionID == p.ProviderSessionID {
			return false, nil
		}
	}
	r.purchases = append(r.purchases, p)
	return true, nil
}

func (r *DonationRepository) ListRecentCompleted(_ context.Context, limit int) ([]donation.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]donation.Transaction, 0)
	for _, item := range r.items {
		if item.Status == donation.StatusCompleted {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *DonationRepository) ListSupporters(_ context.Context) ([]donation.Supporter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]*donation.Supporter)
	for _, item := range r.items {
		if item.Status != donation.StatusCompleted {
			continue
		}
		name := item.DisplayName()
		key := strings.ToLower(name)
		s, ok := byName[key]
		if !ok {
			s = &donation.Supporter{Name: name, Currency: item.Currency}
			byName[key] = s
		}
		s.TotalCents += item.AmountCents
		s.DonationCount++
		if item.CreatedAt.After(s.LastDonationAt) {
			s.LastDonationAt = item.CreatedAt
		}
	}

	out := make([]donation.Supporter, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalCents != out[j].TotalCents {
			return out[i].TotalCents > out[j].TotalCents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Purchases returns the recorded product purchases.
func (r *DonationRepository) Purchases() []donation.ProductPurchase {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]donation.ProductPurchase(nil), r.purchases...)
}
