package cache

import (
	"testing"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/donation"
	"github.com/riskibarqy/infantry-community/internal/domain/elo"
	"github.com/riskibarqy/infantry-community/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/infantry-community/internal/platform/cache"
)

func TestEloRepository_WritesInvalidateLeaderboard(t *testing.T) {
	t.Parallel()

	next := memory.NewEloRepository()
	repo := NewEloRepository(next, basecache.NewStore(time.Minute))
	query := elo.LeaderboardQuery{Season: "Q1-2026", GameMode: elo.ModeCombined}.Normalize()

	if err := repo.UpsertRatings(t.Context(), []elo.Rating{elo.NewRating("Axidus", elo.ModeCombined, "Q1-2026")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	first, err := repo.Leaderboard(t.Context(), query)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if first.Total != 1 {
		t.Fatalf("unexpected total: %d", first.Total)
	}

	// Writing around the decorator leaves the cached page in place.
	if err := next.UpsertRatings(t.Context(), []elo.Rating{elo.NewRating("Mighty", elo.ModeCombined, "Q1-2026")}); err != nil {
		t.Fatalf("upsert next: %v", err)
	}
	cached, _ := repo.Leaderboard(t.Context(), query)
	if cached.Total != 1 {
		t.Fatalf("expected cached page, got total=%d", cached.Total)
	}

	if err := repo.UpsertRatings(t.Context(), []elo.Rating{elo.NewRating("Vet", elo.ModeCombined, "Q1-2026")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	fresh, _ := repo.Leaderboard(t.Context(), query)
	if fresh.Total != 3 {
		t.Fatalf("expected reload after write, got total=%d", fresh.Total)
	}
}

func TestDonationRepository_DuplicateKeepsCache(t *testing.T) {
	t.Parallel()

	store := basecache.NewStore(time.Minute)
	repo := NewDonationRepository(memory.NewDonationRepository(), store)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tx := donation.Transaction{
		ID: "d-1", Provider: donation.ProviderKofi, ProviderTransactionID: "k-1",
		AmountCents: 500, Status: donation.StatusCompleted, CustomerName: "Axi", CreatedAt: now, CompletedAt: &now,
	}

	if _, err := repo.InsertIfAbsent(t.Context(), tx); err != nil {
		t.Fatalf("insert: %v", err)
	}
	supporters, err := repo.ListSupporters(t.Context())
	if err != nil {
		t.Fatalf("supporters: %v", err)
	}
	if len(supporters) != 1 {
		t.Fatalf("unexpected supporters: %+v", supporters)
	}

	before := store.Len()
	created, err := repo.InsertIfAbsent(t.Context(), tx)
	if err != nil || created {
		t.Fatalf("expected duplicate, created=%v err=%v", created, err)
	}
	if store.Len() != before {
		t.Fatalf("duplicates must not flush the cache")
	}
}
