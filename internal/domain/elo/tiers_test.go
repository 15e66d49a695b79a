package elo

import "testing"

func TestTierFor(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		0:    "Unranked",
		999:  "Unranked",
		1000: "Bronze",
		1199: "Bronze",
		1200: "Silver",
		1450: "Gold",
		1799: "Platinum",
		1800: "Diamond",
		2000: "Master",
		2399: "Grandmaster",
		2400: "Legend",
		5000: "Legend",
	}
	for rating, want := range cases {
		if got := TierFor(rating).Name; got != want {
			t.Fatalf("rating %d: got=%s want=%s", rating, got, want)
		}
	}
}

func TestConfidenceLabel(t *testing.T) {
	t.Parallel()

	if ConfidenceLabel(0.8) != "High" || ConfidenceLabel(0.5) != "Medium" || ConfidenceLabel(0.49) != "Low" {
		t.Fatalf("unexpected confidence labels")
	}
}

func TestLeaderboardQuery_Normalize(t *testing.T) {
	t.Parallel()

	q := LeaderboardQuery{SortBy: "drop table", Ascending: true, Limit: 500, Offset: -3, MinGames: -1}.Normalize()
	if q.GameMode != ModeCombined || q.SortBy != DefaultSortBy || q.Ascending {
		t.Fatalf("unexpected defaults: %+v", q)
	}
	if q.Limit != MaxLeaderboardLimit || q.Offset != 0 || q.MinGames != 0 {
		t.Fatalf("unexpected bounds: %+v", q)
	}

	q = LeaderboardQuery{SortBy: "win_rate", Ascending: true}.Normalize()
	if q.SortBy != "win_rate" || !q.Ascending || q.Limit != DefaultLeaderboardLimit {
		t.Fatalf("unexpected normalized query: %+v", q)
	}
}
