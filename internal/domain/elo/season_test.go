package elo

import (
	"errors"
	"testing"
	"time"
)

func TestParseSeason(t *testing.T) {
	t.Parallel()

	s, err := ParseSeason("Q3-2025")
	if err != nil {
		t.Fatalf("parse season: %v", err)
	}
	if s.Quarter != 3 || s.Year != 2025 {
		t.Fatalf("unexpected season: %+v", s)
	}
	if s.Next().String() != "Q4-2025" || s.Next().Next().String() != "Q1-2026" {
		t.Fatalf("unexpected next season")
	}
	if (Season{Quarter: 1, Year: 2026}).Previous().String() != "Q4-2025" {
		t.Fatalf("unexpected previous season")
	}

	for _, raw := range []string{"Q5-2025", "q3-2025", "2025-Q3", ""} {
		if _, err := ParseSeason(raw); !errors.Is(err, ErrInvalidSeason) {
			t.Fatalf("expected ErrInvalidSeason for %q, got %v", raw, err)
		}
	}
}

func TestCurrentSeason(t *testing.T) {
	t.Parallel()

	cases := map[time.Month]string{
		time.January:   "Q1-2026",
		time.March:     "Q1-2026",
		time.April:     "Q2-2026",
		time.September: "Q3-2026",
		time.December:  "Q4-2026",
	}
	for month, want := range cases {
		if got := CurrentSeason(time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC)); got != want {
			t.Fatalf("month %s: got=%s want=%s", month, got, want)
		}
	}
}

func TestSeason_Bounds(t *testing.T) {
	t.Parallel()

	start, end := Season{Quarter: 4, Year: 2025}.Bounds()
	if !start.Equal(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected bounds: %v %v", start, end)
	}
}

func TestTransition(t *testing.T) {
	t.Parallel()

	got := Transition([]Rating{
		{PlayerName: "top", GameMode: ModeCombined, Season: "Q2-2025", Rating: 2200, Peak: 2300, Confidence: 0.9, GamesPlayed: 80, Wins: 60, Losses: 20},
		{PlayerName: "low", GameMode: ModeOvD, Season: "Q2-2025", Rating: 800, Confidence: 0.4},
	}, "Q3-2025")

	if len(got) != 2 {
		t.Fatalf("unexpected transition count: %d", len(got))
	}
	if !almost(got[0].Rating, 1350) || got[0].Peak != got[0].Rating {
		t.Fatalf("unexpected carried rating: %+v", got[0])
	}
	if got[0].GamesPlayed != 0 || got[0].Wins != 0 || got[0].Losses != 0 {
		t.Fatalf("counters must reset: %+v", got[0])
	}
	if !almost(got[0].Confidence, 0.45) || got[0].Season != "Q3-2025" {
		t.Fatalf("unexpected confidence or season: %+v", got[0])
	}
	if !almost(got[1].Rating, 1140) || got[1].GameMode != ModeOvD {
		t.Fatalf("unexpected low rating: %+v", got[1])
	}
}
