package season

import "testing"

func TestSeason_Label(t *testing.T) {
	t.Parallel()

	cases := []struct {
		season Season
		want   string
	}{
		{Season{League: "ctfpl", Number: 3, Name: "Spring Split"}, "CTFPL Season 3 (Spring Split)"},
		{Season{League: "CTFPL", Number: 4}, "CTFPL Season 4"},
		{Season{League: "ctfdl", LeagueName: "CTFDL", Number: 5}, "CTFDL Season 5"},
		{Season{League: "other"}, "League"},
	}
	for _, tc := range cases {
		if got := tc.season.Label(); got != tc.want {
			t.Fatalf("label mismatch: got=%q want=%q", got, tc.want)
		}
	}
}

func TestResolveLockStatus(t *testing.T) {
	t.Parallel()

	s := Season{ID: "s1", League: LeagueCTFPL, Number: 2}
	got := ResolveLockStatus(s, RosterLock{SeasonID: "s1", IsLocked: true, Reason: "Playoffs"}, true)
	if !got.IsLocked || got.Reason != "Playoffs" || got.LockedLabel != "CTFPL Season 2" {
		t.Fatalf("unexpected lock status: %+v", got)
	}

	got = ResolveLockStatus(s, RosterLock{}, false)
	if got.IsLocked || got.SeasonID != "" {
		t.Fatalf("missing lock row must be unlocked: %+v", got)
	}
}
