package squad

import (
	"testing"
	"time"
)

func roster(regular, transitional int) []Member {
	out := make([]Member, 0, regular+transitional)
	for i := 0; i < regular; i++ {
		out = append(out, Member{PlayerID: "r", Status: MemberStatusActive, Role: RolePlayer})
	}
	for i := 0; i < transitional; i++ {
		out = append(out, Member{PlayerID: "t", Status: MemberStatusActive, Role: RolePlayer, Transitional: true})
	}
	// departed members never count
	out = append(out, Member{PlayerID: "gone", Status: MemberStatusLeft})
	return out
}

func TestCheckCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		squad        Squad
		members      []Member
		transitional bool
		admin        bool
		wantAllowed  bool
		wantReason   string
	}{
		{
			name:        "within limits",
			squad:       Squad{MaxMembers: 15},
			members:     roster(3, 0),
			wantAllowed: true,
			wantReason:  "Within limits (4/15 regular players)",
		},
		{
			name:        "default max applies",
			members:     roster(15, 0),
			wantAllowed: false,
			wantReason:  "Squad at capacity for regular players (15/15)",
		},
		{
			name:        "full with transitional suffix",
			squad:       Squad{MaxMembers: 2},
			members:     roster(2, 3),
			wantAllowed: false,
			wantReason:  "Squad at capacity for regular players (2/2) [+3 transitional]",
		},
		{
			name:         "transitional exempt",
			squad:        Squad{MaxMembers: 2},
			members:      roster(2, 0),
			transitional: true,
			wantAllowed:  true,
			wantReason:   "Transitional player - exempt from squad size limits",
		},
		{
			name:        "admin override",
			squad:       Squad{MaxMembers: 1},
			members:     roster(5, 0),
			admin:       true,
			wantAllowed: true,
			wantReason:  "Admin override - no limits apply",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CheckCapacity(tc.squad, tc.members, tc.transitional, tc.admin)
			if got.Allowed != tc.wantAllowed {
				t.Fatalf("allowed mismatch: got=%v want=%v", got.Allowed, tc.wantAllowed)
			}
			if got.Reason != tc.wantReason {
				t.Fatalf("reason mismatch: got=%q want=%q", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestCheckCapacity_ProjectedCounts(t *testing.T) {
	t.Parallel()

	got := CheckCapacity(Squad{MaxMembers: 10}, roster(4, 1), true, false)
	if got.RegularCount != 4 || got.TransitionalCount != 2 {
		t.Fatalf("unexpected transitional projection: %+v", got)
	}
	got = CheckCapacity(Squad{MaxMembers: 10}, roster(4, 1), false, false)
	if got.RegularCount != 5 || got.TransitionalCount != 1 {
		t.Fatalf("unexpected regular projection: %+v", got)
	}
}

func TestMemberCountDisplay(t *testing.T) {
	t.Parallel()

	if got := MemberCountDisplay(Squad{MaxMembers: 20}, roster(3, 0)); got != "3/20 members" {
		t.Fatalf("unexpected display: %q", got)
	}
	if got := MemberCountDisplay(Squad{}, roster(3, 2)); got != "3/15 members (+2 transitional)" {
		t.Fatalf("unexpected display: %q", got)
	}
}

func TestSuccessor_PrefersCaptainThenSeniorCoCaptain(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []Member{
		{PlayerID: "leaving", Role: RoleCaptain, Status: MemberStatusActive, JoinedAt: base},
		{PlayerID: "newer-co", Role: RoleCoCaptain, Status: MemberStatusActive, JoinedAt: base.Add(48 * time.Hour)},
		{PlayerID: "older-co", Role: RoleCoCaptain, Status: MemberStatusActive, JoinedAt: base.Add(24 * time.Hour)},
		{PlayerID: "grunt", Role: RolePlayer, Status: MemberStatusActive, JoinedAt: base},
	}

	got, ok := Successor(members, "leaving")
	if !ok || got.PlayerID != "older-co" {
		t.Fatalf("expected older-co, got %+v ok=%v", got, ok)
	}

	if _, ok := Successor(members[3:], "leaving"); ok {
		t.Fatalf("plain players must not be picked as successor")
	}
}

func TestSquad_CountsTowardActiveLimit(t *testing.T) {
	t.Parallel()

	if !(Squad{IsActive: true}).CountsTowardActiveLimit() {
		t.Fatalf("active squad should count")
	}
	if (Squad{IsActive: true, IsLegacy: true}).CountsTowardActiveLimit() {
		t.Fatalf("legacy squad should not count")
	}
}
