package profile

import "testing"

func TestProfile_Permissions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		profile       Profile
		adminOverride bool
		ctfAdmin      bool
		rateSquads    bool
	}{
		{name: "regular player", profile: Profile{}},
		{name: "site admin", profile: Profile{SiteAdmin: true}, adminOverride: true},
		{name: "zone admin", profile: Profile{IsZoneAdmin: true}, adminOverride: true},
		{name: "ctf admin role", profile: Profile{CTFRole: " CTF_Admin "}, ctfAdmin: true},
		{name: "media manager", profile: Profile{IsMediaManager: true}, rateSquads: true},
		{name: "admin", profile: Profile{IsAdmin: true}, adminOverride: true, ctfAdmin: true, rateSquads: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.HasAdminOverride(); got != tc.adminOverride {
				t.Fatalf("HasAdminOverride=%v want %v", got, tc.adminOverride)
			}
			if got := tc.profile.IsCTFAdmin(); got != tc.ctfAdmin {
				t.Fatalf("IsCTFAdmin=%v want %v", got, tc.ctfAdmin)
			}
			if got := tc.profile.CanRateSquads(); got != tc.rateSquads {
				t.Fatalf("CanRateSquads=%v want %v", got, tc.rateSquads)
			}
		})
	}
}

func TestProfile_DisplayName(t *testing.T) {
	t.Parallel()

	if got := (Profile{InGameAlias: "Axidus", Email: "a@example.com"}).DisplayName(); got != "Axidus" {
		t.Fatalf("unexpected display name: %s", got)
	}
	if got := (Profile{Email: "a@example.com"}).DisplayName(); got != "a@example.com" {
		t.Fatalf("unexpected fallback display name: %s", got)
	}
}
