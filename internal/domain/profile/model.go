package profile

import (
	"strings"
	"time"
)

const CTFRoleAdmin = "ctf_admin"

type Profile struct {
	ID                 string
	Email              string
	InGameAlias        string
	AvatarURL          string
	IsAdmin            bool
	IsMediaManager     bool
	IsZoneAdmin        bool
	SiteAdmin          bool
	CTFRole            string
	RegistrationStatus string
	IsLeagueBanned     bool
	TransitionalPlayer bool
	CreatedAt          time.Time
}

// HasAdminOverride lets squad capacity and roster lock checks be bypassed.
func (p Profile) HasAdminOverride() bool {
	return p.IsAdmin || p.SiteAdmin || p.IsZoneAdmin
}

func (p Profile) IsCTFAdmin() bool {
	return p.IsAdmin || strings.EqualFold(strings.TrimSpace(p.CTFRole), CTFRoleAdmin)
}

func (p Profile) CanRateSquads() bool {
	return p.IsAdmin || p.IsMediaManager
}

// DisplayName falls back to the email when no alias was registered.
func (p Profile) DisplayName() string {
	if alias := strings.TrimSpace(p.InGameAlias); alias != "" {
		return alias
	}
	return strings.TrimSpace(p.Email)
}

type Alias struct {
	ProfileID string
	Alias     string
	IsPrimary bool
}

// NormalizeAlias is the comparison key used for alias lookups.
func NormalizeAlias(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}
