package squad

import "fmt"

// CapacityCheck is the outcome of a roster size check for one candidate.
type CapacityCheck struct {
	Allowed           bool
	Reason            string
	RegularCount      int
	TransitionalCount int
	MaxMembers        int
}

// CountMembers splits active members into regular and transitional players.
func CountMembers(members []Member) (regular, transitional int) {
	for _, m := range members {
		if m.Status != MemberStatusActive {
			continue
		}
		if m.Transitional {
			transitional++
			continue
		}
		regular++
	}
	return regular, transitional
}

// CheckCapacity decides whether a candidate fits on the roster. Transitional
// players never count toward the limit and admins bypass it entirely.
func CheckCapacity(s Squad, members []Member, candidateTransitional, adminOverride bool) CapacityCheck {
	maxMembers := s.EffectiveMaxMembers()
	regular, transitional := CountMembers(members)
	out := CapacityCheck{
		RegularCount:      regular,
		TransitionalCount: transitional,
		MaxMembers:        maxMembers,
	}

	switch {
	case adminOverride:
		out.Allowed = true
		out.Reason = "Admin override - no limits apply"
	case candidateTransitional:
		out.Allowed = true
		out.Reason = "Transitional player - exempt from squad size limits"
		out.TransitionalCount++
	case regular >= maxMembers:
		out.Reason = fmt.Sprintf("Squad at capacity for regular players (%d/%d)", regular, maxMembers)
		if transitional > 0 {
			out.Reason += fmt.Sprintf(" [+%d transitional]", transitional)
		}
	default:
		out.Allowed = true
		out.Reason = fmt.Sprintf("Within limits (%d/%d regular players)", regular+1, maxMembers)
		out.RegularCount++
	}

	return out
}

// MemberCountDisplay renders "r/max members (+t transitional)".
func MemberCountDisplay(s Squad, members []Member) string {
	regular, transitional := CountMembers(members)
	if transitional == 0 {
		return fmt.Sprintf("%d/%d members", regular, s.EffectiveMaxMembers())
	}
	return fmt.Sprintf("%d/%d members (+%d transitional)", regular, s.EffectiveMaxMembers(), transitional)
}
