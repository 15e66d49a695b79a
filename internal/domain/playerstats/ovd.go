package playerstats

// SideFix records one row moved to its team's majority side.
type SideFix struct {
	GameID     string
	Team       string
	PlayerName string
	From       string
	To         string
}

// RepairOvDSides puts every full OvD team on a single side. A team qualifies
// when exactly OvDTeamSize of its rows are offense or defense and they are
// split; those rows move to the majority side. Rows with any other side are
// left alone. rows is modified in place.
func RepairOvDSides(rows []GameStat) []SideFix {
	type teamKey struct{ game, team string }
	groups := make(map[teamKey][]int)
	order := make([]teamKey, 0)
	for i, r := range rows {
		if r.GameMode != ModeOvD {
			continue
		}
		k := teamKey{r.GameID, r.Team}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	var fixes []SideFix
	for _, k := range order {
		idx := groups[k]
		offense, defense := 0, 0
		for _, i := range idx {
			switch rows[i].Side {
			case SideOffense:
				offense++
			case SideDefense:
				defense++
			}
		}
		if offense+defense != OvDTeamSize || offense == 0 || defense == 0 {
			continue
		}

		target := SideOffense
		if defense > offense {
			target = SideDefense
		}
		for _, i := range idx {
			if rows[i].Side == target || (rows[i].Side != SideOffense && rows[i].Side != SideDefense) {
				continue
			}
			fixes = append(fixes, SideFix{
				GameID:     rows[i].GameID,
				Team:       rows[i].Team,
				PlayerName: rows[i].PlayerName,
				From:       rows[i].Side,
				To:         target,
			})
			rows[i].Side = target
		}
	}
	return fixes
}
