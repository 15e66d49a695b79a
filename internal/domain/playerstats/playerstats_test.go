package playerstats

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `PlayerName,Team,Kills,Deaths,Captures,CarrierKills,CarryTimeSeconds,GameLengthMinutes,Result,MostPlayedClass,ClassSwaps,TurretDamage,GameMode,Side,BaseUsed,Accuracy,AvgResourceUnusedPerDeath,AvgExplosiveUnusedPerDeath,EBHits,LeftEarly
Alpha,AP T,10,2,1,0,30,22.5,Win,Infantry,1,0,OvD,offense,D7,0.412,1.5,0.25,3,No
Bravo,AP C,4,6,0,1,0,22.5,Loss,Heavy,0,120,OvD,defense,D7,0.300,0,0,0,Yes
broken,row
Charlie,BDS T,7,7,0,0,0,22.5,Loss,Medic,2,0,OvD,OFFENSE,D7,abc,0,0,1,No
`

func TestParseCSV(t *testing.T) {
	t.Parallel()

	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].PlayerName != "Alpha" || rows[0].Kills != 10 || rows[0].MainClass != "Infantry" || rows[0].Accuracy != 0.412 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if !rows[1].LeftEarly || rows[1].Side != SideDefense {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	if rows[2].Side != SideOffense || rows[2].Accuracy != 0 {
		t.Fatalf("unexpected third row: %+v", rows[2])
	}
}

func TestParseCSV_MissingHeaders(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("PlayerName,Team\nA,B\n"))
	if !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("expected ErrMissingHeaders, got %v", err)
	}
	if !strings.Contains(err.Error(), "Kills") || strings.Contains(err.Error(), "PlayerName,") {
		t.Fatalf("error should list only missing headers: %v", err)
	}
}

func TestApplyTeamResults(t *testing.T) {
	t.Parallel()

	rows := ApplyTeamResults([]GameStat{
		{PlayerName: "a", Team: "AP T", Result: ResultLoss},
		{PlayerName: "b", Team: "AP C", Result: ResultWin},
		{PlayerName: "c", Team: "BDS T", Result: ResultLoss},
		{PlayerName: "d", Team: "Solo", Result: ResultWin},
	})
	if rows[0].Result != ResultWin || rows[1].Result != ResultWin {
		t.Fatalf("AP roster should be winners: %+v", rows[:2])
	}
	if rows[2].Result != ResultLoss || rows[3].Result != ResultWin {
		t.Fatalf("unexpected results: %+v", rows[2:])
	}
}

func TestGeneratedGameID(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if got := GeneratedGameID(at); got != "Tournament_20260304_1772600767" {
		t.Fatalf("unexpected game id: %s", got)
	}
}

func ovdTeam(game, team string, sides ...string) []GameStat {
	out := make([]GameStat, 0, len(sides))
	for i, s := range sides {
		out = append(out, GameStat{GameID: game, Team: team, GameMode: ModeOvD, Side: s, PlayerName: team + string(rune('a'+i))})
	}
	return out
}

func TestRepairOvDSides_FiveAPerSide(t *testing.T) {
	t.Parallel()

	var rows []GameStat
	rows = append(rows, ovdTeam("g1", "Red", SideOffense, SideOffense, SideOffense, SideDefense, SideDefense)...)
	rows = append(rows, ovdTeam("g1", "Blue", SideDefense, SideDefense, SideDefense, SideDefense, SideOffense)...)
	rows = append(rows, ovdTeam("g1", "Spec", SideOffense, SideOffense, SideOffense, SideDefense, SideDefense, SideNA)...)
	rows = append(rows, ovdTeam("g1", "Short", SideOffense, SideDefense)...)

	fixes := RepairOvDSides(rows)
	if len(fixes) != 2+1+2 {
		t.Fatalf("unexpected fix count: %d", len(fixes))
	}

	perSide := map[string]map[string]int{}
	for _, r := range rows {
		if perSide[r.Team] == nil {
			perSide[r.Team] = map[string]int{}
		}
		perSide[r.Team][r.Side]++
	}
	if perSide["Red"][SideOffense] != 5 || perSide["Blue"][SideDefense] != 5 || perSide["Spec"][SideOffense] != 5 {
		t.Fatalf("full teams must end on one side: %+v", perSide)
	}
	if perSide["Spec"][SideNA] != 1 {
		t.Fatalf("rows without a side must keep it: %+v", perSide["Spec"])
	}
	if perSide["Short"][SideOffense] != 1 || perSide["Short"][SideDefense] != 1 {
		t.Fatalf("short team must be untouched: %+v", perSide["Short"])
	}

	if again := RepairOvDSides(rows); len(again) != 0 {
		t.Fatalf("repair should be idempotent, got %d fixes", len(again))
	}
}

func TestRepairOvDSides_SkipsTeamsWithoutFiveSidedRows(t *testing.T) {
	t.Parallel()

	var rows []GameStat
	rows = append(rows, ovdTeam("g3", "Unknown", SideNA, SideNA, SideNA, SideNA, SideNA)...)
	rows = append(rows, ovdTeam("g3", "Partial", SideOffense, SideOffense, SideDefense, SideDefense, SideNA)...)

	if fixes := RepairOvDSides(rows); len(fixes) != 0 {
		t.Fatalf("expected no fixes, got %+v", fixes)
	}
	for _, r := range rows {
		if r.Team == "Unknown" && r.Side != SideNA {
			t.Fatalf("N/A team must not be forced onto a side: %+v", r)
		}
	}
}

func TestRepairOvDSides_IgnoresOtherModes(t *testing.T) {
	t.Parallel()

	rows := ovdTeam("g2", "Red", SideOffense, SideOffense, SideOffense, SideDefense, SideDefense)
	for i := range rows {
		rows[i].GameMode = "Pub"
	}
	if fixes := RepairOvDSides(rows); len(fixes) != 0 {
		t.Fatalf("non-OvD rows must not be repaired")
	}
}

func TestPrepareImport(t *testing.T) {
	t.Parallel()

	rows := ovdTeam("", "AP T", SideOffense, SideOffense, SideOffense, SideDefense, SideDefense)
	rows[0].Result = ResultWin
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	got, fixes := PrepareImport(rows, ImportOptions{GameDate: at}, func(time.Time) string { return "Q3-2026" })
	if len(fixes) != 2 {
		t.Fatalf("expected 2 side fixes, got %d", len(fixes))
	}
	for _, r := range got {
		if r.GameID != GeneratedGameID(at) || r.Season != "Q3-2026" || r.Result != ResultWin || r.ArenaName != Unknown {
			t.Fatalf("unexpected prepared row: %+v", r)
		}
	}
	if rows[0].GameID != "" {
		t.Fatalf("input rows must not be mutated")
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	got := Sanitize(GameStat{PlayerName: "Bad,Name", Kills: -3, Accuracy: 1.7, AvgResourceUnusedPerDeath: -1})
	if got.PlayerName != "BadName" || got.Kills != 0 || got.Accuracy != 1 || got.AvgResourceUnusedPerDeath != 0 {
		t.Fatalf("unexpected sanitized row: %+v", got)
	}
	if got.Team != Unknown || got.Side != SideNA || got.Result != ResultLoss || got.MainClass != Unknown {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	agg := Summarize([]GameStat{
		{PlayerName: "Ace", Result: ResultWin, Kills: 10, Deaths: 5, Accuracy: 0.5},
		{PlayerName: "ace", Result: ResultLoss, Kills: 2, Deaths: 3, Accuracy: 0.3},
	})["ace"]
	if agg.TotalGames != 2 || agg.Wins != 1 || agg.Losses != 1 || agg.Kills != 12 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if agg.KillDeathRatio() != 1.5 || agg.AvgAccuracy < 0.399 || agg.AvgAccuracy > 0.401 {
		t.Fatalf("unexpected ratios: %+v", agg)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	problems := Validate([]GameStat{{PlayerName: "", Team: "A", Result: ResultWin, GameLengthMinutes: 1}, {PlayerName: "b", Team: "A", Result: "Draw"}})
	if len(problems) != 3 {
		t.Fatalf("unexpected problems: %v", problems)
	}
}
