package playerstats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var ErrMissingHeaders = errors.New("missing CSV headers")

var RequiredHeaders = []string{
	"PlayerName", "Team", "Kills", "Deaths", "Captures", "CarrierKills",
	"CarryTimeSeconds", "GameLengthMinutes", "Result", "MostPlayedClass",
	"ClassSwaps", "TurretDamage", "GameMode", "Side", "BaseUsed", "Accuracy",
	"AvgResourceUnusedPerDeath", "AvgExplosiveUnusedPerDeath", "EBHits", "LeftEarly",
}

type ImportOptions struct {
	GameID    string
	GameDate  time.Time
	ArenaName string
	Season    string
}

// ParseCSV reads an exported game sheet. Rows whose column count does not
// match the header are skipped.
func ParseCSV(r io.Reader) ([]GameStat, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(RequiredHeaders, ", "))
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, h := range RequiredHeaders {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	var rows []GameStat
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) != len(header) {
			continue
		}

		get := func(col string) string { return strings.TrimSpace(record[index[col]]) }
		rows = append(rows, GameStat{
			PlayerName:                 get("PlayerName"),
			Team:                       get("Team"),
			Kills:                      atoi(get("Kills")),
			Deaths:                     atoi(get("Deaths")),
			Captures:                   atoi(get("Captures")),
			CarrierKills:               atoi(get("CarrierKills")),
			CarryTimeSeconds:           atoi(get("CarryTimeSeconds")),
			GameLengthMinutes:          atof(get("GameLengthMinutes")),
			Result:                     NormalizeResult(get("Result")),
			MainClass:                  get("MostPlayedClass"),
			ClassSwaps:                 atoi(get("ClassSwaps")),
			TurretDamage:               atoi(get("TurretDamage")),
			GameMode:                   get("GameMode"),
			Side:                       NormalizeSide(get("Side")),
			BaseUsed:                   get("BaseUsed"),
			Accuracy:                   atof(get("Accuracy")),
			AvgResourceUnusedPerDeath:  atof(get("AvgResourceUnusedPerDeath")),
			AvgExplosiveUnusedPerDeath: atof(get("AvgExplosiveUnusedPerDeath")),
			EBHits:                     atoi(get("EBHits")),
			LeftEarly:                  get("LeftEarly") == "Yes",
		})
	}
	return rows, nil
}

// GeneratedGameID names an imported game when none is supplied.
func GeneratedGameID(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("Tournament_%s_%d", at.Format("20060102"), at.Unix())
}

// PrepareImport stamps game metadata, unifies team results and repairs OvD
// sides. It returns the side fixes applied.
func PrepareImport(rows []GameStat, opts ImportOptions, season func(time.Time) string) ([]GameStat, []SideFix) {
	gameDate := opts.GameDate
	if gameDate.IsZero() {
		gameDate = time.Now().UTC()
	}
	gameID := strings.TrimSpace(opts.GameID)
	if gameID == "" {
		gameID = GeneratedGameID(gameDate)
	}
	seasonName := strings.TrimSpace(opts.Season)
	if seasonName == "" && season != nil {
		seasonName = season(gameDate)
	}

	out := ApplyTeamResults(rows)
	for i := range out {
		out[i].GameID = gameID
		out[i].GameDate = gameDate
		out[i].Season = seasonName
		if out[i].BaseUsed == "" {
			out[i].BaseUsed = Unknown
		}
		if opts.ArenaName != "" {
			out[i].ArenaName = opts.ArenaName
		} else if out[i].ArenaName == "" {
			out[i].ArenaName = Unknown
		}
	}
	fixes := RepairOvDSides(out)
	return out, fixes
}

// TeamBaseName strips the " T"/" C" suffix used for the two halves of one
// roster. The second result is false for teams without a suffix.
func TeamBaseName(team string) (string, bool) {
	team = strings.TrimSpace(team)
	if strings.HasSuffix(team, " T") || strings.HasSuffix(team, " C") {
		return strings.TrimSpace(team[:len(team)-2]), true
	}
	return "", false
}

// ApplyTeamResults gives every row of a suffixed team the same result; a
// single Win marks the whole team as winners.
func ApplyTeamResults(rows []GameStat) []GameStat {
	results := make(map[string]string)
	for _, r := range rows {
		base, ok := TeamBaseName(r.Team)
		if !ok || r.Result == "" {
			continue
		}
		if existing, seen := results[base]; !seen || (existing != r.Result && r.Result == ResultWin) {
			results[base] = r.Result
		}
	}

	out := append([]GameStat(nil), rows...)
	for i := range out {
		base, ok := TeamBaseName(out[i].Team)
		if !ok {
			continue
		}
		if res, seen := results[base]; seen {
			out[i].Result = res
		}
	}
	return out
}

// Validate reports row-level problems in an import.
func Validate(rows []GameStat) []string {
	var problems []string
	for i, r := range rows {
		n := i + 1
		if strings.TrimSpace(r.PlayerName) == "" {
			problems = append(problems, fmt.Sprintf("Row %d: Player name is required", n))
		}
		if strings.TrimSpace(r.Team) == "" {
			problems = append(problems, fmt.Sprintf("Row %d: Team is required", n))
		}
		if r.Kills < 0 || r.Deaths < 0 {
			problems = append(problems, fmt.Sprintf("Row %d: Kills and deaths cannot be negative", n))
		}
		if r.Result != ResultWin && r.Result != ResultLoss {
			problems = append(problems, fmt.Sprintf("Row %d: Result must be 'Win' or 'Loss'", n))
		}
		if r.GameLengthMinutes <= 0 {
			problems = append(problems, fmt.Sprintf("Row %d: Game length must be positive", n))
		}
	}
	return problems
}

func atoi(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

func atof(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
