package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

func runAdmin(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func useMemoryStorage(t *testing.T) {
	t.Helper()

	t.Setenv("APP_ENV", "dev")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("QSTASH_ENABLED", "false")
	t.Setenv("DISCORD_WEBHOOK_URL", "")
}

func writeStatsCSV(t *testing.T, name string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(playerstats.RequiredHeaders, ","))
	b.WriteString("\n")
	rows := []struct{ name, team, side, result string }{
		{"Axidus", "Titan Strike T", "offense", "Win"},
		{"Sid", "Titan Strike T", "offense", "Win"},
		{"Vet", "Titan Strike T", "offense", "Win"},
		{"Mako", "Titan Strike T", "defense", "Win"},
		{"Rex", "Titan Strike T", "offense", "Win"},
		{"Mighty", "Collective C", "defense", "Loss"},
		{"Blur", "Collective C", "defense", "Loss"},
		{"Dax", "Collective C", "offense", "Loss"},
		{"Kite", "Collective C", "defense", "Loss"},
		{"Zed", "Collective C", "defense", "Loss"},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%s,10,4,1,2,30,25,%s,Infantry,1,0,OvD,%s,D,0.41,0.5,0.2,3,No\n",
			r.name, r.team, r.result, r.side)
	}

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestImportStats_RejectsGameIDForSeveralFiles(t *testing.T) {
	t.Parallel()

	_, err := runAdmin(t, "import-stats", "a.csv", "b.csv", "--game-id", "g-1")
	if err == nil || !strings.Contains(err.Error(), "--game-id") {
		t.Fatalf("expected --game-id error, got %v", err)
	}
}

func TestImportStats_RejectsBadDate(t *testing.T) {
	t.Parallel()

	_, err := runAdmin(t, "import-stats", "a.csv", "--date", "05/02/2026")
	if err == nil || !strings.Contains(err.Error(), "--date") {
		t.Fatalf("expected --date error, got %v", err)
	}
}

func TestImportStats_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := runAdmin(t, "import-stats", filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil || !strings.Contains(err.Error(), "open") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestSeasonTransition_RequiresTo(t *testing.T) {
	t.Parallel()

	_, err := runAdmin(t, "season-transition")
	if err == nil || !strings.Contains(err.Error(), "to") {
		t.Fatalf("expected required flag error, got %v", err)
	}
}

func TestImportStats_MemoryStorageJSON(t *testing.T) {
	useMemoryStorage(t)

	path := writeStatsCSV(t, "match.csv")
	out, err := runAdmin(t, "--json", "import-stats", path, "--game-id", "Game_20260502_1", "--date", "2026-05-02")
	if err != nil {
		t.Fatalf("import-stats: %v", err)
	}

	var results []usecase.ImportStatsResult
	if err := sonic.UnmarshalString(out, &results); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(results) != 1 || results[0].GameID != "Game_20260502_1" || results[0].Rows != 10 {
		t.Fatalf("unexpected import result: %+v", results)
	}
	if len(results[0].SideFixes) == 0 {
		t.Fatalf("expected split OvD teams to be repaired, got %+v", results[0])
	}
}

func TestFixOvDSides_DryRunOnEmptyStorage(t *testing.T) {
	useMemoryStorage(t)

	out, err := runAdmin(t, "--json", "fix-ovd-sides", "--dry-run")
	if err != nil {
		t.Fatalf("fix-ovd-sides: %v", err)
	}

	var result usecase.RepairSidesResult
	if err := sonic.UnmarshalString(out, &result); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !result.DryRun || result.Games != 0 || len(result.Fixes) != 0 {
		t.Fatalf("unexpected repair result: %+v", result)
	}
}
