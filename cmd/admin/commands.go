package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/infantry-community/internal/app"
	"github.com/riskibarqy/infantry-community/internal/domain/playerstats"
	"github.com/riskibarqy/infantry-community/internal/usecase"
)

func newRecalculateEloCmd(opts *rootOptions) *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "recalculate-elo",
		Short: "Rebuild ELO ratings for a season from stored games and duels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Services.Jobs.RunEloRecalculation(ctx, usecase.EloJobInput{
					Season:     season,
					DispatchID: "admin-" + time.Now().UTC().Format("20060102T150405"),
				})
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}

				out := cmd.OutOrStdout()
				printTitle(out, "ELO recalculation "+result.Season)
				for _, mode := range result.GameModes {
					printKV(out, mode.GameMode, fmt.Sprintf("%d games, %d players", mode.Games, mode.Players))
				}
				printSuccess(out, "%d ratings written in %dms", result.TotalRatings, result.DurationMs)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "season to rebuild, e.g. Q3-2025 (default current)")
	return cmd
}

func newSeasonTransitionCmd(opts *rootOptions) *cobra.Command {
	var (
		to    string
		from  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "season-transition",
		Short: "Carry ELO ratings into a new season",
		Long:  "Computes the carried-over ratings for the target season. Without --force only a preview is printed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Services.Elo.TransitionSeason(ctx, usecase.TransitionSeasonInput{
					FromSeason: from,
					ToSeason:   to,
					Force:      force,
				})
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}

				out := cmd.OutOrStdout()
				printTitle(out, fmt.Sprintf("Season transition %s -> %s", result.FromSeason, result.ToSeason))
				for _, p := range result.Preview {
					printKV(out, p.PlayerName, fmt.Sprintf("[%s] %.1f -> %.1f", p.GameMode, p.OldRating, p.NewRating))
				}
				if result.DryRun {
					printWarn(fmt.Sprintf("dry run: %d ratings would be carried over, rerun with --force to apply", result.Players))
					return nil
				}
				printSuccess(out, "%d ratings carried over", result.Players)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target season, e.g. Q1-2026")
	cmd.Flags().StringVar(&from, "from", "", "source season (default the quarter before --to)")
	cmd.Flags().BoolVar(&force, "force", false, "write the transition instead of previewing it")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newFixOvDSidesCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "fix-ovd-sides",
		Short: "Repair OvD games whose teams were split across offense and defense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Services.PlayerStats.RepairStoredOvDSides(ctx, dryRun)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), result)
				}

				out := cmd.OutOrStdout()
				printTitle(out, fmt.Sprintf("OvD side repair (%d games scanned)", result.Games))
				printSideFixes(cmd, result.Fixes)
				if result.DryRun {
					printWarn(fmt.Sprintf("dry run: %d rows would change", len(result.Fixes)))
					return nil
				}
				printSuccess(out, "%d rows updated", len(result.Fixes))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would change")
	return cmd
}

func newImportStatsCmd(opts *rootOptions) *cobra.Command {
	var (
		gameID   string
		gameDate string
		arena    string
	)
	cmd := &cobra.Command{
		Use:   "import-stats <file.csv> [more.csv...]",
		Short: "Import game stat sheets exported from the game server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameID != "" && len(args) > 1 {
				return errors.New("--game-id can only be used with a single file")
			}
			var date time.Time
			if strings.TrimSpace(gameDate) != "" {
				parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(gameDate))
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", gameDate)
				}
				date = parsed
			}

			inputs := make([]usecase.ImportStatsInput, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				defer f.Close()
				inputs = append(inputs, usecase.ImportStatsInput{
					Source:    filepath.Base(path),
					Reader:    f,
					GameID:    gameID,
					GameDate:  date,
					ArenaName: arena,
				})
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				var (
					results []usecase.ImportStatsResult
					err     error
				)
				if len(inputs) == 1 {
					var one usecase.ImportStatsResult
					one, err = a.Services.PlayerStats.ImportCSV(ctx, inputs[0])
					results = []usecase.ImportStatsResult{one}
				} else {
					results, err = a.Services.PlayerStats.ImportBatch(ctx, inputs)
				}
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return printJSON(cmd.OutOrStdout(), results)
				}

				out := cmd.OutOrStdout()
				failed := 0
				for _, r := range results {
					if r.Error != "" {
						failed++
						printError(fmt.Errorf("%s: %s", r.Source, r.Error))
						continue
					}
					printKV(out, r.Source, fmt.Sprintf("%s (%d rows)", r.GameID, r.Rows))
					printSideFixes(cmd, r.SideFixes)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d files failed to import", failed, len(results))
				}
				printSuccess(out, "%d games imported", len(results))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gameID, "game-id", "", "game id to store the sheet under (default generated)")
	cmd.Flags().StringVar(&gameDate, "date", "", "game date YYYY-MM-DD (default from file name or today)")
	cmd.Flags().StringVar(&arena, "arena", "", "arena name")
	return cmd
}

func printSideFixes(cmd *cobra.Command, fixes []playerstats.SideFix) {
	out := cmd.OutOrStdout()
	for _, fix := range fixes {
		printKV(out, fix.PlayerName, fmt.Sprintf("%s %s: %s -> %s", fix.GameID, fix.Team, fix.From, fix.To))
	}
}
