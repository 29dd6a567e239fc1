package commands

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// NewSeasonsCommand creates the seasons command group
func NewSeasonsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "seasons",
		Aliases: []string{"season"},
		Short:   "List seasons and season stats",
		Long:    "List the seasons of the selected shard and show a player's season statistics",
	}

	cmd.AddCommand(newSeasonsListCommand())
	cmd.AddCommand(newSeasonsStatsCommand())

	return cmd
}

func newSeasonsListCommand() *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List seasons",
		Long:  "List every season of the selected shard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			seasons, err := collect[*pubg.Season](ctx, client.Seasons())
			if err != nil {
				return fmt.Errorf("failed to list seasons: %w", err)
			}

			if current {
				seasons = slices.DeleteFunc(seasons, func(season *pubg.Season) bool {
					return !season.IsCurrentSeason
				})
			}

			return render(cmd, seasons, func(table *tablewriter.Table) {
				table.Header("Season ID", "Current", "Offseason")

				for _, season := range seasons {
					_ = table.Append(season.ID, formatBool(season.IsCurrentSeason), formatBool(season.IsOffseason))
				}
			})
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "only show the current season")

	return cmd
}

func newSeasonsStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats ACCOUNT_ID SEASON_ID",
		Short: "Show a player's season stats",
		Long:  "Display a player's statistics for one season, per game mode",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := getOne[*pubg.PlayerSeason](ctx, client.PlayerSeason(args[0], args[1]), "")
			if err != nil {
				return fmt.Errorf("failed to get season stats: %w", err)
			}

			return render(cmd, stats, func(table *tablewriter.Table) {
				table.Header("Mode", "Rounds", "Wins", "Top 10", "Kills", "Damage", "Longest Kill")

				for _, mode := range pubg.GameModes() {
					modeStats, ok := stats.GameModeStats[string(mode)]
					if !ok {
						continue
					}

					_ = table.Append(
						string(mode),
						strconv.Itoa(modeStats.RoundsPlayed),
						strconv.Itoa(modeStats.Wins),
						strconv.Itoa(modeStats.Top10s),
						strconv.Itoa(modeStats.Kills),
						formatFloat(modeStats.DamageDealt),
						formatFloat(modeStats.LongestKill),
					)
				}
			})
		},
	}
}
