package commands

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// NewLeaderboardCommand creates the leaderboard command
func NewLeaderboardCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:     "leaderboard SEASON_ID GAME_MODE",
		Aliases: []string{"lb"},
		Short:   "Show a season leaderboard",
		Long:    "Display the top ranked players of a game mode in a season",
		Args:    cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			gameMode := pubg.GameMode(args[1])
			if !slices.Contains(pubg.GameModes(), gameMode) {
				return fmt.Errorf("%w: %q", ErrInvalidGameMode, args[1])
			}

			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			board, err := getOne[*pubg.Leaderboard](ctx, client.Leaderboard(args[0], gameMode), "")
			if err != nil {
				return fmt.Errorf("failed to get leaderboard: %w", err)
			}

			players := slices.Clone(board.Players)
			slices.SortStableFunc(players, func(a, b pubg.LeaderboardPlayer) int {
				return a.Rank - b.Rank
			})

			if top > 0 && len(players) > top {
				players = players[:top]
			}

			board.Players = players

			return render(cmd, board, func(table *tablewriter.Table) {
				table.Header("Rank", "Name", "Points", "Games", "Wins", "Kills", "Avg Damage")

				for _, player := range players {
					_ = table.Append(
						strconv.Itoa(player.Rank),
						player.Name,
						formatFloat(player.Stats.RankPoints),
						strconv.Itoa(player.Stats.Games),
						strconv.Itoa(player.Stats.Wins),
						strconv.Itoa(player.Stats.Kills),
						formatFloat(player.Stats.AverageDamage),
					)
				}
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "only show the first N players (0 for all)")

	return cmd
}
