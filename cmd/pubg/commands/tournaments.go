package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// NewTournamentsCommand creates the tournaments command group
func NewTournamentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tournaments",
		Aliases: []string{"tournament"},
		Short:   "List esports tournaments",
		Long:    "List esports tournaments and the matches played in them",
	}

	cmd.AddCommand(newTournamentsListCommand())
	cmd.AddCommand(newTournamentsShowCommand())

	return cmd
}

func newTournamentsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tournaments",
		Long:  "List every tournament known to the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			tournaments, err := collect[*pubg.Tournament](ctx, client.Tournaments())
			if err != nil {
				return fmt.Errorf("failed to list tournaments: %w", err)
			}

			return render(cmd, tournaments, func(table *tablewriter.Table) {
				table.Header("Tournament ID", "Created")

				for _, tournament := range tournaments {
					_ = table.Append(tournament.ID, formatTime(tournament.CreatedAt))
				}
			})
		},
	}
}

func newTournamentsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show TOURNAMENT_ID",
		Short: "Show tournament matches",
		Long:  "Display the ids of the matches played in a tournament",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			tournament, err := getOne[*pubg.Tournament](ctx, client.Tournaments(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get tournament: %w", err)
			}

			return render(cmd, tournament, func(table *tablewriter.Table) {
				table.Header("#", "Match ID")

				for i, matchID := range tournament.MatchIDs {
					_ = table.Append(strconv.Itoa(i+1), matchID)
				}
			})
		},
	}
}
