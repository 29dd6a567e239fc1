package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show API status",
		Long:  "Display the version of the PUBG API and whether it is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			status, err := getOne[*pubg.Status](ctx, client.Status(), "")
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			return render(cmd, status, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", status.ID)
				_ = table.Append("Version", orNotAvailable(status.Version))
				_ = table.Append("Released", formatTime(status.ReleasedAt))
			})
		},
	}
}

// NewSamplesCommand creates the samples command
func NewSamplesCommand() *cobra.Command {
	var createdAfter string

	cmd := &cobra.Command{
		Use:     "samples",
		Aliases: []string{"sample"},
		Short:   "List sample match ids",
		Long:    "List a random sample of recent match ids on the selected shard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			query := client.Samples()
			if createdAfter != "" {
				query = query.Filter(pubg.FilterCreatedAtStart, createdAfter)
			}

			sample, err := getOne[*pubg.Sample](ctx, query, "")
			if err != nil {
				return fmt.Errorf("failed to get samples: %w", err)
			}

			return render(cmd, sample, func(table *tablewriter.Table) {
				table.Header("Match ID")

				for _, matchID := range sample.MatchIDs {
					_ = table.Append(matchID)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Sample of %d matches on %s, created %s\n\n",
					len(sample.MatchIDs), orNotAvailable(sample.ShardID), formatTime(sample.CreatedAt))
			})
		},
	}

	cmd.Flags().StringVar(&createdAfter, "created-after", "", "sample start time (RFC 3339, at most 14 days ago)")

	return cmd
}
