package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pubg/internal/constants"
	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// NewPlayersCommand creates the players command group
func NewPlayersCommand() *cobra.Command {
	var (
		names []string
		ids   []string
	)

	cmd := &cobra.Command{
		Use:     "players",
		Aliases: []string{"player"},
		Short:   "Look up players",
		Long:    "Look up up to 10 players by name or account id on the selected shard",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, values, err := playerFilter(names, ids)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			players, err := collect[*pubg.Player](ctx, client.Players().Filter(filter, values...))
			if err != nil {
				return fmt.Errorf("failed to list players: %w", err)
			}

			return render(cmd, players, func(table *tablewriter.Table) {
				table.Header("Name", "Account ID", "Shard", "Recent Matches")

				for _, player := range players {
					_ = table.Append(player.Name, player.ID, player.ShardID, strconv.Itoa(len(player.MatchIDs)))
				}
			})
		},
	}

	cmd.Flags().StringSliceVarP(&names, "names", "n", nil, "player names (comma separated)")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "account ids (comma separated)")

	cmd.AddCommand(newPlayersShowCommand())
	cmd.AddCommand(newPlayersMatchesCommand())

	return cmd
}

// playerFilter picks the filter for exactly one of names or ids.
func playerFilter(names, ids []string) (string, []string, error) {
	var (
		filter string
		values []string
	)

	switch {
	case len(names) > 0 && len(ids) > 0:
		return "", nil, constants.ErrPlayerFilterRequired
	case len(names) > 0:
		filter, values = pubg.FilterPlayerNames, names
	case len(ids) > 0:
		filter, values = pubg.FilterPlayerIDs, ids
	default:
		return "", nil, constants.ErrPlayerFilterRequired
	}

	if len(values) > constants.MaxPlayerFilterValues {
		return "", nil, fmt.Errorf("%w: got %d", constants.ErrTooManyPlayers, len(values))
	}

	return filter, values, nil
}

func newPlayersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ACCOUNT_ID",
		Short: "Show player details",
		Long:  "Display a player and the ids of their recent matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			player, err := getOne[*pubg.Player](ctx, client.Players(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get player: %w", err)
			}

			return render(cmd, player, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", player.Name)
				_ = table.Append("Account ID", player.ID)
				_ = table.Append("Shard", player.ShardID)
				_ = table.Append("Title", orNotAvailable(player.TitleID))
				_ = table.Append("Patch", orNotAvailable(player.PatchVersion))
				_ = table.Append("Ban", orNotAvailable(player.BanType))
				_ = table.Append("Clan", orNotAvailable(player.ClanID))

				for i, matchID := range player.MatchIDs {
					_ = table.Append(fmt.Sprintf("Match %d", i+1), matchID)
				}
			})
		},
	}
}

func newPlayersMatchesCommand() *cobra.Command {
	var (
		limit       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "matches ACCOUNT_ID",
		Short: "List a player's recent matches",
		Long:  "Fetch the most recent matches of a player, several at a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 || concurrency > constants.MaxConcurrencyLimit {
				return constants.ErrInvalidConcurrent
			}

			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			player, err := getOne[*pubg.Player](ctx, client.Players(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get player: %w", err)
			}

			matchIDs := player.MatchIDs
			if limit > 0 && len(matchIDs) > limit {
				matchIDs = matchIDs[:limit]
			}

			objects, err := pubg.GetAll(ctx, concurrency, client.Matches(), matchIDs...)
			if err != nil {
				return fmt.Errorf("failed to get matches: %w", err)
			}

			matches := make([]*pubg.Match, 0, len(objects))

			for _, obj := range objects {
				match, ok := obj.(*pubg.Match)
				if !ok {
					return fmt.Errorf("%w: %s", ErrUnexpectedObject, obj.ObjectType())
				}

				matches = append(matches, match)
			}

			return render(cmd, matches, func(table *tablewriter.Table) {
				table.Header("Match ID", "Created", "Mode", "Map", "Duration", "Placement", "Kills")

				for _, match := range matches {
					placement, kills := constants.NotAvailable, constants.NotAvailable

					for _, participant := range match.Participants() {
						if participant.Stats.PlayerID == player.ID {
							placement = strconv.Itoa(participant.Stats.WinPlace)
							kills = strconv.Itoa(participant.Stats.Kills)
						}
					}

					_ = table.Append(
						match.ID,
						formatTime(match.CreatedAt),
						match.GameMode,
						match.MapName,
						fmt.Sprintf("%ds", match.Duration),
						placement,
						kills,
					)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultPageLimit, "maximum number of matches (0 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "matches fetched in parallel (1-10)")

	return cmd
}
