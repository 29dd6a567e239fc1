package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/pubg/pkg/pubg"
)

// NewMatchesCommand creates the matches command group
func NewMatchesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "matches",
		Aliases: []string{"match"},
		Short:   "Inspect matches",
		Long:    "Show match results and download match telemetry",
	}

	cmd.AddCommand(newMatchesShowCommand())
	cmd.AddCommand(newMatchesTelemetryCommand())

	return cmd
}

func newMatchesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show MATCH_ID",
		Short: "Show match results",
		Long:  "Display a match and the placement of every roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			match, err := getOne[*pubg.Match](ctx, client.Matches(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get match: %w", err)
			}

			return render(cmd, match, func(table *tablewriter.Table) {
				table.Header("Rank", "Team", "Won", "Players", "Kills")

				for _, roster := range match.Rosters {
					var (
						names []string
						kills int
					)

					for _, participant := range roster.Participants {
						names = append(names, participant.Stats.Name)
						kills += participant.Stats.Kills
					}

					_ = table.Append(
						strconv.Itoa(roster.Rank),
						strconv.Itoa(roster.TeamID),
						formatBool(roster.Won),
						strings.Join(names, ", "),
						strconv.Itoa(kills),
					)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Match %s: %s on %s, %s\n\n",
					match.ID, match.GameMode, match.MapName, formatTime(match.CreatedAt))
			})
		},
	}
}

// telemetrySummary is the machine-readable form of a telemetry download.
type telemetrySummary struct {
	MatchID  string                   `json:"matchId"            yaml:"match_id"`
	Events   int                      `json:"events"             yaml:"events"`
	Types    []string                 `json:"types,omitempty"    yaml:"types,omitempty"`
	Counts   map[string]int           `json:"counts,omitempty"   yaml:"counts,omitempty"`
	Kills    []pubg.PlayerKillEvent   `json:"kills,omitempty"    yaml:"kills,omitempty"`
	Filtered []map[string]interface{} `json:"filtered,omitempty" yaml:"filtered,omitempty"`

	matched []pubg.TelemetryEvent
}

func newMatchesTelemetryCommand() *cobra.Command {
	var (
		eventTypes []string
		kills      bool
	)

	cmd := &cobra.Command{
		Use:   "telemetry MATCH_ID",
		Short: "Summarize match telemetry",
		Long:  "Download the telemetry of a match and count its events by type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			client, cleanup, err := newClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			match, err := getOne[*pubg.Match](ctx, client.Matches(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get match: %w", err)
			}

			telemetry, err := client.MatchTelemetry(ctx, match)
			if err != nil {
				return err
			}

			summary, err := summarizeTelemetry(match.ID, telemetry, eventTypes, kills)
			if err != nil {
				return err
			}

			return render(cmd, summary, func(table *tablewriter.Table) {
				if kills {
					table.Header("Killer", "Victim", "Weapon", "Distance")

					for _, kill := range summary.Kills {
						_ = table.Append(characterName(kill.Killer), characterName(kill.Victim),
							kill.KillerDamageInfo.DamageCauserName, formatFloat(kill.KillerDamageInfo.Distance))
					}

					return
				}

				if len(eventTypes) > 0 {
					table.Header("Time", "Type")

					for _, event := range summary.matched {
						_ = table.Append(formatTime(event.Timestamp), event.Type)
					}

					return
				}

				table.Header("Event Type", "Count")

				for _, eventType := range summary.Types {
					_ = table.Append(eventType, strconv.Itoa(summary.Counts[eventType]))
				}
			})
		},
	}

	cmd.Flags().StringSliceVarP(&eventTypes, "type", "t", nil, "only show events of these types (e.g. LogPlayerKillV2)")
	cmd.Flags().BoolVar(&kills, "kills", false, "list kills instead of event counts")

	return cmd
}

func summarizeTelemetry(matchID string, telemetry *pubg.Telemetry, eventTypes []string, kills bool) (*telemetrySummary, error) {
	summary := &telemetrySummary{
		MatchID: matchID,
		Events:  len(telemetry.Events),
	}

	switch {
	case kills:
		events, err := telemetry.Kills()
		if err != nil {
			return nil, err
		}

		summary.Kills = events
	case len(eventTypes) > 0:
		summary.matched = telemetry.Filter(eventTypes...)

		for _, event := range summary.matched {
			var body map[string]interface{}

			err := event.Decode(&body)
			if err != nil {
				return nil, err
			}

			summary.Filtered = append(summary.Filtered, body)
		}
	default:
		summary.Counts = telemetry.Counts()
		summary.Types = telemetry.Types()
	}

	return summary, nil
}

func characterName(character *pubg.TelemetryCharacter) string {
	if character == nil || character.Name == "" {
		return "-"
	}

	return character.Name
}
