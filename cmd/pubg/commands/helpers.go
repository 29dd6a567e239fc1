package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/pubg/internal/constants"
	"github.com/fivetwenty-io/pubg/pkg/pubg"
	"github.com/fivetwenty-io/pubg/pkg/pubgclient"
)

// Configuration keys shared by flags, environment and config file.
const (
	KeyConfig         = "config"
	KeyAPIKey         = "api-key"
	KeyShard          = "shard"
	KeyOutput         = "output"
	KeyVerbose        = "verbose"
	KeyNATSURL        = "nats-url"
	KeyNATSBucket     = "nats-bucket"
	KeyBaseURL        = "base-url"
	KeyHeader         = "header"
	KeyTelemetryHosts = "telemetry-hosts"
)

// DefaultShard is used when no shard is configured.
const DefaultShard = pubg.ShardSteam

const (
	defaultJSONIndent = 2
	timeLayout        = "2006-01-02 15:04:05"
	userAgent         = "pubg-cli"
)

// Static errors for err113 compliance.
var (
	ErrUnexpectedObject = errors.New("unexpected object type")
	ErrInvalidGameMode  = errors.New("invalid game mode")
)

// newClient builds a pubg.Client from the merged flag, environment and file
// configuration. The returned cleanup releases the shared telemetry cache.
func newClient(ctx context.Context, cmd *cobra.Command) (pubg.Client, func(), error) {
	apiKey := viper.GetString(KeyAPIKey)
	if apiKey == "" {
		return nil, nil, constants.ErrNoAPIKey
	}

	shard := pubg.Shard(strings.ToLower(viper.GetString(KeyShard)))
	if shard == "" {
		shard = DefaultShard
	}

	if !shard.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", constants.ErrInvalidShard, shard)
	}

	verbose := viper.GetBool(KeyVerbose)

	config := &pubg.Config{
		APIKey:         apiKey,
		Shard:          shard,
		BaseURL:        viper.GetString(KeyBaseURL),
		UserAgent:      userAgent,
		Headers:        viper.GetStringMapString(KeyHeader),
		TelemetryHosts: viper.GetStringSlice(KeyTelemetryHosts),
		Debug:          verbose,
		Logger:         NewLogger(cmd.ErrOrStderr(), verbose),
	}

	cleanup := func() {}

	if natsURL := viper.GetString(KeyNATSURL); natsURL != "" {
		shared, err := pubg.NewNATSKVCache(ctx, &pubg.NATSKVConfig{
			URL:    natsURL,
			Bucket: viper.GetString(KeyNATSBucket),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open telemetry cache: %w", err)
		}

		config.TelemetryCache = pubg.NewCacheChain(pubg.NewMemoryCache(pubg.DefaultCacheSize), shared)
		cleanup = shared.Close
	}

	client, err := pubgclient.New(ctx, config)
	if err != nil {
		cleanup()

		return nil, nil, err
	}

	return client, cleanup, nil
}

// outputFormat resolves the configured output format for w. "auto" renders a
// table on a terminal and JSON everywhere else.
func outputFormat(w io.Writer) (string, error) {
	format := strings.ToLower(viper.GetString(KeyOutput))

	switch format {
	case "", constants.FormatAuto:
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return constants.FormatTable, nil
		}

		return constants.FormatJSON, nil
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutput, format)
	}
}

// render writes data as JSON or YAML, or calls fill to build a table.
func render(cmd *cobra.Command, data any, fill func(table *tablewriter.Table)) error {
	w := cmd.OutOrStdout()

	format, err := outputFormat(w)
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(defaultJSONIndent)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return encoder.Close()
	default:
		table := tablewriter.NewWriter(w)
		fill(table)

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// collect drains query into a slice of T.
func collect[T pubg.Object](ctx context.Context, query *pubg.Query) ([]T, error) {
	seq, err := query.All(ctx)
	if err != nil {
		return nil, err
	}

	var items []T

	for obj, err := range seq {
		if err != nil {
			return nil, err
		}

		item, ok := obj.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedObject, obj.ObjectType())
		}

		items = append(items, item)
	}

	return items, nil
}

// getOne fetches a single resource and asserts its type.
func getOne[T pubg.Object](ctx context.Context, query *pubg.Query, id string) (T, error) {
	var zero T

	obj, err := query.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	item, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnexpectedObject, obj.ObjectType())
	}

	return item, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format(timeLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func orNotAvailable(s string) string {
	if s == "" {
		return constants.NotAvailable
	}

	return s
}
