package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/pubg/cmd/pubg/commands"
	"github.com/fivetwenty-io/pubg/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pubg",
	Short: "PUBG developer API CLI",
	Long: `A command-line interface for the read-only PUBG developer API.

Look up players, matches, seasons, leaderboards, tournaments and match
telemetry on any platform shard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.pubg/config.yml)")
	rootCmd.PersistentFlags().StringP("api-key", "k", "", "PUBG developer API key")
	rootCmd.PersistentFlags().StringP("shard", "s", string(commands.DefaultShard), "platform shard")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatAuto, "output format (auto, table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log HTTP requests to stderr")
	rootCmd.PersistentFlags().String("nats-url", "", "NATS server used to share the telemetry cache")
	rootCmd.PersistentFlags().StringToString("header", nil, "extra request header as NAME=VALUE (repeatable)")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL")
	_ = rootCmd.PersistentFlags().MarkHidden("base-url")

	// Bind flags to viper
	for _, key := range []string{
		commands.KeyConfig,
		commands.KeyAPIKey,
		commands.KeyShard,
		commands.KeyOutput,
		commands.KeyVerbose,
		commands.KeyNATSURL,
		commands.KeyBaseURL,
		commands.KeyHeader,
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewPlayersCommand())
	rootCmd.AddCommand(commands.NewMatchesCommand())
	rootCmd.AddCommand(commands.NewSeasonsCommand())
	rootCmd.AddCommand(commands.NewSamplesCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewTournamentsCommand())
	rootCmd.AddCommand(commands.NewLeaderboardCommand())
}

func initConfig() {
	cfgFile := viper.GetString(commands.KeyConfig)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.pubg/config.yml
		viper.AddConfigPath(filepath.Join(home, ".pubg"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// PUBG_API_KEY, PUBG_SHARD, PUBG_NATS_URL, ...
	viper.SetEnvPrefix("PUBG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool(commands.KeyVerbose) {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
