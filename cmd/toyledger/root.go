package toyledger

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/manifest-network/toyledger/internal/config"
)

const envPrefix = "toyledger"

var (
	logLevels = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	logLevelNames = strings.Join(slices.Sorted(maps.Keys(logLevels)), "|")
)

var RootCmd = &cobra.Command{
	Use:   "toyledger",
	Short: "Run and query a toy ledger",
	Long:  `toyledger keeps an append-only chain of value transfers and answers balance and history queries.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(viper.GetString("logLevel")); err != nil {
			return err
		}
		slog.Debug("Starting toyledger", "version", Version, "command", cmd.Name())
		return nil
	},
}

// setLogLevel installs a JSON logger on stdout at the named level.
func setLogLevel(name string) error {
	level, ok := logLevels[name]
	if !ok {
		return fmt.Errorf("invalid log level: %s. Valid log levels are: %s", name, logLevelNames)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	return nil
}

// configureViper makes every persistent flag readable from a config file or a
// TOYLEDGER_* environment variable.
func configureViper() {
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		slog.Error("Failed to bind persistent flags", "error", err)
	}

	viper.SetConfigName("config")
	for _, dir := range []string{".", "$HOME/." + envPrefix, "/etc/" + envPrefix} {
		viper.AddConfigPath(dir)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", logLevelNames))
	flags.String("store", config.StoreFile, fmt.Sprintf("chain store (%s|%s)", config.StoreFile, config.StorePostgres))
	flags.StringP("data-file", "d", "./data/blockchain.json", "chain file used by the file store")
	flags.StringP("postgres-conn", "p", "", "PostgreSQL connection string used by the postgres store")
	configureViper()

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	RootCmd.AddCommand(
		serveCmd,
		txCmd,
		balanceCmd,
		historyCmd,
		verifyCmd,
		exportCmd,
		importCmd,
		versionCmd,
	)
}

// Execute reads the optional config file and runs the command line.
func Execute() {
	if err := viper.ReadInConfig(); err != nil {
		slog.Info("No config file found")
	} else {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	}

	if err := RootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
