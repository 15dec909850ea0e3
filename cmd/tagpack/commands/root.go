package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yourorg/tagpack-service/internal/config"
	"github.com/yourorg/tagpack-service/internal/tagpack"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "tagpack",
	Short:         "TagPack and ActorPack tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file, empty for defaults and environment only")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(tokenCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file. A missing default file falls back to
// defaults and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// newLogger builds a console logger on stderr so stdout stays machine readable
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func newLoader(cfg *config.Config) *tagpack.Loader {
	return tagpack.NewLoader(cfg.Tagpack.ConfidenceLevels, cfg.Digest.KnownConcepts)
}
