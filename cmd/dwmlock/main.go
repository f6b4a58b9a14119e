// Package main is the CLI entry point for dwmlock.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/focusd/dwmlock/internal/config"
	"github.com/eliteGoblin/focusd/dwmlock/internal/domain"
	"github.com/eliteGoblin/focusd/dwmlock/internal/infra"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dwmlock failed: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dwmlock",
	Short: "Lock the screen behind a blurred snapshot of the desktop",
	Long: `dwmlock freezes the current desktop, blurs it and shows a password
panel on top. Ctrl+Alt+Delete is suppressed while locked and secondary
monitors can be blanked.

Settings live in a TOML (or YAML) file; see 'dwmlock settings path'.`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath string
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Settings file (default: user config dir, or $"+config.EnvConfigPath+")")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(monitorsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolvePaths applies --config on top of the default locations.
func resolvePaths() (config.Paths, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return config.Paths{}, err
	}
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return config.Paths{}, fmt.Errorf("resolve --config: %w", err)
		}
		paths.ConfigFile = abs
	}
	return paths, nil
}

func createLogger(paths config.Paths, verbose bool) *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{paths.LogFile}
	cfg.ErrorOutputPaths = []string{paths.ErrorLogFile}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

// openStores opens the encrypted journal, falling back to the JSON file
// registry. The journal is nil when unavailable.
func openStores(paths config.Paths, logger *zap.Logger) (*infra.EncryptedJournal, domain.SessionRegistry) {
	key, err := infra.NewJournalKeyFile(paths).Ensure()
	if err == nil {
		var journal *infra.EncryptedJournal
		journal, err = infra.NewEncryptedJournal(paths.JournalFile, key)
		if err == nil {
			return journal, journal
		}
	}
	logger.Warn("encrypted journal unavailable, using file registry",
		zap.String("path", paths.JournalFile),
		zap.Error(err))
	return nil, infra.NewFileRegistry(paths.RegistryFile)
}

func runVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	if jsonOutput {
		fmt.Fprintf(out, `{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
		return
	}
	fmt.Fprintf(out, "dwmlock %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
}
