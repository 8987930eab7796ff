// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for kenshin.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"kenshin-cli/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// cfgFile allows specifying a custom config file
	cfgFile string
	// profileName forces a named CSV profile for every input
	profileName string
	// logLevel overrides the configured log level
	logLevel string
	// sampleTest runs the sample CSV conversion before the pipeline
	sampleTest bool
	// sampleOnly runs the sample CSV conversion and stops
	sampleOnly bool
	// sampleNumFiles caps how many CSVs each sample directory contributes
	sampleNumFiles int

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "kenshin",
		Short: "Convert health checkup CSV data into a submittable XML archive",
		Long: TitleStyle.Render("kenshin") + SubtitleStyle.Render(" - health checkup CSV to XML submission builder") + `

kenshin reads health checkup and health guidance CSV extracts, applies
JSON-defined transformation rules, generates the regulator-defined XML
documents, validates each one against its XSD schema, and packages the
result into a timestamped submission archive.

` + SubtitleStyle.Render("Examples:") + `
  kenshin                          Run the full conversion pipeline
  kenshin --config my_config.json  Run with an alternate configuration
  kenshin --sample-only            Smoke-test sample CSVs without converting
  kenshin verify archive.zip       Re-validate an existing archive`,
		RunE: runConvert,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default is %s)", config.DefaultConfigFile))
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "",
		"CSV profile to use for all inputs (overrides each input's profile)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides configuration)")

	rootCmd.Flags().BoolVar(&sampleTest, "sample-test", false,
		"convert sample CSVs to naive XML before running the pipeline")
	rootCmd.Flags().BoolVar(&sampleOnly, "sample-only", false,
		"convert sample CSVs to naive XML and exit")
	rootCmd.Flags().IntVar(&sampleNumFiles, "sample-num-files", 0,
		"number of CSV files per sample directory (0 means all)")

	rootCmd.AddCommand(verifyCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig reads the configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		cfg.OverrideProfile(profileName)
	}
	return cfg, nil
}

// newLogger builds the application logger. The --log-level flag wins over
// the configured level.
func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "kenshin",
	})
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	return logger
}
