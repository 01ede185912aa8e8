// Package cmd implements the lwd command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JackKelly/list-with-depth/internal/observability"
)

// versionInfo holds build-time version metadata, injected via ldflags.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for --version and the serve
// /version endpoint.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	rootVerbose  bool
	rootLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lwd",
	Short: "Depth-bounded object store listing",
	Long: `lwd lists objects in hierarchical object stores to a bounded depth.

A single delimiter listing shows one level of a bucket: the objects
directly under a prefix plus the common prefixes one segment deeper.
lwd recurses into those common prefixes concurrently, up to the depth
you ask for, and reports the objects it found along with the frontier
of prefixes it did not descend into.

Examples:
  lwd ls s3://bucket/prefix/ --depth 2
  lwd ls file:///var/data/ --depth 1 --output table
  lwd ls --job job.yaml
  lwd serve --port 8080`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		observability.InitCLILogger(rootLogLevel, rootVerbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	rootCmd.Version = versionInfo.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("lwd {{.Version}} (commit %s, built %s)\n",
		versionInfo.Commit, versionInfo.BuildDate))
}

func initConfig() {
	setDefaults()

	viper.SetEnvPrefix("LWD")
	viper.AutomaticEnv()
}

// setDefaults seeds the global viper instance with server defaults.
// Individual commands and the config loader read from it.
func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.profile", "structured")

	viper.SetDefault("health.enabled", true)

	viper.SetDefault("workers", 4)

	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.pprof_enabled", false)
}

// Execute runs the root command. Exit codes come from the foundry
// codes attached via exitError.
func Execute() {
	rootCmd.Version = versionInfo.Version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &cliError{code: code, message: message, err: err}
}

type cliError struct {
	code    int
	message string
	err     error
}

func (e *cliError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *cliError) Unwrap() error {
	return e.err
}

func exitCodeFor(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
