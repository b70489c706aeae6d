package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/G-Node/gin-release/internal/config"
	"github.com/G-Node/gin-release/internal/logger"
	"github.com/G-Node/gin-release/internal/service/pipeline"
	"github.com/G-Node/gin-release/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel selects the minimum level for log output.
	logLevel string

	// rootCmd represents the base command running the whole release pipeline.
	rootCmd = &cobra.Command{
		Use:   "gin-release",
		Short: "Build gin-cli binaries and package them for distribution",
		Long: "Cross-compile gin-cli for every configured platform, download " +
			"third-party runtime dependencies with etag caching, assemble the " +
			"platform distributables (tarballs, Debian package, macOS bundle, " +
			"Windows zip bundles) and alias each artifact under a 'latest' name.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &pipeline.Options{
				ConfigPath: configPath,
			}

			return pipeline.Run(ctx, options)
		},
	}
)

// Execute runs the gin-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
}
