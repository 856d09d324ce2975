// Package cmd provides the CLI commands for release-stamp.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
	"github.com/MyCarrier-DevOps/release-stamp/internal/usecases"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance. It is called after --verbose
	// has set LOG_LEVEL.
	LoggerFactory func() Logger

	// ConfigLoader loads application configuration.
	ConfigLoader func() (*AppConfig, error)

	// LocatorFactory creates the repository locator.
	LocatorFactory func(log Logger) domain.RepositoryLocator

	// ParserFactory creates the tag version parser.
	ParserFactory func() domain.VersionParser

	// IdentityFactory creates the identity source attributed to snapshots.
	IdentityFactory func() domain.IdentitySource

	// SlipFinderFactory creates a SlipFinder. Only called when slip lookup is enabled.
	SlipFinderFactory func(ctx context.Context, log Logger) (domain.SlipFinder, error)

	// OutputWriterFactory creates an OutputWriter for the given format and ldflags package.
	OutputWriterFactory func(format, ldflagsPackage string) (domain.OutputWriter, error)

	// Stderr is the writer for standard error (for warnings).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// Format is the default output format.
	Format string

	// LDFlagsPackage is the default package targeted by the ldflags format.
	LDFlagsPackage string

	// SlipLookup enables the correlation ID lookup by default.
	SlipLookup bool

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// options holds the command-line flags.
type options struct {
	format         string
	ldflagsPackage string
	release        string
	commit         string
	slip           bool
	verbose        bool
}

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for release-stamp.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "release-stamp [path]",
		Short: "Print the release state of a Git working tree for stamping build artifacts",
		Long: `release-stamp computes a snapshot of the Git working tree containing path:
the HEAD commit, whether the tree has uncommitted changes, the release tag
marking HEAD (if any) and the branch name attributed to the build.

When HEAD carries a tag that parses as a semantic version the branch name is
derived from the version (release/vX.Y or release/vX.Y-<prerelease>);
otherwise the checked-out branch is used. A missing or empty repository is not
an error: the snapshot records why no provenance is available.

Examples:
  # Snapshot the current directory as JSON
  release-stamp

  # Stamp a Go binary
  go build -ldflags "$(release-stamp -f ldflags --ldflags-package main)" .

  # Stamp a known release without reading any repository
  release-stamp --release v1.4.0 --commit "$CI_COMMIT_SHA"

  # Attach the routing slip correlation ID
  release-stamp --slip -f env`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStamp(cmd, args, opts, deps)
		},
	}

	rootCmd.Flags().StringVarP(&opts.format, "format", "f", "json",
		"Output format: json, yaml, ldflags or env")
	rootCmd.Flags().StringVar(&opts.ldflagsPackage, "ldflags-package", "main",
		"Go package whose variables the ldflags format sets")
	rootCmd.Flags().StringVar(&opts.release, "release", "",
		"Stamp this release version without reading a repository")
	rootCmd.Flags().StringVar(&opts.commit, "commit", "",
		"Commit SHA recorded with --release")
	rootCmd.Flags().BoolVar(&opts.slip, "slip", false,
		"Look up the routing slip correlation ID for the commit")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	return rootCmd
}

// runStamp executes the snapshot logic with injected dependencies.
func runStamp(cmd *cobra.Command, args []string, opts *options, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}

	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if opts.commit != "" && opts.release == "" {
		return errors.New("--commit requires --release")
	}
	if opts.release != "" && len(args) > 0 {
		return errors.New("--release cannot be combined with a repository path")
	}

	// Set log level based on verbose flag (best-effort)
	if opts.verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			writeWarningf(stderr, "warning: could not set log level: %v\n", err)
		}
	}

	log := deps.LoggerFactory()

	cfg, err := deps.ConfigLoader()
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return fmt.Errorf("configuration error: %w", err)
	}

	format := cfg.Format
	if cmd.Flags().Changed("format") || format == "" {
		format = opts.format
	}
	ldflagsPackage := cfg.LDFlagsPackage
	if cmd.Flags().Changed("ldflags-package") || ldflagsPackage == "" {
		ldflagsPackage = opts.ldflagsPackage
	}
	slipLookup := cfg.SlipLookup || opts.slip

	writer, err := deps.OutputWriterFactory(format, ldflagsPackage)
	if err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	log.Info(ctx, "starting release-stamp", map[string]interface{}{
		"path":        repoPath,
		"format":      format,
		"release":     opts.release,
		"slip_lookup": slipLookup,
	})

	parser := deps.ParserFactory()
	builder := usecases.NewSnapshotBuilder(deps.LocatorFactory(log), parser, deps.IdentityFactory(), log)

	var snapshot *domain.Snapshot
	if opts.release != "" {
		snapshot, err = builder.FromRelease(parser.Parse(opts.release), opts.commit)
		if err != nil {
			log.Error(ctx, "invalid release version", err, map[string]interface{}{
				"release": opts.release,
			})
			return fmt.Errorf("invalid --release %q: %w", opts.release, err)
		}
	} else {
		snapshot, err = builder.FromPath(ctx, repoPath)
		if err != nil {
			log.Error(ctx, "failed to read repository state", err, map[string]interface{}{
				"path": repoPath,
			})
			return fmt.Errorf("repository error: %w", err)
		}
	}

	if reason := snapshot.RepositoryError(); reason != "" {
		writeWarningf(stderr, "warning: %s\n", reason)
	}

	stamp := snapshot.Stamp()
	if slipLookup {
		correlationID, err := lookupSlip(ctx, snapshot, deps, log)
		if err != nil {
			log.Error(ctx, "failed to look up slip", err, nil)
			return fmt.Errorf("slip lookup error: %w", err)
		}
		stamp.CorrelationID = correlationID
	}

	if err := writer.WriteStamp(stamp); err != nil {
		log.Error(ctx, "failed to write output", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	log.Info(ctx, "release stamp complete", map[string]interface{}{
		"commit_sha":     stamp.CommitSHA,
		"branch":         stamp.BranchName,
		"released_tag":   stamp.ReleasedTag,
		"is_dirty":       stamp.IsDirty,
		"correlation_id": stamp.CorrelationID,
	})

	return nil
}

// lookupSlip returns the correlation ID of the slip recorded for the snapshot commit.
func lookupSlip(ctx context.Context, snapshot *domain.Snapshot, deps *Dependencies, log Logger) (string, error) {
	finder, err := deps.SlipFinderFactory(ctx, log)
	if err != nil {
		return "", fmt.Errorf("failed to initialize slip finder: %w", err)
	}
	defer func() {
		if closeErr := finder.Close(); closeErr != nil {
			log.Warn(ctx, "failed to close slip finder", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	return usecases.NewSlipAnnotator(finder, log).CorrelationID(ctx, snapshot)
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeWarningf writes a warning message to the given writer.
// Errors are ignored: there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		return
	}
}
