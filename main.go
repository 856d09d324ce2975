// Package main is the entry point for the release-stamp CLI application.
// release-stamp prints the release state of a local Git working tree
// (commit, dirtiness, release tag, branch and author) for stamping build artifacts.
package main

import (
	"context"
	"os"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"
	"github.com/MyCarrier-DevOps/goLibMyCarrier/slippy"

	"github.com/MyCarrier-DevOps/release-stamp/cmd"
	"github.com/MyCarrier-DevOps/release-stamp/internal/adapters/git"
	"github.com/MyCarrier-DevOps/release-stamp/internal/adapters/identity"
	logadapter "github.com/MyCarrier-DevOps/release-stamp/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/release-stamp/internal/adapters/output"
	"github.com/MyCarrier-DevOps/release-stamp/internal/adapters/store"
	"github.com/MyCarrier-DevOps/release-stamp/internal/adapters/version"
	"github.com/MyCarrier-DevOps/release-stamp/internal/domain"
	"github.com/MyCarrier-DevOps/release-stamp/internal/infrastructure/config"
)

// lazyLogger builds the shared zap logger on first use. The zap logger reads
// LOG_LEVEL when it is built, so it must not exist before --verbose is applied.
type lazyLogger struct {
	zap     *logger.ZapLogger
	adapter *logadapter.ZapAdapter
}

// get returns the shared adapter, building it on the first call.
func (l *lazyLogger) get() *logadapter.ZapAdapter {
	if l.adapter == nil {
		l.zap = logger.NewZapLoggerFromConfig()
		l.adapter = logadapter.NewZapAdapter(l.zap)
	}
	return l.adapter
}

// zapLogger returns the underlying zap logger, building it on the first call.
func (l *lazyLogger) zapLogger() *logger.ZapLogger {
	l.get()
	return l.zap
}

// component returns the shared adapter tagged with a component field.
func (l *lazyLogger) component(name string) *logadapter.ZapAdapter {
	return l.get().With(map[string]any{"component": name})
}

func main() {
	appLog := &lazyLogger{}

	// Wire up production dependencies
	deps := &cmd.Dependencies{
		LoggerFactory: func() cmd.Logger {
			return appLog.get()
		},

		ConfigLoader: func() (*cmd.AppConfig, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				Format:         cfg.Format,
				LDFlagsPackage: cfg.LDFlagsPackage,
				SlipLookup:     cfg.SlipLookup,
				LogLevel:       cfg.LogLevel,
				LogAppName:     cfg.LogAppName,
			}, nil
		},

		LocatorFactory: func(_ cmd.Logger) domain.RepositoryLocator {
			return git.NewLocator(appLog.component("git"))
		},

		ParserFactory: func() domain.VersionParser {
			return version.NewParser()
		},

		IdentityFactory: func() domain.IdentitySource {
			return identity.NewEnvironment()
		},

		SlipFinderFactory: func(ctx context.Context, _ cmd.Logger) (domain.SlipFinder, error) {
			cfg, err := config.LoadSlipStore(ctx, nil)
			if err != nil {
				return nil, err
			}

			slippyStore, err := slippy.NewClickHouseStoreFromConfig(cfg.ClickHouse, slippy.ClickHouseStoreOptions{
				PipelineConfig: cfg.PipelineConfig,
				Database:       cfg.Database,
				Logger:         appLog.zapLogger(),
				SkipMigrations: true,
			})
			if err != nil {
				return nil, err
			}
			return store.NewClickHouseAdapter(slippyStore), nil
		},

		OutputWriterFactory: newWriter,

		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}

// newWriter validates format and returns a stdout writer for it.
func newWriter(format, ldflagsPackage string) (domain.OutputWriter, error) {
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(f, ldflagsPackage), nil
}
