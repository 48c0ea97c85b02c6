// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/invowk/need/internal/config"
	"github.com/invowk/need/internal/issue"
	"github.com/invowk/need/internal/telemetry"
	"github.com/invowk/need/pkg/accessor"
	"github.com/invowk/need/pkg/need"
)

// tracerName is the instrumentation name of CLI-level spans.
const tracerName = "github.com/invowk/need/cmd/need"

type (
	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// BackendFactory builds the content accessor described by a backend
	// config. The returned label names the backend in logs and spans.
	BackendFactory func(ctx context.Context, cfg config.BackendConfig) (acc need.Accessor, label string, err error)

	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference.
	App struct {
		Config   ConfigProvider
		Backends BackendFactory
		stdout   io.Writer
		stderr   io.Writer
		flags    rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Backends BackendFactory
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		verbose    bool
		configPath string
		trace      bool
	}

	// session is everything one command invocation resolves with.
	session struct {
		cfg      *config.Config
		logger   *log.Logger
		resolver *need.Resolver
		loader   *need.Loader
		tracer   trace.Tracer
		backend  string
		shutdown telemetry.ShutdownFunc
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Backends == nil {
		deps.Backends = defaultBackends
	}

	return &App{
		Config:   deps.Config,
		Backends: deps.Backends,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

// loadConfig loads configuration honoring the --config flag.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
}

// verbose reports whether verbose output was requested by flag or config.
func (a *App) verbose(cfg *config.Config) bool {
	return a.flags.verbose || (cfg != nil && cfg.UI.Verbose)
}

// newLogger builds the stderr logger at the level the config asks for.
// Verbose mode always logs at debug level.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName})

	level, err := log.ParseLevel(cfg.LogLevel.String())
	if err != nil {
		level = log.InfoLevel
	}
	if a.verbose(cfg) {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

// newSession loads configuration and builds the resolver stack for one
// command invocation. The caller must call session.close.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := a.newLogger(cfg)

	acc, label, err := a.Backends(ctx, cfg.Backend)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open module backend").
			WithResource(backendResource(cfg.Backend)).
			WithSuggestion("Check the backend section of your configuration ('need config show')").
			WithSuggestion("For git backends, verify the repository URL, ref and credentials").
			WithIssue(issue.BackendUnavailableId).
			Wrap(err).
			BuildError()
	}

	tp, shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        a.flags.trace || cfg.Trace,
		ServiceName:    config.AppName,
		ServiceVersion: Version,
		Writer:         a.stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	if a.flags.trace || cfg.Trace {
		acc = accessor.NewTraced(acc, label, accessor.WithTracerProvider(tp))
	}

	opts := append(cfg.ResolverOptions(), need.WithLogger(logger))
	resolver, err := need.New(acc, opts...)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	logger.Debug("backend ready", "backend", label, "dependency_dir", cfg.DependencyDir)

	return &session{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		loader:   need.NewLoader(resolver, nil),
		tracer:   tp.Tracer(tracerName),
		backend:  label,
		shutdown: shutdown,
	}, nil
}

// close flushes pending spans.
func (s *session) close(ctx context.Context) {
	if err := s.shutdown(ctx); err != nil {
		s.logger.Warn("failed to flush traces", "err", err)
	}
}

// defaultBackends builds the production accessor for cfg.
func defaultBackends(ctx context.Context, cfg config.BackendConfig) (need.Accessor, string, error) {
	switch cfg.Kind {
	case config.BackendFS:
		return accessor.NewOSRoot(cfg.Root), cfg.Kind.String(), nil
	case config.BackendHTTP:
		acc, err := accessor.NewHTTP(cfg.BaseURL,
			accessor.WithTimeout(cfg.Timeout),
			accessor.WithNoCache(cfg.NoCache))
		if err != nil {
			return nil, "", err
		}
		return acc, cfg.Kind.String(), nil
	case config.BackendGit:
		acc, err := accessor.CloneGit(ctx, cfg.GitURL, cfg.GitRef)
		if err != nil {
			return nil, "", err
		}
		return acc, cfg.Kind.String() + "@" + acc.Commit()[:7], nil
	default:
		return nil, "", &config.InvalidBackendKindError{Value: cfg.Kind}
	}
}

// backendResource names the location a backend reads from.
func backendResource(cfg config.BackendConfig) string {
	switch cfg.Kind {
	case config.BackendHTTP:
		return cfg.BaseURL
	case config.BackendGit:
		return cfg.GitURL
	default:
		return cfg.Root
	}
}
