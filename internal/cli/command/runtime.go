package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yndnr/lingvo-go/internal/cli/config"
	"github.com/yndnr/lingvo-go/internal/cli/connection"
	"github.com/yndnr/lingvo-go/internal/cli/output"
	"github.com/yndnr/lingvo-go/internal/core/domain"
	"github.com/yndnr/lingvo-go/internal/core/service"
	"github.com/yndnr/lingvo-go/internal/infra/buildinfo"
	"github.com/yndnr/lingvo-go/internal/infra/shutdown"
	"github.com/yndnr/lingvo-go/internal/infra/tlsroots"
	"github.com/yndnr/lingvo-go/internal/storage"
	"github.com/yndnr/lingvo-go/internal/telemetry/logger"
	"github.com/yndnr/lingvo-go/internal/telemetry/metric"
)

const shutdownTimeout = 5 * time.Second

// RuntimeOptions carries what the Before hook knows beyond the config.
type RuntimeOptions struct {
	ConfigPath string
	// Overrides are the configuration keys set by global flags.
	Overrides map[string]any
	Out        io.Writer
	Err        io.Writer
	In         io.Reader
	// Store replaces the badger credential store. Tests use a MemoryStore.
	Store storage.CredentialStore
	Clock clockwork.Clock
}

// Runtime holds the long-lived objects shared by all commands.
type Runtime struct {
	mu  sync.RWMutex
	cfg *config.Config

	configPath string
	overrides  map[string]any
	out        io.Writer
	errOut     io.Writer
	in         io.Reader

	log     logger.Logger
	metrics *metric.Registry
	store   storage.CredentialStore
	client  *connection.HTTPClient

	session      *service.Manager
	translations *service.ListController[domain.Translation]
	stats        *service.ListController[domain.Translation]
	detail       *service.DetailLoader
	orders       *service.OrderService

	shutdown    *shutdown.Handler
	restoreOnce sync.Once
	interactive atomic.Bool
}

// NewRuntime wires the application from cfg.
func NewRuntime(cfg *config.Config, opts RuntimeOptions) (*Runtime, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: opts.Err,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	tlsConfig, err := tlsroots.ClientConfig(cfg.API.CAFile)
	if err != nil {
		return nil, fmt.Errorf("load api.ca_file: %w", err)
	}

	metrics := metric.NewRegistry()
	client := connection.NewHTTPClient(connection.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		TLS:       tlsConfig,
		UserAgent: buildinfo.UserAgent(),
		Metrics:   metrics,
		Logger:    log,
	})

	store := opts.Store
	if store == nil {
		storeCfg := storage.DefaultConfig(cfg.Session.StoreDir)
		storeCfg.TTL = cfg.Session.TTL
		storeCfg.Passphrase = cfg.Session.Passphrase
		badgerOpts := []storage.BadgerOption{storage.WithLogger(log)}
		if opts.Clock != nil {
			badgerOpts = append(badgerOpts, storage.WithClock(opts.Clock))
		}
		if store, err = storage.OpenBadger(storeCfg, badgerOpts...); err != nil {
			return nil, err
		}
	}

	policy, err := service.ParseLogoutPolicy(cfg.Session.LogoutPolicy)
	if err != nil {
		store.Close()
		return nil, err
	}

	session := service.NewManager(client, store, service.ManagerConfig{
		LogoutPolicy: policy,
		Logger:       log,
		Metrics:      metrics,
	})
	if err := metrics.Register(metric.NewSessionCollector(session.Status)); err != nil {
		store.Close()
		return nil, err
	}

	listCfg := service.ListConfig{
		ClearOnError: cfg.List.ClearOnError,
		Logger:       log,
		Metrics:      metrics,
	}

	rt := &Runtime{
		cfg:          cfg,
		configPath:   opts.ConfigPath,
		overrides:    opts.Overrides,
		out:          opts.Out,
		errOut:       opts.Err,
		in:           opts.In,
		log:          log,
		metrics:      metrics,
		store:        store,
		client:       client,
		session:      session,
		translations: service.NewMyTranslations(client, session, listCfg),
		stats:        service.NewStatsList(client, session, listCfg),
		detail:       service.NewDetailLoader(client, session, log),
		orders:       service.NewOrderService(client, session, log),
		shutdown:     shutdown.NewHandler(shutdownTimeout),
	}

	rt.shutdown.OnShutdown(func(ctx context.Context) error {
		path := rt.Config().Metrics.Textfile
		if err := rt.metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		return nil
	})
	rt.shutdown.OnShutdown(func(ctx context.Context) error {
		return store.Close()
	})

	log.Debug("runtime ready", "base_url", client.BaseURL(), "store_dir", cfg.Session.StoreDir)
	return rt, nil
}

// Config returns the current configuration.
func (rt *Runtime) Config() *config.Config {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.cfg
}

// Reload applies settings that can change without reconnecting: the
// output format and the log level. Everything else needs a restart.
func (rt *Runtime) Reload(cfg *config.Config) {
	rt.mu.Lock()
	prev := rt.cfg
	next := *prev
	next.Output = cfg.Output
	next.Log.Level = cfg.Log.Level
	next.Metrics = cfg.Metrics
	rt.cfg = &next
	rt.mu.Unlock()

	logger.SetLevel(cfg.Log.Level)
	if cfg.API != prev.API || cfg.Session != prev.Session || cfg.List != prev.List {
		rt.log.Info("configuration changed; restart the shell to apply connection and session settings")
	}
	rt.log.Debug("configuration reloaded", "output", cfg.Output.Format, "log_level", cfg.Log.Level)
}

// Session returns the session manager.
func (rt *Runtime) Session() *service.Manager {
	return rt.session
}

// Metrics returns the metrics registry.
func (rt *Runtime) Metrics() *metric.Registry {
	return rt.metrics
}

// Interactive reports whether the shell owns the runtime.
func (rt *Runtime) Interactive() bool {
	return rt.interactive.Load()
}

// Close runs the shutdown hooks once.
func (rt *Runtime) Close() error {
	return rt.shutdown.Shutdown()
}

// restore validates a persisted credential once per runtime.
func (rt *Runtime) restore(ctx context.Context) {
	rt.restoreOnce.Do(func() {
		rt.session.Restore(ctx)
	})
}

// require restores the session if needed and checks the capability.
func (rt *Runtime) require(ctx context.Context, capability domain.Capability) (domain.Session, error) {
	rt.restore(ctx)
	snap := rt.session.Snapshot()
	switch domain.Authorize(snap, capability) {
	case domain.DenyLogin:
		return snap, domain.ErrNotAuthenticated.WithMessage("not logged in; run 'lingvo-cli login' first")
	case domain.DenyHome:
		return snap, domain.ErrPermissionDenied
	}
	return snap, nil
}

// check invalidates the session when the server rejected the credential,
// so the next command starts logged out instead of failing again.
func (rt *Runtime) check(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, domain.ErrCredentialRejected) {
		rt.session.Invalidate(ctx, err)
	}
	return err
}

// render writes data in the configured output format.
func (rt *Runtime) render(data any) error {
	format, err := output.ParseFormat(rt.Config().Output.Format)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(rt.out, data)
}

// printf writes human-oriented status lines. They are suppressed for
// machine-readable formats so stdout stays parseable.
func (rt *Runtime) printf(format string, args ...any) {
	if rt.Config().Output.Format != string(output.FormatTable) && rt.Config().Output.Format != "" {
		fmt.Fprintf(rt.errOut, format, args...)
		return
	}
	fmt.Fprintf(rt.out, format, args...)
}
