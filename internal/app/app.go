// Package app wires all YojanaSetu subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Close
// tears everything down in order.
//
// For testing, inject fakes via functional options (WithStore, WithLogger).
// When an option is not provided, New creates real implementations from the
// config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/smarathe/yojanasetu/internal/config"
	"github.com/smarathe/yojanasetu/internal/dialogue"
	"github.com/smarathe/yojanasetu/internal/extract"
	"github.com/smarathe/yojanasetu/internal/health"
	"github.com/smarathe/yojanasetu/internal/rank"
	"github.com/smarathe/yojanasetu/internal/resilience"
	"github.com/smarathe/yojanasetu/internal/scheme"
	"github.com/smarathe/yojanasetu/internal/server"
	"github.com/smarathe/yojanasetu/internal/sessionstore"
	"github.com/smarathe/yojanasetu/pkg/provider/oracle"
	"github.com/smarathe/yojanasetu/pkg/provider/stt"
	"github.com/smarathe/yojanasetu/pkg/provider/tts"
)

// shutdownGrace bounds how long Run waits for in-flight requests after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// Providers holds one interface value per provider slot. STT and TTS are
// required; a nil Oracle disables LLM-assisted scheme selection. Populated
// by main via the config registry.
type Providers struct {
	STT    stt.Provider
	TTS    tts.Provider
	Oracle oracle.Provider
}

// App owns all subsystem lifetimes.
type App struct {
	cfg *config.Config
	log *slog.Logger

	store      sessionstore.Store
	closeStore func()
	watcher    *scheme.Watcher
	srv        *server.Server
}

// Option customizes an [App].
type Option func(*App)

// WithLogger sets the application logger. Defaults to [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.log = log
		}
	}
}

// WithStore injects a session store, bypassing the configured driver.
func WithStore(s sessionstore.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// New creates and connects all subsystems: the session store, the scheme
// corpus (bootstrapped into the store), the resilience-guarded providers,
// the turn engine, and the HTTP server. Call [App.Run] to serve and
// [App.Close] to release resources.
func New(ctx context.Context, cfg *config.Config, providers Providers, opts ...Option) (*App, error) {
	if providers.STT == nil {
		return nil, errors.New("app: STT provider is required")
	}
	if providers.TTS == nil {
		return nil, errors.New("app: TTS provider is required")
	}

	a := &App{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		store, closeStore, err := openStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closeStore = closeStore
	}

	corpus, err := scheme.LoadCorpus(cfg.Corpus.Path)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("app: load corpus: %w", err)
	}
	if err := a.store.BootstrapSchemes(ctx, corpus.All()); err != nil {
		a.close()
		return nil, fmt.Errorf("app: bootstrap schemes: %w", err)
	}
	a.log.Info("corpus loaded", "path", cfg.Corpus.Path, "schemes", corpus.Len())

	guardedSTT := resilience.NewSTTGuard(providers.STT, resilience.CircuitBreakerConfig{})
	guardedTTS := resilience.NewTTSGuard(providers.TTS, resilience.CircuitBreakerConfig{})
	var rankOracle oracle.Provider = oracle.Disabled{}
	if providers.Oracle != nil {
		rankOracle = resilience.NewOracleGuard(providers.Oracle, resilience.CircuitBreakerConfig{})
	}

	extractor := newExtractor(cfg.Extract)
	engine := a.buildEngine(corpus, rankOracle, extractor)

	healthHandler := health.New(map[string]string{
		"stt":    cfg.Providers.STT.Name,
		"tts":    cfg.Providers.TTS.Name,
		"oracle": cfg.Providers.Oracle.Name,
		"store":  string(cfg.Store.Driver),
	}, health.Checker{Name: "store", Check: a.pingStore})

	a.srv = server.New(a.store, guardedSTT, guardedTTS, extractor, engine,
		server.WithLanguage(cfg.Dialogue.Language),
		server.WithHealth(healthHandler),
		server.WithLogger(a.log),
	)

	if cfg.Corpus.WatchInterval > 0 {
		w, err := scheme.NewWatcher(cfg.Corpus.Path, func(_, next *scheme.Corpus) {
			a.srv.SetEngine(a.buildEngine(next, rankOracle, extractor))
			if err := a.store.BootstrapSchemes(context.Background(), next.All()); err != nil {
				a.log.Warn("bootstrap reloaded schemes", "err", err)
			}
		}, scheme.WithInterval(cfg.Corpus.WatchInterval))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("app: watch corpus: %w", err)
		}
		a.watcher = w
	}

	return a, nil
}

// buildEngine assembles a ranker and turn engine over the given corpus. It
// runs once at startup and again on every corpus hot-reload.
func (a *App) buildEngine(corpus *scheme.Corpus, p oracle.Provider, ex *extract.Extractor) *dialogue.Engine {
	rankOpts := []rank.Option{rank.WithOracle(p), rank.WithLogger(a.log)}
	if a.cfg.Rank.OracleTimeout > 0 {
		rankOpts = append(rankOpts, rank.WithOracleTimeout(a.cfg.Rank.OracleTimeout))
	}
	ranker := rank.New(corpus, rankOpts...)

	engOpts := []dialogue.Option{
		dialogue.WithExtractor(ex),
		dialogue.WithSchemeStore(a.store),
		dialogue.WithLogger(a.log),
	}
	if a.cfg.Dialogue.ConfidenceFloor > 0 {
		engOpts = append(engOpts, dialogue.WithConfidenceFloor(a.cfg.Dialogue.ConfidenceFloor))
	}
	if a.cfg.Dialogue.RetrieveK > 0 {
		engOpts = append(engOpts, dialogue.WithRetrieveK(a.cfg.Dialogue.RetrieveK))
	}
	return dialogue.New(corpus, ranker, engOpts...)
}

// newExtractor applies the configured extractor tunables over the defaults.
func newExtractor(cfg config.ExtractConfig) *extract.Extractor {
	var opts []extract.Option
	if cfg.IncomeFloor > 0 {
		opts = append(opts, extract.WithIncomeFloor(cfg.IncomeFloor))
	}
	if cfg.FuzzyCutoff > 0 {
		opts = append(opts, extract.WithFuzzyCutoff(cfg.FuzzyCutoff))
	}
	if cfg.FuzzyMaxLen > 0 {
		opts = append(opts, extract.WithFuzzyMaxLen(cfg.FuzzyMaxLen))
	}
	return extract.New(opts...)
}

// openStore builds the configured session store and its release function.
func openStore(ctx context.Context, cfg config.StoreConfig) (sessionstore.Store, func(), error) {
	switch cfg.Driver {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("app: connect postgres: %w", err)
		}
		store := sessionstore.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("app: migrate postgres: %w", err)
		}
		return store, pool.Close, nil

	case config.StoreSQLite:
		store, err := sessionstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("app: open sqlite: %w", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("close sqlite store", "err", err)
			}
		}, nil

	case config.StoreMemory:
		return sessionstore.NewMemoryStore(), nil, nil

	default:
		return nil, nil, fmt.Errorf("app: unknown store driver %q", cfg.Driver)
	}
}

// pingStore probes the session store for readiness.
func (a *App) pingStore(ctx context.Context) error {
	_, _, err := a.store.GetScheme(ctx, "readiness-probe")
	return err
}

// Handler returns the HTTP handler, for tests that serve in-process.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases all resources. It returns the first serve error, or nil on a
// clean shutdown.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	httpSrv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           a.srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			a.log.Info("listening", "addr", a.cfg.Server.ListenAddr, "tls", true)
			err = httpSrv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			a.log.Info("listening", "addr", a.cfg.Server.ListenAddr, "tls", false)
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// close releases the watcher and the store. Safe to call more than once.
func (a *App) close() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	if a.closeStore != nil {
		a.closeStore()
		a.closeStore = nil
	}
}
