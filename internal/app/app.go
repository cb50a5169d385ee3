package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"pipeledger/internal/calendar"
	"pipeledger/internal/config"
	"pipeledger/internal/exporter"
	"pipeledger/internal/freshness"
	"pipeledger/internal/infrastructure"
	"pipeledger/internal/ingest"
	"pipeledger/internal/ledger"
	"pipeledger/internal/merger"
	"pipeledger/internal/services"
	handlers "pipeledger/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	OTel      *infrastructure.OTelProviders
	Ledgers   *ledger.Store
	Freshness freshness.Store
	Holidays  calendar.HolidaySet
	Merger    *merger.Merger
	Runner    *ingest.Runner

	LedgerService   *services.LedgerService
	SpreadService   *services.SpreadService
	ContractService *services.ContractService
	HealthService   *services.HealthService

	CSV      *exporter.CSVWriter
	Workbook *exporter.WorkbookExporter
}

// Options adjust New for tests and one-shot commands.
type Options struct {
	// Paths overrides path resolution from cfg.Paths.
	Paths *config.Paths
	// InMemoryFreshness keeps freshness records in memory only.
	InMemoryFreshness bool
}

// New creates a new application instance with dependency injection
func New(cfg *config.Config, logger *slog.Logger, opts Options) (_ *Application, err error) {
	a := &Application{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	a.Paths = opts.Paths
	if a.Paths == nil {
		if a.Paths, err = config.GetPaths(cfg.Paths); err != nil {
			return nil, fmt.Errorf("failed to get paths: %w", err)
		}
	}
	if err := a.Paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	a.Paths.LogPathResolution()

	if a.OTel, err = infrastructure.InitializeOTel(cfg.Telemetry, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	if opts.InMemoryFreshness {
		a.Freshness = freshness.NewMemoryStore()
	} else {
		a.Freshness, err = freshness.OpenBadger(freshness.BadgerConfig{Path: a.Paths.FreshnessDir, Logger: logger})
		if err != nil {
			return nil, err
		}
	}
	a.Ledgers = ledger.NewStore(a.Paths.LedgerDir, logger)

	if a.Holidays, err = loadHolidays(a.Paths.HolidaysFile, cfg.Merge.HolidayCalendar, logger); err != nil {
		return nil, err
	}

	metrics, err := infrastructure.CreateMergeMetrics(a.OTel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge metrics: %w", err)
	}
	mergeOpts := []merger.Option{
		merger.WithLogger(logger),
		merger.WithMetrics(metrics),
		merger.WithTracer(a.OTel.Tracer),
		merger.WithWorkers(cfg.Merge.Workers),
	}
	if cfg.Merge.GapFill {
		mergeOpts = append(mergeOpts, merger.WithGapFill(ledger.FillOptions{
			Anchor:   cfg.Merge.Anchor(),
			Targets:  cfg.Merge.Targets(),
			Holidays: a.Holidays,
		}))
	}
	a.Merger = merger.New(a.Ledgers, a.Freshness, mergeOpts...)
	a.Runner = ingest.NewRunner(
		ingest.NewDiscovery(a.Paths.InboxDir, a.Freshness),
		ingest.NewReader(logger),
		a.Merger,
		logger,
	)

	a.LedgerService = services.NewLedgerService(a.Ledgers, a.Freshness, logger)
	a.SpreadService = services.NewSpreadService(a.Ledgers, logger)
	a.ContractService = services.NewContractService(a.Holidays)
	a.HealthService = services.NewHealthService(config.AppVersion, a.Ledgers, a.Freshness, logger)

	a.CSV = exporter.NewCSVWriter(a.Paths, logger)
	a.Workbook = exporter.NewWorkbookExporter(a.Paths, logger)

	logger.Info("Application initialized",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("holidays", len(a.Holidays)),
		slog.Bool("gap_fill", cfg.Merge.GapFill))
	return a, nil
}

// loadHolidays reads the holiday file. A missing file means no holidays.
func loadHolidays(path, name string, logger *slog.Logger) (calendar.HolidaySet, error) {
	if path == "" {
		return calendar.NewHolidaySet(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("holidays file not found, weekends only",
			slog.String("path", path))
		return calendar.NewHolidaySet(), nil
	}
	return calendar.LoadNamedHolidays(path, name)
}

// CatchUp merges every inbox file published since the last run.
func (a *Application) CatchUp(ctx context.Context) (merger.Result, error) {
	return a.Runner.CatchUp(ctx)
}

// Watch catches up once and then merges new inbox files as they land, until
// ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	if _, err := a.CatchUp(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "initial catch-up failed", slog.String("error", err.Error()))
	}
	w, err := ingest.NewWatcher(a.Paths.InboxDir, a.Config.Merge.WatchDebounce, a.Logger,
		func(ctx context.Context) error {
			_, err := a.CatchUp(ctx)
			return err
		})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// Router builds the HTTP handler.
func (a *Application) Router() (*chi.Mux, error) {
	return handlers.NewRouter(handlers.RouterDeps{
		Ledger:    a.LedgerService,
		Spread:    a.SpreadService,
		Contract:  a.ContractService,
		Health:    a.HealthService,
		Providers: a.OTel,
		RateLimit: a.Config.Server.RateLimit,
		Timeout:   a.Config.Server.ReadTimeout,
		Logger:    a.Logger,
	})
}

// Serve runs the HTTP server, and the inbox watcher when watch is set, until
// ctx is done, then shuts the server down gracefully.
func (a *Application) Serve(ctx context.Context, watch bool) error {
	router, err := a.Router()
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})
	if watch {
		g.Go(func() error { return a.Watch(ctx) })
	}
	return g.Wait()
}

// Close releases the freshness database and flushes telemetry.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.Freshness != nil {
		if err := a.Freshness.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close freshness store: %w", err))
		}
	}
	if a.OTel != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.OTel.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
