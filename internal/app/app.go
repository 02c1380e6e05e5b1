package app

import (
	"context"
	"fmt"
	"log/slog"

	"historycal/internal/config"
	"historycal/internal/infrastructure/fetch"
	"historycal/internal/infrastructure/scheduler"
	"historycal/internal/infrastructure/sink"
	"historycal/internal/infrastructure/sources/bilibili"
	"historycal/internal/infrastructure/sources/leagueofgraphs"
	"historycal/internal/infrastructure/sources/odenseminar"
	"historycal/internal/infrastructure/sources/wakatime"
	"historycal/internal/infrastructure/sources/youtube"
	"historycal/internal/infrastructure/storage"
	"historycal/internal/logging"
	"historycal/internal/ports"
	"historycal/internal/source"
	"historycal/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. A source whose
// construction fails is dropped from the run with a logged reason.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := buildStateStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	deliverySink, err := buildSink(ctx, cfg.Calendar, baseLogger)
	if err != nil {
		return nil, err
	}

	registry := source.NewRegistry()
	registry.Register(wakatime.Name, wakatime.New)
	registry.Register(bilibili.Name, bilibili.New)
	registry.Register(leagueofgraphs.Name, leagueofgraphs.New)
	registry.Register(odenseminar.Name, odenseminar.New)
	registry.Register(youtube.Name, youtube.New)

	sources := buildSources(cfg, registry, store, baseLogger)
	if len(sources) == 0 {
		baseLogger.Warn("no sources active; the scheduler will tick idle")
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher: fetch.NewClient(nil),
		Sink:    deliverySink,
		Logger:  baseLogger.With("component", "pipeline"),
	})

	driver := buildDriver(cfg.Scheduler)
	sched := usecase.NewScheduler(driver, pipeline, sources, baseLogger.With("component", "scheduler"))

	return &Application{cfg: cfg, logger: baseLogger, scheduler: sched}, nil
}

// Run starts the scheduler and blocks until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

func buildStateStore(cfg config.StorageConfig) (ports.StateStore, error) {
	if cfg.DSN == "" {
		return storage.NewFileStore(cfg.Dir), nil
	}

	db, err := storage.Open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect state database: %w", err)
	}
	return storage.NewPostgresStore(db), nil
}

func buildSink(ctx context.Context, cfg config.CalendarConfig, logger *slog.Logger) (ports.Sink, error) {
	if cfg.DryRun || cfg.CredentialsFile == "" {
		if !cfg.DryRun {
			logger.Warn("no calendar credentials configured, deliveries are logged only")
		}
		return sink.NewLogSink(logger.With("component", "sink.log")), nil
	}

	calendarSink, err := sink.NewCalendarSink(ctx, cfg.CredentialsFile, logger.With("component", "sink.calendar"))
	if err != nil {
		return nil, fmt.Errorf("build calendar sink: %w", err)
	}
	return calendarSink, nil
}

func buildSources(cfg config.Config, registry *source.Registry, store ports.StateStore, logger *slog.Logger) []source.Source {
	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		factory, err := registry.Resolve(sc.Name)
		if err != nil {
			logger.Warn("unknown source in config, skipped", "source", sc.Name)
			continue
		}

		calendarID := sc.CalendarID
		if calendarID == "" {
			calendarID = cfg.Calendar.DefaultCalendarID
		}

		src, err := factory(source.Config{
			URL:        sc.URL,
			CalendarID: calendarID,
			Headers:    sc.Headers,
		}, store, logger.With("component", "source."+sc.Name))
		if err != nil {
			logger.Warn("source dropped from run", "source", sc.Name, "error", err)
			continue
		}

		sources = append(sources, src)
	}
	return sources
}

func buildDriver(cfg config.SchedulerConfig) ports.Scheduler {
	if cfg.CronExpression != "" {
		return scheduler.NewCronScheduler(cfg.CronExpression, cfg.Location())
	}
	return scheduler.NewIntervalScheduler(cfg.Interval)
}
