package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"enterprise-readiness/internal/alerting"
	"enterprise-readiness/internal/config"
	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/scheduler"
	"enterprise-readiness/internal/service"
	"enterprise-readiness/internal/source"
	"enterprise-readiness/internal/storage"
	"enterprise-readiness/internal/usage"
	"enterprise-readiness/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) newPipeline() (*pipeline.Pipeline, error) {
	thresholds, err := a.Config.Model.Thresholds()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Signals:     a.Config.Model.SignalParams(),
		Scoring:     a.Config.Model.ScoringParams(),
		Thresholds:  thresholds,
		Workers:     a.Config.Pipeline.Workers,
		HiddenRatio: a.Config.Model.HiddenRatio,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger).WithRateLimit(cfg.RateLimit)
	}
	return alerting.NewLogNotifier(a.Logger)
}

// openSource builds the configured account source. A non-empty input path
// overrides the configuration with a file source.
func (a *App) openSource(ctx context.Context, input string) (source.AccountSource, func(), error) {
	kind := a.Config.Source.Kind
	path := a.Config.Source.Path
	if input != "" {
		kind, path = config.SourceFile, input
	}

	switch kind {
	case config.SourceFile:
		return source.NewFile(path, a.Logger), func() {}, nil
	case config.SourceSynthetic:
		syn := a.Config.Source.Synthetic
		return source.NewSynthetic(source.SyntheticOptions{
			Seed:     syn.Seed,
			Accounts: syn.Accounts,
			Periods:  syn.Periods,
		}, a.Logger), func() {}, nil
	case config.SourcePostgres:
		if a.Config.Database.DSN == "" {
			return nil, nil, storage.ErrNotConfigured
		}
		pool, err := storage.NewPool(ctx, a.Config.Database)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewStore(pool)
		if count, err := store.CountAccounts(ctx); err == nil {
			a.Logger.Info().Int64("accounts", count).Msg("connected to usage database")
		}
		return source.NewPostgres(store, a.Config.Database.QueryTimeout, a.Logger), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("source.kind %q is not supported", kind)
	}
}

// scoreAll loads every account from the source and runs the pipeline.
func (a *App) scoreAll(ctx context.Context, input string) (*pipeline.Pipeline, pipeline.Batch, []usage.Account, error) {
	pipe, err := a.newPipeline()
	if err != nil {
		return nil, pipeline.Batch{}, nil, err
	}

	src, closeSource, err := a.openSource(ctx, input)
	if err != nil {
		return nil, pipeline.Batch{}, nil, err
	}
	defer closeSource()

	accounts, err := src.LoadAccounts(ctx)
	if err != nil {
		return nil, pipeline.Batch{}, nil, fmt.Errorf("load accounts: %w", err)
	}

	batch, err := pipe.EvaluateAll(ctx, accounts)
	if err != nil {
		return nil, pipeline.Batch{}, nil, err
	}
	return pipe, batch, accounts, nil
}

// Run executes the long-running scoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pipe, err := a.newPipeline()
	if err != nil {
		return err
	}

	src, closeSource, err := a.openSource(ctx, "")
	if err != nil {
		return err
	}
	defer closeSource()

	sched, err := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		Cron:           a.Config.Scheduler.Cron,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
		RunImmediately: a.Config.Scheduler.RunImmediately,
	}, a.Logger)
	if err != nil {
		return err
	}

	var tracker *alerting.Tracker
	notifier := a.newNotifier()
	if notifier != nil {
		stages, err := a.Config.Alerting.AlertStages()
		if err != nil {
			return err
		}
		tracker = alerting.NewTracker(stages)
	} else {
		a.Logger.Warn().Msg("alerting disabled; promotions will not be reported")
	}

	svc := service.New(sched, src, pipe, tracker, notifier, a.Logger)

	a.Logger.Info().
		Dur("interval", a.Config.Scheduler.Interval).
		Str("cron", a.Config.Scheduler.Cron).
		Str("source", a.Config.Source.Kind).
		Str("scoring_model", version.ScoringModel).
		Msg("starting scoring service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("scoring service stopped")
	return nil
}

// ScoreOptions configure the score command.
type ScoreOptions struct {
	Input        string
	Limit        int
	Stages       []string
	Distribution bool
}

// ExplainOptions configure the explain command.
type ExplainOptions struct {
	Input     string
	AccountID string
	PNGPath   string
}

// ExportOptions hold parameters for exporting ranked results.
type ExportOptions struct {
	Input   string
	CSVPath string
	PNGPath string
	TopN    int
}

// SimulateOptions configure synthetic dataset generation. Zero values fall
// back to the synthetic source configuration.
type SimulateOptions struct {
	Out      string
	Seed     int64
	Accounts int
	Periods  int
}
