package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"enterprise-readiness/internal/alerting"
	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/report"
	"enterprise-readiness/internal/scheduler"
	"enterprise-readiness/internal/source"
)

// Service re-scores the account source on a schedule and reports stage
// promotions.
type Service struct {
	scheduler *scheduler.Scheduler
	source    source.AccountSource
	pipeline  *pipeline.Pipeline
	tracker   *alerting.Tracker
	notifier  alerting.Notifier
	logger    zerolog.Logger
}

// New constructs the watch service. A nil notifier disables digests.
func New(sched *scheduler.Scheduler, src source.AccountSource, pipe *pipeline.Pipeline, tracker *alerting.Tracker, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		scheduler: sched,
		source:    src,
		pipeline:  pipe,
		tracker:   tracker,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the scoring loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessRun)
}

// ProcessRun loads, scores and diffs one snapshot of the account source.
func (s *Service) ProcessRun(ctx context.Context, at time.Time) error {
	accounts, err := s.source.LoadAccounts(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}

	batch, err := s.pipeline.EvaluateAll(ctx, accounts)
	if err != nil {
		return fmt.Errorf("score accounts: %w", err)
	}

	event := s.logger.Info().Time("at", at).Int("scored", len(batch.Results)).Int("failed", len(batch.Failures))
	for key, n := range report.StageCounts(batch.Results) {
		event = event.Int(key, n)
	}
	event.Msg("run scored")

	if s.tracker == nil {
		return nil
	}
	promotions := s.tracker.Observe(batch.Results)
	if len(promotions) == 0 || s.notifier == nil {
		return nil
	}

	note := alerting.Notification{
		GeneratedAt: at,
		Accounts:    len(batch.Results),
		Promotions:  promotions,
	}
	if len(batch.Failures) > 0 {
		note.AdditionalMsg = fmt.Sprintf("%d account(s) could not be scored\n", len(batch.Failures))
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Int("promotions", len(promotions)).Msg("failed to dispatch digest")
	}
	return nil
}
