package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"enterprise-readiness/internal/scoring"
	"enterprise-readiness/internal/signals"
	"enterprise-readiness/internal/stage"
	"enterprise-readiness/internal/usage"
)

// Result is the full output for one account. Presentation code reads it as is.
type Result struct {
	Rank      int
	AccountID string
	Name      string
	Segment   string
	Signals   signals.Set
	Score     scoring.Score
	Stage     stage.Stage
	Channels  ChannelMix
	Action    string
	Rationale string
}

// Failure records an account that could not be scored.
type Failure struct {
	AccountID string
	Err       error
}

func (f Failure) Error() string {
	return fmt.Sprintf("account %s: %v", f.AccountID, f.Err)
}

// Batch holds the outcome of scoring several accounts. Failures never
// prevent the remaining accounts from being scored.
type Batch struct {
	Results  []Result
	Failures []Failure
}

// Options wire the pipeline stages together.
type Options struct {
	Signals    signals.Params
	Scoring    scoring.Params
	Thresholds stage.Thresholds
	Workers    int

	// HiddenRatio defaults to DefaultHiddenRatio when zero.
	HiddenRatio float64
}

// Pipeline runs usage → signals → score → stage for accounts.
type Pipeline struct {
	signals     signals.Params
	engine      *scoring.Engine
	classifier  *stage.Classifier
	workers     int
	hiddenRatio float64
	logger      zerolog.Logger
}

// New validates the options and builds a pipeline.
func New(opts Options, logger zerolog.Logger) (*Pipeline, error) {
	if err := opts.Signals.Validate(); err != nil {
		return nil, fmt.Errorf("signals: %w", err)
	}
	engine, err := scoring.NewEngine(opts.Scoring)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	classifier, err := stage.NewClassifier(opts.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("stages: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	hiddenRatio := opts.HiddenRatio
	switch {
	case hiddenRatio < 0:
		return nil, fmt.Errorf("hidden ratio must not be negative")
	case hiddenRatio == 0:
		hiddenRatio = DefaultHiddenRatio
	}

	return &Pipeline{
		signals:     opts.Signals,
		engine:      engine,
		classifier:  classifier,
		workers:     workers,
		hiddenRatio: hiddenRatio,
		logger:      logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Classifier exposes the stage bands used by the pipeline.
func (p *Pipeline) Classifier() *stage.Classifier {
	return p.classifier
}

// Evaluate validates and scores a single account.
func (p *Pipeline) Evaluate(acct usage.Account) (Result, error) {
	if err := usage.Validate(acct); err != nil {
		return Result{}, err
	}

	set := signals.Compute(acct.Snapshots, p.signals)
	score := p.engine.Score(set)
	st, err := p.classifier.Classify(score.Value)
	if err != nil {
		return Result{}, fmt.Errorf("classify account %s: %w", acct.ID, err)
	}

	res := Result{
		AccountID: acct.ID,
		Name:      acct.Name,
		Segment:   acct.Segment,
		Signals:   set,
		Score:     score,
		Stage:     st,
		Channels:  channelMix(acct, p.hiddenRatio),
	}
	res.Action = RecommendedAction(res)
	res.Rationale = Rationale(res)
	return res, nil
}

// EvaluateAll scores accounts concurrently and returns ranked results.
// Per-account failures are collected; only cancellation aborts the batch.
func (p *Pipeline) EvaluateAll(ctx context.Context, accounts []usage.Account) (Batch, error) {
	results := make([]Result, len(accounts))
	errs := make([]error, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range accounts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = p.Evaluate(accounts[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	batch := Batch{Results: make([]Result, 0, len(accounts))}
	for i, err := range errs {
		if err != nil {
			batch.Failures = append(batch.Failures, Failure{AccountID: accounts[i].ID, Err: err})
			p.logFailure(accounts[i].ID, err)
			continue
		}
		batch.Results = append(batch.Results, results[i])
	}
	Rank(batch.Results)

	p.logger.Info().
		Int("accounts", len(accounts)).
		Int("scored", len(batch.Results)).
		Int("failed", len(batch.Failures)).
		Msg("batch scored")
	return batch, nil
}

func (p *Pipeline) logFailure(accountID string, err error) {
	event := p.logger.Warn().Str("account_id", accountID).Err(err)
	var verr *usage.ValidationError
	if errors.As(err, &verr) {
		event = event.Str("field", verr.Field)
	}
	event.Msg("account rejected")
}
