package app

import (
	"context"
	"fmt"
	"io"

	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/report"
	"enterprise-readiness/internal/stage"
	"enterprise-readiness/internal/usage"
)

// Score prints the ranked table, optionally filtered by stage.
func (a *App) Score(ctx context.Context, opts ScoreOptions) error {
	filter := make([]stage.Stage, 0, len(opts.Stages))
	for _, raw := range opts.Stages {
		s, err := stage.Parse(raw)
		if err != nil {
			return err
		}
		filter = append(filter, s)
	}

	pipe, batch, _, err := a.scoreAll(ctx, opts.Input)
	if err != nil {
		return err
	}

	results := pipeline.FilterStage(batch.Results, filter...)
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	if len(results) == 0 {
		fmt.Fprintln(a.Out, "no accounts matched")
	} else if err := report.WriteTable(a.Out, results); err != nil {
		return err
	}

	if opts.Distribution {
		fmt.Fprintln(a.Out)
		if err := report.WriteDistribution(a.Out, batch.Results, pipe.Classifier().Bands()); err != nil {
			return err
		}
		fmt.Fprintln(a.Out)
		if err := report.WriteChannelMix(a.Out, batch.Results); err != nil {
			return err
		}
		fmt.Fprintln(a.Out)
		if err := report.WriteHiddenAccounts(a.Out, batch.Results); err != nil {
			return err
		}
	}

	a.reportFailures(batch)
	return nil
}

// Explain prints the full breakdown for a single account.
func (a *App) Explain(ctx context.Context, opts ExplainOptions) error {
	if opts.AccountID == "" {
		return fmt.Errorf("account id is required")
	}

	pipe, batch, accounts, err := a.scoreAll(ctx, opts.Input)
	if err != nil {
		return err
	}

	for _, f := range batch.Failures {
		if f.AccountID == opts.AccountID {
			return f
		}
	}
	res, ok := pipeline.Find(batch.Results, opts.AccountID)
	if !ok {
		return fmt.Errorf("account %s not found", opts.AccountID)
	}

	var acct usage.Account
	for _, candidate := range accounts {
		if candidate.ID == opts.AccountID {
			acct = candidate
			break
		}
	}

	if err := report.WriteExplanation(a.Out, res, acct, pipe.Classifier().Bands()); err != nil {
		return err
	}

	if opts.PNGPath != "" {
		if err := report.ToFile(opts.PNGPath, func(w io.Writer) error {
			return report.WriteUsagePNG(w, acct)
		}); err != nil {
			return err
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("usage chart written")
	}
	return nil
}

func (a *App) reportFailures(batch pipeline.Batch) {
	if len(batch.Failures) == 0 {
		return
	}
	a.Logger.Warn().Int("failed", len(batch.Failures)).Msg("some accounts were rejected; see warnings above")
}
