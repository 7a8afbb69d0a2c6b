package app

import (
	"context"
	"errors"
	"io"

	"enterprise-readiness/internal/report"
)

// Export writes the ranked results as CSV and/or a PNG chart of the top accounts.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	topN := a.Config.ResolveTopN(opts.TopN)

	_, batch, _, err := a.scoreAll(ctx, opts.Input)
	if err != nil {
		return err
	}
	if len(batch.Results) == 0 {
		a.Logger.Info().Msg("no scored accounts to export")
		return nil
	}

	a.Logger.Info().Int("accounts", len(batch.Results)).Int("top_n", topN).Msg("exporting results")

	if opts.CSVPath != "" {
		if err := report.ToFile(opts.CSVPath, func(w io.Writer) error {
			return report.WriteCSV(w, batch.Results)
		}); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := report.ToFile(opts.PNGPath, func(w io.Writer) error {
			return report.WriteRankingPNG(w, batch.Results, topN)
		}); err != nil {
			return err
		}
	}

	a.reportFailures(batch)
	return nil
}
