// Package report renders scored accounts as tables, CSV and PNG charts.
// It only formats pipeline results; nothing here recomputes a score.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/signals"
	"enterprise-readiness/internal/stage"
	"enterprise-readiness/internal/usage"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// WriteTable prints the ranked results with their per-category breakdown.
func WriteTable(w io.Writer, results []pipeline.Result) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Rank\tAccount\tName\tSegment\tScore\tStage\tGrowth\tProd\tTeam\tChannels\tPenalty\tAction")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
			r.Rank,
			r.AccountID,
			sanitizeInline(r.Name),
			sanitizeInline(r.Segment),
			r.Score.Value,
			r.Stage,
			points(r, signals.Growth),
			points(r, signals.ProductionMaturity),
			points(r, signals.TeamAdoption),
			points(r, signals.CrossChannel),
			r.Score.Penalty,
			r.Action,
		)
	}
	return tw.Flush()
}

// WriteDistribution prints how many results fall into each stage band.
func WriteDistribution(w io.Writer, results []pipeline.Result, bands []stage.Band) error {
	counts := pipeline.Distribution(results)
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Stage\tBand\tAccounts\tShare")
	for i := len(bands) - 1; i >= 0; i-- {
		b := bands[i]
		share := 0.0
		if len(results) > 0 {
			share = 100 * float64(counts[b.Stage]) / float64(len(results))
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f%%\n", b.Stage, bandLabel(b), counts[b.Stage], share)
	}
	return tw.Flush()
}

// WriteExplanation prints everything known about one scored account.
func WriteExplanation(w io.Writer, r pipeline.Result, acct usage.Account, bands []stage.Band) error {
	fmt.Fprintf(w, "%s  %s\n", r.AccountID, sanitizeInline(r.Name))
	if r.Segment != "" {
		fmt.Fprintf(w, "Segment: %s\n", sanitizeInline(r.Segment))
	}
	fmt.Fprintf(w, "Rank %d  Score %.1f/100  Stage %s", r.Rank, r.Score.Value, r.Stage)
	for _, b := range bands {
		if b.Stage == r.Stage {
			fmt.Fprintf(w, " (%s)", bandLabel(b))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Signal\tRaw\tNormalized\tWeight\tPoints")
	for _, c := range r.Score.Contributions {
		sig := r.Signals.Get(c.Signal)
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.2f\t%.1f\n", c.Signal.Label(), sig.Raw, c.Normalized, c.Weight, c.Points)
	}
	fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t\t-%.1f\n", signals.Risk.Label(), r.Signals.Risk.Raw, r.Signals.Risk.Normalized, r.Score.Penalty)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Latest spend by channel:")
	latest := acct.LatestByChannel()
	tw = newTabWriter(w)
	for _, c := range usage.Channels {
		v, ok := latest[c]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\n", c.Label(), v.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(latest) == 0 {
		fmt.Fprintln(w, "  (no usage)")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Action: %s\n", r.Action)
	_, err := fmt.Fprintf(w, "Why: %s\n", r.Rationale)
	return err
}

// StageCounts returns the per-stage counts keyed by stage key, for logs.
func StageCounts(results []pipeline.Result) map[string]int {
	out := make(map[string]int, len(stage.All))
	for s, n := range pipeline.Distribution(results) {
		out[s.Key()] = n
	}
	return out
}

// ToFile creates path, including parent directories, and renders into it.
// A failed render leaves no partial file behind.
func ToFile(path string, render func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func points(r pipeline.Result, n signals.Name) float64 {
	c, _ := r.Score.Contribution(n)
	return c.Points
}

func bandLabel(b stage.Band) string {
	if b.Max >= 100 {
		return fmt.Sprintf("%g-100", b.Min)
	}
	return fmt.Sprintf("%g-<%g", b.Min, b.Max)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}
