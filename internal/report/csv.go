package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/signals"
)

var csvHeader = []string{
	"rank", "account_id", "name", "segment", "score", "stage",
	"usage_growth", "production_maturity", "team_adoption", "cross_channel", "risk",
	"usage_growth_points", "production_maturity_points", "team_adoption_points", "cross_channel_points",
	"risk_penalty", "recommended_action", "rationale",
	"active_channels", "direct_spend", "marketplace_spend", "marketplace_to_direct", "hidden",
}

// WriteCSV writes one row per result in rank order.
func WriteCSV(w io.Writer, results []pipeline.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range results {
		record := []string{
			strconv.Itoa(r.Rank),
			r.AccountID,
			r.Name,
			r.Segment,
			formatFloat(r.Score.Value, 2),
			r.Stage.String(),
		}
		for _, sig := range r.Signals.All() {
			record = append(record, formatFloat(sig.Normalized, 4))
		}
		for _, n := range signals.Positive {
			record = append(record, formatFloat(points(r, n), 2))
		}
		record = append(record, formatFloat(r.Score.Penalty, 2), r.Action, r.Rationale)
		record = append(record,
			strconv.Itoa(r.Channels.Active),
			r.Channels.Direct.StringFixed(2),
			r.Channels.Marketplace.StringFixed(2),
			formatFloat(r.Channels.Ratio, 2),
			strconv.FormatBool(r.Channels.Hidden),
		)

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
