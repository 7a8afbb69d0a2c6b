package report

import (
	"fmt"
	"io"

	"enterprise-readiness/internal/pipeline"
)

// WriteChannelMix prints how many accounts spend on each number of channels
// and how multi-channel accounts score against single-channel ones.
func WriteChannelMix(w io.Writer, results []pipeline.Result) error {
	sum := pipeline.SummarizeChannels(results)
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Channels\tAccounts")
	for _, n := range sum.Sizes() {
		fmt.Fprintf(tw, "%d\t%d\n", n, sum.Counts[n])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Multi-channel avg score %.1f (%d), single-channel %.1f (%d), delta %+.1f\n",
		sum.MultiAvg, sum.Multi, sum.SingleAvg, sum.Single, sum.MultiAvg-sum.SingleAvg)
	return err
}

// WriteHiddenAccounts prints accounts whose marketplace spend dwarfs their
// direct API spend, with the marketplace revenue they represent.
func WriteHiddenAccounts(w io.Writer, results []pipeline.Result) error {
	hidden := pipeline.HiddenAccounts(results)
	if len(hidden) == 0 {
		_, err := fmt.Fprintln(w, "Hidden accounts: none")
		return err
	}

	sum := pipeline.SummarizeChannels(hidden)
	fmt.Fprintf(w, "Hidden accounts: %d, marketplace spend %s per period\n", sum.Hidden, sum.HiddenMarketplace.StringFixed(2))

	tw := newTabWriter(w)
	fmt.Fprintln(tw, "Account\tName\tDirect\tMarketplace\tRatio\tScore\tStage")
	for _, r := range hidden {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			r.AccountID,
			sanitizeInline(r.Name),
			r.Channels.Direct.StringFixed(2),
			r.Channels.Marketplace.StringFixed(2),
			ratioLabel(r.Channels),
			r.Score.Value,
			r.Stage,
		)
	}
	return tw.Flush()
}

func ratioLabel(mix pipeline.ChannelMix) string {
	if mix.NoDirectSpend() {
		return "no direct"
	}
	return fmt.Sprintf("%.1fx", mix.Ratio)
}
