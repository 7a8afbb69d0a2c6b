package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"enterprise-readiness/internal/stage"
)

// Rank orders results by score descending, breaking ties by account id, and
// assigns 1-based ranks in place.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score.Value != results[j].Score.Value {
			return results[i].Score.Value > results[j].Score.Value
		}
		return results[i].AccountID < results[j].AccountID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

// Distribution counts results per stage. Every stage is present.
func Distribution(results []Result) map[stage.Stage]int {
	counts := make(map[stage.Stage]int, len(stage.All))
	for _, s := range stage.All {
		counts[s] = 0
	}
	for _, r := range results {
		counts[r.Stage]++
	}
	return counts
}

// FilterStage keeps results in one of the given stages, preserving order.
// An empty filter keeps everything.
func FilterStage(results []Result, stages ...stage.Stage) []Result {
	if len(stages) == 0 {
		return results
	}
	want := make(map[stage.Stage]struct{}, len(stages))
	for _, s := range stages {
		want[s] = struct{}{}
	}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if _, ok := want[r.Stage]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the result for accountID.
func Find(results []Result, accountID string) (Result, bool) {
	for _, r := range results {
		if r.AccountID == accountID {
			return r, true
		}
	}
	return Result{}, false
}

// HiddenAccounts returns flagged results ordered by marketplace spend,
// largest first, then by account id.
func HiddenAccounts(results []Result) []Result {
	hidden := make([]Result, 0)
	for _, r := range results {
		if r.Channels.Hidden {
			hidden = append(hidden, r)
		}
	}
	sort.SliceStable(hidden, func(i, j int) bool {
		if cmp := hidden[i].Channels.Marketplace.Cmp(hidden[j].Channels.Marketplace); cmp != 0 {
			return cmp > 0
		}
		return hidden[i].AccountID < hidden[j].AccountID
	})
	return hidden
}

// ChannelSummary compares accounts by how many channels carry spend.
type ChannelSummary struct {
	// Counts maps an active-channel count to the number of accounts.
	Counts    map[int]int
	Multi     int
	Single    int
	MultiAvg  float64
	SingleAvg float64

	Hidden            int
	HiddenMarketplace decimal.Decimal
}

// Sizes returns the active-channel counts present, ascending.
func (s ChannelSummary) Sizes() []int {
	sizes := make([]int, 0, len(s.Counts))
	for n := range s.Counts {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	return sizes
}

// SummarizeChannels builds the channel distribution of results. Accounts
// without latest-period spend count toward neither average.
func SummarizeChannels(results []Result) ChannelSummary {
	sum := ChannelSummary{Counts: make(map[int]int)}
	var multiTotal, singleTotal float64
	for _, r := range results {
		sum.Counts[r.Channels.Active]++
		switch {
		case r.Channels.Active >= 2:
			sum.Multi++
			multiTotal += r.Score.Value
		case r.Channels.Active == 1:
			sum.Single++
			singleTotal += r.Score.Value
		}
		if r.Channels.Hidden {
			sum.Hidden++
			sum.HiddenMarketplace = sum.HiddenMarketplace.Add(r.Channels.Marketplace)
		}
	}
	if sum.Multi > 0 {
		sum.MultiAvg = multiTotal / float64(sum.Multi)
	}
	if sum.Single > 0 {
		sum.SingleAvg = singleTotal / float64(sum.Single)
	}
	return sum
}
