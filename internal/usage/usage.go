package usage

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Channel identifies a commercial path through which an account consumes the product.
type Channel string

const (
	ChannelDirectAPI    Channel = "direct_api"
	ChannelMarketplaceA Channel = "marketplace_a"
	ChannelMarketplaceB Channel = "marketplace_b"
	ChannelSeatBased    Channel = "seat_based"
)

// Channels lists every known channel in display order.
var Channels = []Channel{ChannelDirectAPI, ChannelMarketplaceA, ChannelMarketplaceB, ChannelSeatBased}

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelDirectAPI, ChannelMarketplaceA, ChannelMarketplaceB, ChannelSeatBased:
		return true
	default:
		return false
	}
}

// Committed reports whether usage on the channel is contractually committed
// rather than pay-as-you-go.
func (c Channel) Committed() bool {
	return c == ChannelSeatBased
}

// Label returns a human readable channel name.
func (c Channel) Label() string {
	switch c {
	case ChannelDirectAPI:
		return "Direct API"
	case ChannelMarketplaceA:
		return "Marketplace A"
	case ChannelMarketplaceB:
		return "Marketplace B"
	case ChannelSeatBased:
		return "Seat-Based"
	default:
		return string(c)
	}
}

// ParseChannel converts a configuration or storage value into a Channel.
func ParseChannel(v string) (Channel, error) {
	c := Channel(v)
	if !c.Valid() {
		return "", fmt.Errorf("unknown channel %q", v)
	}
	return c, nil
}

// Snapshot is one channel's usage for one period.
type Snapshot struct {
	Channel       Channel
	Period        int
	Volume        decimal.Decimal
	Production    decimal.Decimal
	NonProduction decimal.Decimal
	ActiveSeats   int
}

// Account is an account identity plus its per-channel usage history.
type Account struct {
	ID        string
	Name      string
	Segment   string
	Snapshots []Snapshot
}

// PeriodTotals aggregates every channel for a single period.
type PeriodTotals struct {
	Period      int
	Volume      float64
	Production  float64
	ActiveSeats int
	SeatData    bool
	ByChannel   map[Channel]float64
}

// History is the per-period view of an account's snapshots, ordered by period.
type History struct {
	Periods []PeriodTotals
}

// NewHistory groups snapshots by period. The input is not modified.
func NewHistory(snapshots []Snapshot) History {
	index := make(map[int]*PeriodTotals)
	for _, snap := range snapshots {
		totals, ok := index[snap.Period]
		if !ok {
			totals = &PeriodTotals{Period: snap.Period, ByChannel: make(map[Channel]float64, len(Channels))}
			index[snap.Period] = totals
		}
		volume := snap.Volume.InexactFloat64()
		totals.Volume += volume
		totals.Production += snap.Production.InexactFloat64()
		totals.ByChannel[snap.Channel] += volume
		if snap.Channel == ChannelSeatBased {
			totals.ActiveSeats += snap.ActiveSeats
			totals.SeatData = true
		}
	}

	periods := make([]PeriodTotals, 0, len(index))
	for _, totals := range index {
		periods = append(periods, *totals)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period < periods[j].Period })
	return History{Periods: periods}
}

// Empty reports whether the history has no periods.
func (h History) Empty() bool {
	return len(h.Periods) == 0
}

// Current returns the most recent period.
func (h History) Current() (PeriodTotals, bool) {
	if len(h.Periods) == 0 {
		return PeriodTotals{}, false
	}
	return h.Periods[len(h.Periods)-1], true
}

// Baseline returns the period lookback steps before the current one, or the
// earliest period when the history is shorter. It reports false when the
// history holds fewer than two periods.
func (h History) Baseline(lookback int) (PeriodTotals, bool) {
	if len(h.Periods) < 2 {
		return PeriodTotals{}, false
	}
	if lookback <= 0 {
		lookback = 1
	}
	idx := len(h.Periods) - 1 - lookback
	if idx < 0 {
		idx = 0
	}
	return h.Periods[idx], true
}

// ActiveChannels returns channels with positive volume in the period, in display order.
func (p PeriodTotals) ActiveChannels() []Channel {
	active := make([]Channel, 0, len(Channels))
	for _, c := range Channels {
		if p.ByChannel[c] > 0 {
			active = append(active, c)
		}
	}
	return active
}

// LatestByChannel returns the volume per channel in the most recent period.
func (a Account) LatestByChannel() map[Channel]decimal.Decimal {
	out := make(map[Channel]decimal.Decimal, len(Channels))
	latest, found := 0, false
	for _, snap := range a.Snapshots {
		if !found || snap.Period > latest {
			latest, found = snap.Period, true
		}
	}
	if !found {
		return out
	}
	for _, snap := range a.Snapshots {
		if snap.Period == latest {
			out[snap.Channel] = out[snap.Channel].Add(snap.Volume)
		}
	}
	return out
}
