// Package signals derives normalized, independently interpretable signals from
// an account's usage history. Every signal is a pure function of the history
// and lands in [0, 1]; degenerate histories produce 0.
package signals

import (
	"fmt"
	"math"

	"enterprise-readiness/internal/usage"
)

// Name identifies a signal.
type Name string

const (
	Growth             Name = "usage_growth"
	ProductionMaturity Name = "production_maturity"
	TeamAdoption       Name = "team_adoption"
	CrossChannel       Name = "cross_channel"
	Risk               Name = "risk"
)

// Positive lists the signals that add to the score, in reporting order.
var Positive = []Name{Growth, ProductionMaturity, TeamAdoption, CrossChannel}

// Label returns the category label used in reports.
func (n Name) Label() string {
	switch n {
	case Growth:
		return "Usage Intensity & Growth"
	case ProductionMaturity:
		return "Production Maturity"
	case TeamAdoption:
		return "Team Adoption"
	case CrossChannel:
		return "Cross-Channel Footprint"
	case Risk:
		return "Risk"
	default:
		return string(n)
	}
}

// Params tunes the signal transforms.
type Params struct {
	LookbackPeriods    int
	GrowthSaturation   float64
	GrowthCap          float64
	SeatSaturation     float64
	AdoptionTrendShare float64
}

// DefaultParams mirrors the documented configuration defaults.
func DefaultParams() Params {
	return Params{
		LookbackPeriods:    3,
		GrowthSaturation:   0.5,
		GrowthCap:          10,
		SeatSaturation:     100,
		AdoptionTrendShare: 0.2,
	}
}

// Validate rejects tuning values that would make a transform undefined.
func (p Params) Validate() error {
	if p.LookbackPeriods <= 0 {
		return fmt.Errorf("lookback_periods must be greater than zero")
	}
	if p.GrowthSaturation <= 0 {
		return fmt.Errorf("growth_saturation must be greater than zero")
	}
	if p.GrowthCap <= 0 {
		return fmt.Errorf("growth_cap must be greater than zero")
	}
	if p.SeatSaturation <= 0 {
		return fmt.Errorf("seat_saturation must be greater than zero")
	}
	if p.AdoptionTrendShare < 0 || p.AdoptionTrendShare > 1 {
		return fmt.Errorf("adoption_trend_share must be within [0, 1]")
	}
	return nil
}

// Signal is a named signal value. Raw carries the un-normalized measure where
// one exists (relative growth, production ratio, active channel count).
type Signal struct {
	Name       Name
	Raw        float64
	Normalized float64
}

// Func computes one signal from a usage history.
type Func func(h usage.History, p Params) Signal

// Set holds one value per signal for an account.
type Set struct {
	Growth             Signal
	ProductionMaturity Signal
	TeamAdoption       Signal
	CrossChannel       Signal
	Risk               Signal
}

// Get returns the signal with the given name.
func (s Set) Get(n Name) Signal {
	switch n {
	case Growth:
		return s.Growth
	case ProductionMaturity:
		return s.ProductionMaturity
	case TeamAdoption:
		return s.TeamAdoption
	case CrossChannel:
		return s.CrossChannel
	case Risk:
		return s.Risk
	default:
		return Signal{Name: n}
	}
}

// All returns every signal, positive contributors first.
func (s Set) All() []Signal {
	return []Signal{s.Growth, s.ProductionMaturity, s.TeamAdoption, s.CrossChannel, s.Risk}
}

// Compute runs every transform over the account's snapshots.
func Compute(snapshots []usage.Snapshot, p Params) Set {
	h := usage.NewHistory(snapshots)
	return Set{
		Growth:             ComputeGrowth(h, p),
		ProductionMaturity: ComputeProductionMaturity(h, p),
		TeamAdoption:       ComputeTeamAdoption(h, p),
		CrossChannel:       ComputeCrossChannel(h, p),
		Risk:               ComputeRisk(h, p),
	}
}

var (
	_ Func = ComputeGrowth
	_ Func = ComputeProductionMaturity
	_ Func = ComputeTeamAdoption
	_ Func = ComputeCrossChannel
	_ Func = ComputeRisk
)

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// relativeChange returns (current-baseline)/baseline bounded to [-1, limit].
// A zero baseline with positive current usage yields limit.
func relativeChange(current, baseline, limit float64) float64 {
	if baseline <= 0 {
		if current > 0 {
			return limit
		}
		return 0
	}
	return clamp((current-baseline)/baseline, -1, limit)
}
