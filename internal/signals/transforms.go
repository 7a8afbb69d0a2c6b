package signals

import (
	"enterprise-readiness/internal/usage"
)

const (
	declineShare       = 0.5
	abandonmentShare   = 0.3
	concentrationShare = 0.2
)

// ComputeGrowth measures relative change in total volume between the current
// period and the trailing baseline. Negative growth normalizes to 0; the
// decline is surfaced by the risk signal instead.
func ComputeGrowth(h usage.History, p Params) Signal {
	sig := Signal{Name: Growth}
	current, ok := h.Current()
	if !ok {
		return sig
	}
	baseline, ok := h.Baseline(p.LookbackPeriods)
	if !ok {
		return sig
	}

	sig.Raw = relativeChange(current.Volume, baseline.Volume, p.GrowthCap)
	sig.Normalized = clamp(sig.Raw/p.GrowthSaturation, 0, 1)
	return sig
}

// ComputeProductionMaturity is the production share of current-period volume.
func ComputeProductionMaturity(h usage.History, p Params) Signal {
	sig := Signal{Name: ProductionMaturity}
	current, ok := h.Current()
	if !ok || current.Volume <= 0 {
		return sig
	}

	sig.Raw = clamp(current.Production/current.Volume, 0, 1)
	sig.Normalized = sig.Raw
	return sig
}

// ComputeTeamAdoption blends a saturating seat level with the seat trend, so
// a single very large seat count cannot exceed 1.
func ComputeTeamAdoption(h usage.History, p Params) Signal {
	sig := Signal{Name: TeamAdoption}
	current, ok := h.Current()
	if !ok || !current.SeatData {
		return sig
	}

	seats := float64(current.ActiveSeats)
	sig.Raw = seats
	level := clamp(seats/p.SeatSaturation, 0, 1)

	trend := 0.0
	if baseline, ok := h.Baseline(p.LookbackPeriods); ok {
		change := relativeChange(seats, float64(baseline.ActiveSeats), p.GrowthCap)
		trend = clamp(change/p.GrowthSaturation, 0, 1)
	}

	sig.Normalized = clamp((1-p.AdoptionTrendShare)*level+p.AdoptionTrendShare*trend, 0, 1)
	return sig
}

// ComputeCrossChannel rewards presence on several channels and an even spread
// of volume across them. Zero or one active channel scores 0.
func ComputeCrossChannel(h usage.History, p Params) Signal {
	sig := Signal{Name: CrossChannel}
	current, ok := h.Current()
	if !ok {
		return sig
	}

	active := current.ActiveChannels()
	sig.Raw = float64(len(active))
	if len(active) <= 1 {
		return sig
	}

	total := 0.0
	for _, c := range active {
		total += current.ByChannel[c]
	}
	hhi := 0.0
	for _, c := range active {
		share := current.ByChannel[c] / total
		hhi += share * share
	}

	n := float64(len(usage.Channels))
	presence := (sig.Raw - 1) / (n - 1)
	evenness := clamp((1-hhi)/(1-1/n), 0, 1)
	sig.Normalized = clamp(0.5*presence+0.5*evenness, 0, 1)
	return sig
}

// ComputeRisk combines usage decline, abandoned channels and concentration in
// a single pay-as-you-go channel into a non-negative magnitude. A history
// without a baseline period carries no risk.
func ComputeRisk(h usage.History, p Params) Signal {
	sig := Signal{Name: Risk}
	current, ok := h.Current()
	if !ok {
		return sig
	}

	decline, abandonment, concentration := 0.0, 0.0, 0.0
	if baseline, ok := h.Baseline(p.LookbackPeriods); ok {
		change := relativeChange(current.Volume, baseline.Volume, p.GrowthCap)
		if change < 0 {
			decline = clamp(-change/p.GrowthSaturation, 0, 1)
		}

		before := baseline.ActiveChannels()
		if len(before) > 0 {
			dropped := 0
			for _, c := range before {
				if current.ByChannel[c] <= 0 {
					dropped++
				}
			}
			abandonment = float64(dropped) / float64(len(before))
		}

		if active := current.ActiveChannels(); len(active) == 1 && !active[0].Committed() {
			concentration = 1
		}
	}

	sig.Normalized = clamp(declineShare*decline+abandonmentShare*abandonment+concentrationShare*concentration, 0, 1)
	sig.Raw = sig.Normalized
	return sig
}
