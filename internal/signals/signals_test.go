package signals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enterprise-readiness/internal/usage"
)

func snap(c usage.Channel, period int, prod, nonProd float64, seats int) usage.Snapshot {
	p := decimal.NewFromFloat(prod)
	n := decimal.NewFromFloat(nonProd)
	return usage.Snapshot{Channel: c, Period: period, Volume: p.Add(n), Production: p, NonProduction: n, ActiveSeats: seats}
}

func history(snaps ...usage.Snapshot) usage.History {
	return usage.NewHistory(snaps)
}

func TestZeroHistoryIsNeutral(t *testing.T) {
	set := Compute(nil, DefaultParams())
	for _, sig := range set.All() {
		assert.Zerof(t, sig.Normalized, "signal %s", sig.Name)
	}
}

func TestSingleSnapshotHasNoGrowth(t *testing.T) {
	set := Compute([]usage.Snapshot{snap(usage.ChannelDirectAPI, 0, 100, 0, 0)}, DefaultParams())
	assert.Zero(t, set.Growth.Normalized)
	assert.Equal(t, 1.0, set.ProductionMaturity.Normalized)
	assert.Zero(t, set.CrossChannel.Normalized)
}

func TestGrowth(t *testing.T) {
	p := DefaultParams()

	cases := []struct {
		name       string
		h          usage.History
		raw        float64
		normalized float64
	}{
		{"flat", history(snap(usage.ChannelDirectAPI, 0, 100, 0, 0), snap(usage.ChannelDirectAPI, 1, 100, 0, 0)), 0, 0},
		{"quarter growth", history(snap(usage.ChannelDirectAPI, 0, 100, 0, 0), snap(usage.ChannelDirectAPI, 1, 125, 0, 0)), 0.25, 0.5},
		{"saturated", history(snap(usage.ChannelDirectAPI, 0, 100, 0, 0), snap(usage.ChannelDirectAPI, 1, 300, 0, 0)), 2, 1},
		{"decline", history(snap(usage.ChannelDirectAPI, 0, 100, 0, 0), snap(usage.ChannelDirectAPI, 1, 50, 0, 0)), -0.5, 0},
		{"from zero", history(snap(usage.ChannelDirectAPI, 0, 0, 0, 0), snap(usage.ChannelDirectAPI, 1, 50, 0, 0)), p.GrowthCap, 1},
		{"all zero", history(snap(usage.ChannelDirectAPI, 0, 0, 0, 0), snap(usage.ChannelDirectAPI, 1, 0, 0, 0)), 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig := ComputeGrowth(tc.h, p)
			assert.InDelta(t, tc.raw, sig.Raw, 1e-9)
			assert.InDelta(t, tc.normalized, sig.Normalized, 1e-9)
		})
	}
}

func TestGrowthIgnoresUsageLevel(t *testing.T) {
	flat := history(
		snap(usage.ChannelDirectAPI, 0, 80000, 0, 0),
		snap(usage.ChannelDirectAPI, 1, 80000, 0, 0),
	)
	sig := ComputeGrowth(flat, DefaultParams())
	assert.Zero(t, sig.Raw)
	assert.Zero(t, sig.Normalized, "a large but flat account earns no growth credit")
}

func TestGrowthUsesLookbackBaseline(t *testing.T) {
	p := DefaultParams()
	p.LookbackPeriods = 2
	h := history(
		snap(usage.ChannelDirectAPI, 0, 10, 0, 0),
		snap(usage.ChannelDirectAPI, 1, 100, 0, 0),
		snap(usage.ChannelDirectAPI, 2, 100, 0, 0),
		snap(usage.ChannelDirectAPI, 3, 110, 0, 0),
	)
	assert.InDelta(t, 0.1, ComputeGrowth(h, p).Raw, 1e-9)
}

func TestProductionMaturity(t *testing.T) {
	p := DefaultParams()
	sig := ComputeProductionMaturity(history(
		snap(usage.ChannelDirectAPI, 0, 0, 100, 0),
		snap(usage.ChannelDirectAPI, 1, 60, 20, 0),
		snap(usage.ChannelMarketplaceA, 1, 15, 5, 0),
	), p)
	assert.InDelta(t, 0.75, sig.Normalized, 1e-9)

	empty := ComputeProductionMaturity(history(snap(usage.ChannelDirectAPI, 0, 0, 0, 0)), p)
	assert.Zero(t, empty.Normalized)
}

func TestTeamAdoptionSaturates(t *testing.T) {
	p := DefaultParams()

	none := ComputeTeamAdoption(history(snap(usage.ChannelDirectAPI, 0, 10, 0, 0)), p)
	assert.Zero(t, none.Normalized)

	steady := ComputeTeamAdoption(history(
		snap(usage.ChannelSeatBased, 0, 100, 0, 50),
		snap(usage.ChannelSeatBased, 1, 100, 0, 50),
	), p)
	assert.InDelta(t, 0.4, steady.Normalized, 1e-9)

	outlier := ComputeTeamAdoption(history(
		snap(usage.ChannelSeatBased, 0, 100, 0, 100),
		snap(usage.ChannelSeatBased, 1, 100, 0, 100000),
	), p)
	assert.InDelta(t, 1.0, outlier.Normalized, 1e-9)
}

func TestCrossChannel(t *testing.T) {
	p := DefaultParams()

	single := ComputeCrossChannel(history(snap(usage.ChannelDirectAPI, 0, 10, 0, 0)), p)
	assert.Zero(t, single.Normalized)
	assert.Equal(t, 1.0, single.Raw)

	even := ComputeCrossChannel(history(
		snap(usage.ChannelDirectAPI, 0, 10, 0, 0),
		snap(usage.ChannelMarketplaceA, 0, 10, 0, 0),
		snap(usage.ChannelMarketplaceB, 0, 10, 0, 0),
		snap(usage.ChannelSeatBased, 0, 10, 0, 5),
	), p)
	assert.InDelta(t, 1.0, even.Normalized, 1e-9)

	skewed := ComputeCrossChannel(history(
		snap(usage.ChannelDirectAPI, 0, 90, 0, 0),
		snap(usage.ChannelMarketplaceA, 0, 10, 0, 0),
	), p)
	balanced := ComputeCrossChannel(history(
		snap(usage.ChannelDirectAPI, 0, 50, 0, 0),
		snap(usage.ChannelMarketplaceA, 0, 50, 0, 0),
	), p)
	assert.Less(t, skewed.Normalized, balanced.Normalized)
	assert.Greater(t, skewed.Normalized, 0.0)
}

func TestRisk(t *testing.T) {
	p := DefaultParams()

	healthy := ComputeRisk(history(
		snap(usage.ChannelDirectAPI, 0, 100, 0, 0),
		snap(usage.ChannelSeatBased, 0, 100, 0, 10),
		snap(usage.ChannelDirectAPI, 1, 120, 0, 0),
		snap(usage.ChannelSeatBased, 1, 100, 0, 10),
	), p)
	assert.Zero(t, healthy.Normalized)

	single := ComputeRisk(history(snap(usage.ChannelDirectAPI, 0, 100, 100, 0)), p)
	assert.Zero(t, single.Normalized, "a single data point is neutral")

	concentrated := ComputeRisk(history(
		snap(usage.ChannelMarketplaceB, 0, 100, 0, 0),
		snap(usage.ChannelMarketplaceB, 1, 100, 0, 0),
	), p)
	assert.InDelta(t, concentrationShare, concentrated.Normalized, 1e-9)

	abandoned := ComputeRisk(history(
		snap(usage.ChannelDirectAPI, 0, 100, 0, 0),
		snap(usage.ChannelMarketplaceA, 0, 100, 0, 0),
		snap(usage.ChannelDirectAPI, 1, 50, 0, 0),
		snap(usage.ChannelMarketplaceA, 1, 0, 0, 0),
	), p)
	// 75% decline saturates, one of two channels dropped, one pay-as-you-go channel left.
	assert.InDelta(t, declineShare+abandonmentShare*0.5+concentrationShare, abandoned.Normalized, 1e-9)
	assert.LessOrEqual(t, abandoned.Normalized, 1.0)
}

func TestComputeIsDeterministic(t *testing.T) {
	snaps := []usage.Snapshot{
		snap(usage.ChannelDirectAPI, 0, 33.3, 11.1, 0),
		snap(usage.ChannelMarketplaceA, 0, 7.7, 1.1, 0),
		snap(usage.ChannelDirectAPI, 1, 40.2, 2.2, 0),
		snap(usage.ChannelSeatBased, 1, 120, 0, 14),
	}
	first := Compute(snaps, DefaultParams())
	second := Compute(snaps, DefaultParams())
	require.Equal(t, first, second)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.GrowthSaturation = 0
	require.Error(t, p.Validate())

	p = DefaultParams()
	p.AdoptionTrendShare = 1.5
	require.Error(t, p.Validate())
}
