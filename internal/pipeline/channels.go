package pipeline

import (
	"github.com/shopspring/decimal"

	"enterprise-readiness/internal/usage"
)

// DefaultHiddenRatio is the marketplace-to-direct spend ratio at or above
// which an account is flagged as hidden from the direct sales motion.
const DefaultHiddenRatio = 3.0

// noDirectRatio stands in for the ratio when marketplaces carry spend and the
// direct API carries none.
const noDirectRatio = 99.0

// ChannelMix is the latest-period spend split of one account.
type ChannelMix struct {
	Active      int
	Direct      decimal.Decimal
	Marketplace decimal.Decimal
	Ratio       float64
	Hidden      bool
}

// NoDirectSpend reports whether the ratio is the no-direct placeholder.
func (m ChannelMix) NoDirectSpend() bool {
	return m.Marketplace.IsPositive() && !m.Direct.IsPositive()
}

func channelMix(acct usage.Account, hiddenRatio float64) ChannelMix {
	latest := acct.LatestByChannel()
	mix := ChannelMix{
		Direct:      latest[usage.ChannelDirectAPI],
		Marketplace: latest[usage.ChannelMarketplaceA].Add(latest[usage.ChannelMarketplaceB]),
	}
	for _, c := range usage.Channels {
		if latest[c].IsPositive() {
			mix.Active++
		}
	}

	switch {
	case !mix.Marketplace.IsPositive():
	case mix.Direct.IsPositive():
		mix.Ratio = mix.Marketplace.Div(mix.Direct).InexactFloat64()
	default:
		mix.Ratio = noDirectRatio
	}
	mix.Hidden = mix.Marketplace.IsPositive() && mix.Ratio >= hiddenRatio
	return mix
}
