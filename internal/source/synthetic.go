package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"enterprise-readiness/internal/usage"
)

// SyntheticOptions tune the seeded demo data generator.
type SyntheticOptions struct {
	Seed     int64
	Accounts int
	Periods  int
}

type span struct{ lo, hi float64 }

func (s span) draw(r *rand.Rand) float64 {
	return s.lo + r.Float64()*(s.hi-s.lo)
}

// archetype shapes one population of generated accounts.
type archetype struct {
	name       string
	share      float64
	spend      span
	growth     span
	prodRatio  span
	seats      span
	channels   []int
	abandonPct float64
}

var archetypes = []archetype{
	{name: "enterprise_ready", share: 0.10, spend: span{30_000, 80_000}, growth: span{0.15, 0.50}, prodRatio: span{0.85, 0.98}, seats: span{50, 300}, channels: []int{3, 4, 4}},
	{name: "high_velocity", share: 0.20, spend: span{15_000, 45_000}, growth: span{0.20, 0.60}, prodRatio: span{0.70, 0.92}, seats: span{0, 100}, channels: []int{2, 3, 3}},
	{name: "qualified", share: 0.30, spend: span{5_000, 25_000}, growth: span{0.05, 0.30}, prodRatio: span{0.50, 0.80}, seats: span{0, 30}, channels: []int{1, 2, 2}},
	{name: "nurture", share: 0.24, spend: span{2_000, 12_000}, growth: span{-0.05, 0.20}, prodRatio: span{0.40, 0.65}, seats: span{0, 10}, channels: []int{1, 1, 2}},
	{name: "at_risk", share: 0.16, spend: span{500, 5_000}, growth: span{-0.30, 0.0}, prodRatio: span{0.15, 0.45}, seats: span{0, 0}, channels: []int{1, 1, 2}, abandonPct: 0.5},
}

var (
	industries = []string{
		"Financial Services", "Healthcare", "Technology", "E-commerce",
		"Media & Entertainment", "Education", "Legal", "Manufacturing",
		"Real Estate", "Consulting", "Insurance", "Logistics",
		"Telecommunications", "Government", "Energy",
	}
	namePrefixes = []string{"Northwind", "Bluefield", "Cobalt", "Harbor", "Summit", "Ironwood", "Lumen", "Meridian", "Oakridge", "Pioneer", "Quarry", "Redwood", "Silverline", "Tidewater", "Vantage"}
	nameSuffixes = []string{"Labs", "Systems", "Group", "Holdings", "Analytics", "Partners", "Works", "Health", "Capital", "Logistics"}
	apiChannels  = []usage.Channel{usage.ChannelDirectAPI, usage.ChannelMarketplaceA, usage.ChannelMarketplaceB}
)

const seatPrice = 30

// Synthetic fabricates reproducible accounts for demos and tests. Output for
// a given seed is stable.
type Synthetic struct {
	opts   SyntheticOptions
	logger zerolog.Logger
}

// NewSynthetic constructs a synthetic source.
func NewSynthetic(opts SyntheticOptions, logger zerolog.Logger) *Synthetic {
	return &Synthetic{opts: opts, logger: logger.With().Str("component", "source_synthetic").Logger()}
}

// LoadAccounts generates the configured number of accounts.
func (s *Synthetic) LoadAccounts(ctx context.Context) ([]usage.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.opts.Accounts <= 0 || s.opts.Periods <= 0 {
		return nil, fmt.Errorf("synthetic source needs positive accounts and periods")
	}

	accounts := Generate(s.opts)
	s.logger.Debug().Int64("seed", s.opts.Seed).Int("accounts", len(accounts)).Msg("synthetic accounts generated")
	return accounts, nil
}

// Generate builds opts.Accounts accounts spread over the archetypes.
func Generate(opts SyntheticOptions) []usage.Account {
	r := rand.New(rand.NewSource(opts.Seed))
	counts := archetypeCounts(opts.Accounts)

	accounts := make([]usage.Account, 0, opts.Accounts)
	next := 1001
	for i, arch := range archetypes {
		for n := 0; n < counts[i]; n++ {
			accounts = append(accounts, generateAccount(r, arch, next, opts.Periods))
			next++
		}
	}
	return accounts
}

// archetypeCounts splits total by share, handing rounding leftovers to the
// earliest archetypes.
func archetypeCounts(total int) []int {
	counts := make([]int, len(archetypes))
	assigned := 0
	for i, arch := range archetypes {
		counts[i] = int(math.Floor(arch.share * float64(total)))
		assigned += counts[i]
	}
	for i := 0; assigned < total; i = (i + 1) % len(counts) {
		counts[i]++
		assigned++
	}
	return counts
}

func generateAccount(r *rand.Rand, arch archetype, number, periods int) usage.Account {
	acct := usage.Account{
		ID:      fmt.Sprintf("ACC-%d", number),
		Name:    fmt.Sprintf("%s %s", namePrefixes[r.Intn(len(namePrefixes))], nameSuffixes[r.Intn(len(nameSuffixes))]),
		Segment: industries[r.Intn(len(industries))],
	}

	baseSpend := arch.spend.draw(r)
	growth := arch.growth.draw(r)
	prodRatio := arch.prodRatio.draw(r)
	seats := int(math.Round(arch.seats.draw(r)))
	nChannels := arch.channels[r.Intn(len(arch.channels))]

	apiCount := nChannels
	if seats > 0 && nChannels > 1 {
		apiCount = nChannels - 1
	}
	if apiCount > len(apiChannels) {
		apiCount = len(apiChannels)
	}
	shares := channelShares(r, apiCount)

	abandonAt := -1
	if apiCount > 1 && r.Float64() < arch.abandonPct {
		abandonAt = periods - 1 - r.Intn(int(math.Max(1, float64(periods)/4)))
	}

	monthly := math.Pow(1+growth, 1.0/12) - 1
	for p := 0; p < periods; p++ {
		level := baseSpend * math.Pow(1+monthly, float64(p-(periods-1)))
		for c := 0; c < apiCount; c++ {
			volume := math.Max(level*shares[c]*noise(r), 0)
			if c == apiCount-1 && abandonAt >= 0 && p >= abandonAt {
				volume = 0
			}
			acct.Snapshots = append(acct.Snapshots, split(apiChannels[c], p, volume, prodRatio+r.NormFloat64()*0.02, 0))
		}
		if seats > 0 {
			active := seatsAt(seats, growth, p, periods)
			acct.Snapshots = append(acct.Snapshots, split(usage.ChannelSeatBased, p, float64(active*seatPrice), 1, active))
		}
	}
	return acct
}

func channelShares(r *rand.Rand, n int) []float64 {
	shares := make([]float64, n)
	total := 0.0
	for i := range shares {
		shares[i] = 0.5 + r.Float64()
		total += shares[i]
	}
	for i := range shares {
		shares[i] /= total
	}
	return shares
}

func noise(r *rand.Rand) float64 {
	return math.Max(0.5, 1+r.NormFloat64()*0.08)
}

// seatsAt ramps seats toward the final count along the account's growth rate.
func seatsAt(final int, growth float64, period, periods int) int {
	factor := math.Pow(1+growth, float64(period-(periods-1))/12)
	return int(math.Max(0, math.Round(float64(final)*factor)))
}

// split rounds volume to cents and divides it so production and
// non-production add up to the volume exactly.
func split(c usage.Channel, period int, volume, prodRatio float64, seats int) usage.Snapshot {
	ratio := math.Max(0, math.Min(1, prodRatio))
	total := decimal.NewFromFloat(volume).Round(2)
	production := total.Mul(decimal.NewFromFloat(ratio)).Round(2)
	if production.GreaterThan(total) {
		production = total
	}
	return usage.Snapshot{
		Channel:       c,
		Period:        period,
		Volume:        total,
		Production:    production,
		NonProduction: total.Sub(production),
		ActiveSeats:   seats,
	}
}

var _ AccountSource = (*Synthetic)(nil)
