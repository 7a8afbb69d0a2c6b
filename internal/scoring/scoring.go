package scoring

import (
	"fmt"
	"math"

	"enterprise-readiness/internal/signals"
)

const (
	// MaxScore is the upper bound of every composite score.
	MaxScore = 100.0
	// MinScore is the lower bound of every composite score.
	MinScore = 0.0

	weightTolerance = 1e-6
)

// Weights assigns each positive signal its share of the score.
type Weights struct {
	UsageGrowth        float64
	ProductionMaturity float64
	TeamAdoption       float64
	CrossChannel       float64
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.UsageGrowth + w.ProductionMaturity + w.TeamAdoption + w.CrossChannel
}

// For returns the weight of the named positive signal.
func (w Weights) For(n signals.Name) float64 {
	switch n {
	case signals.Growth:
		return w.UsageGrowth
	case signals.ProductionMaturity:
		return w.ProductionMaturity
	case signals.TeamAdoption:
		return w.TeamAdoption
	case signals.CrossChannel:
		return w.CrossChannel
	default:
		return 0
	}
}

// Params holds the scoring constants.
//
// The weights must sum to WeightTotal and are rescaled so that maximal
// positive signals reach exactly MaxScore. Risk only subtracts: the penalty is
// Risk*RiskPenaltyScale points, never more than RiskPenaltyCap.
type Params struct {
	Weights          Weights
	WeightTotal      float64
	RiskPenaltyCap   float64
	RiskPenaltyScale float64
}

// DefaultParams returns the documented weighting scheme.
func DefaultParams() Params {
	return Params{
		Weights: Weights{
			UsageGrowth:        0.30,
			ProductionMaturity: 0.25,
			TeamAdoption:       0.20,
			CrossChannel:       0.15,
		},
		WeightTotal:      0.90,
		RiskPenaltyCap:   10,
		RiskPenaltyScale: 20,
	}
}

// Validate fails when the weights are inconsistent with the documented total.
func (p Params) Validate() error {
	for _, n := range signals.Positive {
		if w := p.Weights.For(n); w < 0 || math.IsNaN(w) {
			return fmt.Errorf("weight for %s must not be negative", n)
		}
	}
	if p.WeightTotal <= 0 {
		return fmt.Errorf("weight_total must be greater than zero")
	}
	sum := p.Weights.Sum()
	if math.Abs(sum-p.WeightTotal) > weightTolerance {
		return fmt.Errorf("weights sum to %.4f, must sum to weight_total %.4f", sum, p.WeightTotal)
	}
	if sum <= 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	if p.RiskPenaltyCap < 0 || p.RiskPenaltyCap > MaxScore {
		return fmt.Errorf("risk_penalty_cap must be within [0, %.0f]", MaxScore)
	}
	if p.RiskPenaltyScale < 0 {
		return fmt.Errorf("risk_penalty_scale must not be negative")
	}
	return nil
}

// Contribution is one signal's weighted share of the score, in points.
type Contribution struct {
	Signal     signals.Name
	Weight     float64
	Normalized float64
	Points     float64
}

// Score is a composite score with its breakdown.
type Score struct {
	Value         float64
	Contributions []Contribution
	Positive      float64
	Penalty       float64
	RawPenalty    float64
}

// Contribution returns the breakdown entry for the named signal.
func (s Score) Contribution(n signals.Name) (Contribution, bool) {
	for _, c := range s.Contributions {
		if c.Signal == n {
			return c, true
		}
	}
	return Contribution{}, false
}

// Engine turns signal sets into composite scores.
type Engine struct {
	params    Params
	weightSum float64
}

// NewEngine validates params and returns an engine.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params, weightSum: params.Weights.Sum()}, nil
}

// Params returns the constants the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Score combines the signal set into a bounded score.
func (e *Engine) Score(set signals.Set) Score {
	out := Score{Contributions: make([]Contribution, 0, len(signals.Positive))}

	weighted := 0.0
	for _, n := range signals.Positive {
		weight := e.params.Weights.For(n)
		normalized := unit(set.Get(n).Normalized)
		weighted += weight * normalized
		out.Contributions = append(out.Contributions, Contribution{
			Signal:     n,
			Weight:     weight,
			Normalized: normalized,
			Points:     MaxScore * weight * normalized / e.weightSum,
		})
	}
	// Dividing the accumulated sum keeps all-maximal signals at exactly MaxScore.
	out.Positive = MaxScore * (weighted / e.weightSum)

	risk := set.Risk.Normalized
	if math.IsNaN(risk) || risk < 0 {
		risk = 0
	}
	out.RawPenalty = risk * e.params.RiskPenaltyScale
	out.Penalty = math.Min(out.RawPenalty, e.params.RiskPenaltyCap)

	out.Value = clamp(out.Positive - out.Penalty)
	return out
}

func unit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}
