package pipeline

import (
	"fmt"
	"strings"

	"enterprise-readiness/internal/signals"
	"enterprise-readiness/internal/stage"
)

const (
	weakCategory        = 50.0
	lowProduction       = 0.6
	elevatedRisk        = 0.5
	significantDecline  = -0.1
	categoryScalePoints = 100.0
)

// RecommendedAction returns the next outreach step for the result's stage.
func RecommendedAction(r Result) string {
	s := r.Signals
	switch r.Stage {
	case stage.EnterpriseReady:
		return "Route to AE for enterprise contract discussion"
	case stage.HighVelocity:
		if s.TeamAdoption.Raw == 0 {
			return "Introduce the seat-based product; schedule product demo"
		}
		return "Monitor for trigger event; prepare custom pricing proposal"
	case stage.Qualified:
		if s.CrossChannel.Raw <= 1 {
			return "Share multi-channel deployment guide; review marketplace options"
		}
		if s.ProductionMaturity.Normalized < lowProduction {
			return "Offer production deployment support; share best practices"
		}
		return "Assign SDR for discovery call; share enterprise case studies"
	case stage.Nurture:
		if s.Growth.Raw < 0 {
			return "Trigger re-engagement campaign; offer office hours"
		}
		return "Add to nurture sequence; share relevant content"
	default:
		if s.Risk.Normalized >= elevatedRisk {
			return "CSM outreach: check-in call to understand blockers"
		}
		return "CSM intervention: identify churn risk factors"
	}
}

type category struct {
	name  signals.Name
	score float64
}

// categories returns each positive signal on a 0-100 scale, in reporting order.
func categories(r Result) []category {
	out := make([]category, 0, len(signals.Positive))
	for _, n := range signals.Positive {
		out = append(out, category{name: n, score: r.Signals.Get(n).Normalized * categoryScalePoints})
	}
	return out
}

// strongestWeakest picks the first maximum and the first minimum so ties
// resolve in reporting order.
func strongestWeakest(cats []category) (category, category) {
	strongest, weakest := cats[0], cats[0]
	for _, c := range cats[1:] {
		if c.score > strongest.score {
			strongest = c
		}
		if c.score < weakest.score {
			weakest = c
		}
	}
	return strongest, weakest
}

// Rationale explains the stage in terms of the strongest and weakest categories.
func Rationale(r Result) string {
	strongest, weakest := strongestWeakest(categories(r))
	growth := r.Signals.Growth.Raw

	var parts []string
	switch r.Stage {
	case stage.EnterpriseReady:
		parts = append(parts,
			fmt.Sprintf("Strong across all dimensions (strongest: %s at %.0f/100).", strongest.name.Label(), strongest.score),
			"High usage, multi-channel presence, and team adoption signal enterprise buying intent.")
	case stage.HighVelocity:
		parts = append(parts, fmt.Sprintf("Strongest signal: %s (%.0f/100).", strongest.name.Label(), strongest.score))
		if weakest.score < weakCategory {
			parts = append(parts, fmt.Sprintf("Opportunity: %s is at %.0f/100; addressing this could accelerate conversion.", weakest.name.Label(), weakest.score))
		} else {
			parts = append(parts, "Approaching enterprise threshold across multiple dimensions.")
		}
	case stage.Qualified:
		parts = append(parts,
			fmt.Sprintf("%s leads at %.0f/100.", strongest.name.Label(), strongest.score),
			fmt.Sprintf("Focus on improving %s (%.0f/100) to move this account up-funnel.", weakest.name.Label(), weakest.score))
	case stage.Nurture:
		if growth > 0 {
			parts = append(parts, fmt.Sprintf("Positive growth trajectory (%+.0f%%) but early-stage across most signals.", growth*100))
		} else {
			parts = append(parts, fmt.Sprintf("Flat or declining usage (%+.0f%%). Needs re-engagement to prevent churn.", growth*100))
		}
		parts = append(parts, fmt.Sprintf("Best signal: %s at %.0f/100.", strongest.name.Label(), strongest.score))
	default:
		if r.Score.Penalty > 0 {
			parts = append(parts, fmt.Sprintf("Risk penalty of %.1f points from declining or concentrated usage.", r.Score.Penalty))
		}
		if growth < significantDecline {
			parts = append(parts, "Usage is declining significantly.")
		}
		parts = append(parts, fmt.Sprintf("All scoring categories are below threshold (best: %s at %.0f/100).", strongest.name.Label(), strongest.score))
	}
	return strings.Join(parts, " ")
}
