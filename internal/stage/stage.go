package stage

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Stage is an ordered pipeline bucket. Higher values are closer to conversion.
type Stage int

const (
	AtRisk Stage = iota
	Nurture
	Qualified
	HighVelocity
	EnterpriseReady
)

// All lists every stage from lowest to highest.
var All = []Stage{AtRisk, Nurture, Qualified, HighVelocity, EnterpriseReady}

// ErrOutOfRange is returned for scores outside [0, 100].
var ErrOutOfRange = errors.New("stage: score out of range")

// String returns the display label.
func (s Stage) String() string {
	switch s {
	case AtRisk:
		return "At Risk"
	case Nurture:
		return "Nurture"
	case Qualified:
		return "Qualified"
	case HighVelocity:
		return "High Velocity"
	case EnterpriseReady:
		return "Enterprise Ready"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Key returns the configuration key for the stage, e.g. "enterprise_ready".
func (s Stage) Key() string {
	return strings.ReplaceAll(strings.ToLower(s.String()), " ", "_")
}

// Parse accepts either a key ("high_velocity") or a label ("High Velocity").
func Parse(v string) (Stage, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	for _, s := range All {
		if s.Key() == norm {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", v)
}

// Thresholds are the lower bounds of Nurture, Qualified, High Velocity and
// Enterprise Ready. At Risk starts at 0.
type Thresholds [4]float64

// DefaultThresholds returns the documented bands.
func DefaultThresholds() Thresholds {
	return Thresholds{33, 48, 63, 78}
}

// ThresholdsFromSlice converts configuration values into Thresholds.
func ThresholdsFromSlice(values []float64) (Thresholds, error) {
	var t Thresholds
	if len(values) != len(t) {
		return t, fmt.Errorf("stage_thresholds needs %d values, got %d", len(t), len(values))
	}
	copy(t[:], values)
	return t, t.Validate()
}

// Validate checks the bands cover [0, 100] without gaps or overlaps.
func (t Thresholds) Validate() error {
	prev := 0.0
	for i, v := range t {
		if math.IsNaN(v) || v <= prev || v >= 100 {
			return fmt.Errorf("stage_thresholds[%d]=%v must be strictly increasing within (0, 100)", i, v)
		}
		prev = v
	}
	return nil
}

// Band is the half-open score interval [Min, Max) of a stage. The top band
// is closed at 100.
type Band struct {
	Stage Stage
	Min   float64
	Max   float64
}

// Classifier maps composite scores to stages.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier validates thresholds and returns a classifier.
func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{thresholds: t}, nil
}

// Classify returns the stage for score. Scores outside [0, 100] are rejected.
func (c *Classifier) Classify(score float64) (Stage, error) {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return AtRisk, fmt.Errorf("%w: %v", ErrOutOfRange, score)
	}
	result := AtRisk
	for i, lower := range c.thresholds {
		if score >= lower {
			result = Stage(i + 1)
		}
	}
	return result, nil
}

// Bands returns every stage band from lowest to highest.
func (c *Classifier) Bands() []Band {
	bands := make([]Band, 0, len(All))
	lower := 0.0
	for i, s := range All {
		upper := 100.0
		if i < len(c.thresholds) {
			upper = c.thresholds[i]
		}
		bands = append(bands, Band{Stage: s, Min: lower, Max: upper})
		lower = upper
	}
	return bands
}
