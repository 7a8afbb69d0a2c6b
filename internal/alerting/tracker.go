package alerting

import (
	"sync"

	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/stage"
)

// Promotion is an account that moved up into a watched stage.
type Promotion struct {
	AccountID string
	Name      string
	Score     float64
	From      stage.Stage
	To        stage.Stage
	New       bool
}

// FromLabel returns the previous stage, or "new" for accounts first seen in this run.
func (p Promotion) FromLabel() string {
	if p.New {
		return "new"
	}
	return p.From.String()
}

// Tracker remembers the last stage of every account between runs. State
// lives in memory only; the first observation sets the baseline.
type Tracker struct {
	mu     sync.Mutex
	watch  map[stage.Stage]struct{}
	last   map[string]stage.Stage
	primed bool
}

// NewTracker watches promotions into the given stages.
func NewTracker(watch []stage.Stage) *Tracker {
	set := make(map[stage.Stage]struct{}, len(watch))
	for _, s := range watch {
		set[s] = struct{}{}
	}
	return &Tracker{watch: set, last: make(map[string]stage.Stage)}
}

// Observe records the results of a run and returns promotions since the
// previous one, in result order. Accounts absent from results, for example
// because they failed validation, are remembered at their previous stage.
func (t *Tracker) Observe(results []pipeline.Result) []Promotion {
	t.mu.Lock()
	defer t.mu.Unlock()

	var promotions []Promotion
	next := make(map[string]stage.Stage, len(t.last)+len(results))
	// Accounts missing from this run keep their last known stage.
	for id, s := range t.last {
		next[id] = s
	}
	for _, r := range results {
		next[r.AccountID] = r.Stage
		if !t.primed {
			continue
		}
		if _, watched := t.watch[r.Stage]; !watched {
			continue
		}
		prev, seen := t.last[r.AccountID]
		if seen && prev >= r.Stage {
			continue
		}
		promotions = append(promotions, Promotion{
			AccountID: r.AccountID,
			Name:      r.Name,
			Score:     r.Score.Value,
			From:      prev,
			To:        r.Stage,
			New:       !seen,
		})
	}

	t.last = next
	t.primed = true
	return promotions
}
