package usage

import (
	"fmt"
)

// ValidationError identifies the account and field that violate the usage contract.
type ValidationError struct {
	AccountID string
	Field     string
	Message   string
}

func (e *ValidationError) Error() string {
	if e.AccountID == "" {
		return fmt.Sprintf("invalid account: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid account %s: %s: %s", e.AccountID, e.Field, e.Message)
}

type snapshotKey struct {
	channel Channel
	period  int
}

// Validate checks the account against the data contract. Malformed input is
// rejected rather than coerced.
func Validate(a Account) error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Message: "required"}
	}

	seen := make(map[snapshotKey]struct{}, len(a.Snapshots))
	for i, snap := range a.Snapshots {
		field := func(name string) string {
			return fmt.Sprintf("snapshots[%d].%s", i, name)
		}
		fail := func(name, msg string) error {
			return &ValidationError{AccountID: a.ID, Field: field(name), Message: msg}
		}

		if !snap.Channel.Valid() {
			return fail("channel", fmt.Sprintf("unknown channel %q", snap.Channel))
		}
		if snap.Period < 0 {
			return fail("period", "must not be negative")
		}
		if i > 0 && snap.Period < a.Snapshots[i-1].Period {
			return fail("period", fmt.Sprintf("out of order: %d after %d", snap.Period, a.Snapshots[i-1].Period))
		}
		key := snapshotKey{channel: snap.Channel, period: snap.Period}
		if _, dup := seen[key]; dup {
			return fail("period", fmt.Sprintf("duplicate snapshot for %s in period %d", snap.Channel, snap.Period))
		}
		seen[key] = struct{}{}

		if snap.Volume.IsNegative() {
			return fail("volume", "must not be negative")
		}
		if snap.Production.IsNegative() {
			return fail("production", "must not be negative")
		}
		if snap.NonProduction.IsNegative() {
			return fail("non_production", "must not be negative")
		}
		if sum := snap.Production.Add(snap.NonProduction); !sum.Equal(snap.Volume) {
			return fail("production", fmt.Sprintf("production+non_production=%s does not match volume=%s", sum, snap.Volume))
		}
		if snap.ActiveSeats < 0 {
			return fail("active_seats", "must not be negative")
		}
		if snap.ActiveSeats > 0 && snap.Channel != ChannelSeatBased {
			return fail("active_seats", fmt.Sprintf("only reported on %s", ChannelSeatBased))
		}
	}
	return nil
}
