package source

import (
	"context"

	"enterprise-readiness/internal/usage"
)

// AccountSource provides the accounts to score. Implementations perform all
// I/O; the scoring pipeline only sees the returned values.
type AccountSource interface {
	LoadAccounts(ctx context.Context) ([]usage.Account, error)
}

// Func adapts a plain function into an AccountSource.
type Func func(ctx context.Context) ([]usage.Account, error)

// LoadAccounts calls f.
func (f Func) LoadAccounts(ctx context.Context) ([]usage.Account, error) {
	return f(ctx)
}

// Static serves a fixed slice of accounts.
func Static(accounts []usage.Account) AccountSource {
	return Func(func(context.Context) ([]usage.Account, error) {
		return accounts, nil
	})
}
