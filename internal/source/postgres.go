package source

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"enterprise-readiness/internal/storage"
	"enterprise-readiness/internal/usage"
)

// Postgres loads accounts from the read-only usage tables.
type Postgres struct {
	reader  storage.UsageReader
	timeout time.Duration
	logger  zerolog.Logger
}

// NewPostgres wraps a usage reader.
func NewPostgres(reader storage.UsageReader, timeout time.Duration, logger zerolog.Logger) *Postgres {
	return &Postgres{
		reader:  reader,
		timeout: timeout,
		logger:  logger.With().Str("component", "source_postgres").Logger(),
	}
}

// LoadAccounts reads accounts and usage, then joins them in memory.
func (p *Postgres) LoadAccounts(ctx context.Context) ([]usage.Account, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	accounts, err := p.reader.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := p.reader.ListUsage(ctx)
	if err != nil {
		return nil, err
	}

	out, orphans := assemble(accounts, rows)
	if orphans > 0 {
		p.logger.Warn().Int("rows", orphans).Msg("usage rows reference unknown accounts")
	}
	p.logger.Debug().Int("accounts", len(out)).Int("usage_rows", len(rows)).Msg("accounts loaded")
	return out, nil
}

// assemble attaches usage rows to their accounts, keeping row order. Rows
// for unknown accounts are counted and skipped.
func assemble(accounts []storage.AccountRow, rows []storage.UsageRow) ([]usage.Account, int) {
	out := make([]usage.Account, len(accounts))
	index := make(map[string]int, len(accounts))
	for i, a := range accounts {
		out[i] = usage.Account{ID: a.ID, Name: a.Name, Segment: a.Segment}
		index[a.ID] = i
	}

	orphans := 0
	for _, row := range rows {
		i, ok := index[row.AccountID]
		if !ok {
			orphans++
			continue
		}
		out[i].Snapshots = append(out[i].Snapshots, usage.Snapshot{
			Channel:       usage.Channel(row.Channel),
			Period:        row.Period,
			Volume:        row.Volume,
			Production:    row.Production,
			NonProduction: row.NonProduction,
			ActiveSeats:   row.ActiveSeats,
		})
	}
	return out, orphans
}

var _ AccountSource = (*Postgres)(nil)
