package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	listAccountsSQL = `SELECT
        account_id,
        name,
        COALESCE(segment, '')
    FROM accounts
    ORDER BY account_id;`

	listUsageSQL = `SELECT
        account_id,
        channel,
        period_idx,
        volume::text,
        production_volume::text,
        non_production_volume::text,
        COALESCE(active_seats, 0)
    FROM channel_usage
    ORDER BY account_id, period_idx, channel;`

	countAccountsSQL = `SELECT COUNT(*) FROM accounts;`
)

// UsageReader defines read access to account usage history.
type UsageReader interface {
	ListAccounts(ctx context.Context) ([]AccountRow, error)
	ListUsage(ctx context.Context) ([]UsageRow, error)
	CountAccounts(ctx context.Context) (int64, error)
}

// Store reads accounts and channel usage from PostgreSQL. It never writes.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// ListAccounts returns every account ordered by id.
func (s *Store) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAccountsSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list accounts: %w", queryErr)
	}
	defer rows.Close()

	accounts := make([]AccountRow, 0)
	for rows.Next() {
		var rec AccountRow
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Segment); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return accounts, nil
}

// ListUsage returns every usage snapshot ordered by account and period.
func (s *Store) ListUsage(ctx context.Context) ([]UsageRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listUsageSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list usage: %w", queryErr)
	}
	defer rows.Close()

	usage := make([]UsageRow, 0)
	for rows.Next() {
		row, scanErr := scanUsageRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		usage = append(usage, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return usage, nil
}

// CountAccounts counts stored accounts.
func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countAccountsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count accounts: %w", scanErr)
	}
	return count, nil
}

func scanUsageRow(rows pgx.Rows) (UsageRow, error) {
	var (
		row           UsageRow
		volumeStr     string
		productionStr string
		nonProdStr    string
	)

	if err := rows.Scan(
		&row.AccountID,
		&row.Channel,
		&row.Period,
		&volumeStr,
		&productionStr,
		&nonProdStr,
		&row.ActiveSeats,
	); err != nil {
		return UsageRow{}, fmt.Errorf("scan usage: %w", err)
	}

	var err error
	if row.Volume, err = decimal.NewFromString(volumeStr); err != nil {
		return UsageRow{}, fmt.Errorf("parse volume: %w", err)
	}
	if row.Production, err = decimal.NewFromString(productionStr); err != nil {
		return UsageRow{}, fmt.Errorf("parse production volume: %w", err)
	}
	if row.NonProduction, err = decimal.NewFromString(nonProdStr); err != nil {
		return UsageRow{}, fmt.Errorf("parse non-production volume: %w", err)
	}
	return row, nil
}

var _ UsageReader = (*Store)(nil)
