package storage

import (
	"github.com/shopspring/decimal"
)

// AccountRow is an account as stored in the accounts table.
type AccountRow struct {
	ID      string
	Name    string
	Segment string
}

// UsageRow is one persisted channel usage snapshot.
type UsageRow struct {
	AccountID     string
	Channel       string
	Period        int
	Volume        decimal.Decimal
	Production    decimal.Decimal
	NonProduction decimal.Decimal
	ActiveSeats   int
}
