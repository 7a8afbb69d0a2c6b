package usage

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(c Channel, period int, prod, nonProd float64, seats int) Snapshot {
	p := decimal.NewFromFloat(prod)
	n := decimal.NewFromFloat(nonProd)
	return Snapshot{Channel: c, Period: period, Volume: p.Add(n), Production: p, NonProduction: n, ActiveSeats: seats}
}

func TestValidateAcceptsWellFormedAccount(t *testing.T) {
	acct := Account{
		ID: "ACC-1",
		Snapshots: []Snapshot{
			snap(ChannelDirectAPI, 0, 80, 20, 0),
			snap(ChannelSeatBased, 0, 300, 0, 10),
			snap(ChannelDirectAPI, 1, 90.1, 9.9, 0),
		},
	}
	require.NoError(t, Validate(acct))
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	negative := snap(ChannelDirectAPI, 0, 10, 0, 0)
	negative.Volume = decimal.NewFromInt(-10)
	negative.Production = decimal.NewFromInt(-10)

	split := snap(ChannelDirectAPI, 0, 10, 5, 0)
	split.Volume = decimal.NewFromInt(20)

	cases := []struct {
		name  string
		acct  Account
		field string
	}{
		{"missing id", Account{}, "id"},
		{"negative volume", Account{ID: "a", Snapshots: []Snapshot{negative}}, "snapshots[0].volume"},
		{"split mismatch", Account{ID: "a", Snapshots: []Snapshot{split}}, "snapshots[0].production"},
		{"out of order", Account{ID: "a", Snapshots: []Snapshot{snap(ChannelDirectAPI, 2, 1, 0, 0), snap(ChannelDirectAPI, 1, 1, 0, 0)}}, "snapshots[1].period"},
		{"duplicate", Account{ID: "a", Snapshots: []Snapshot{snap(ChannelDirectAPI, 1, 1, 0, 0), snap(ChannelDirectAPI, 1, 1, 0, 0)}}, "snapshots[1].period"},
		{"unknown channel", Account{ID: "a", Snapshots: []Snapshot{snap("fax", 0, 1, 0, 0)}}, "snapshots[0].channel"},
		{"seats on api", Account{ID: "a", Snapshots: []Snapshot{snap(ChannelDirectAPI, 0, 1, 0, 3)}}, "snapshots[0].active_seats"},
		{"negative seats", Account{ID: "a", Snapshots: []Snapshot{snap(ChannelSeatBased, 0, 1, 0, -1)}}, "snapshots[0].active_seats"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.acct)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.acct.ID, verr.AccountID)
		})
	}
}

func TestNewHistoryGroupsByPeriod(t *testing.T) {
	h := NewHistory([]Snapshot{
		snap(ChannelMarketplaceA, 1, 10, 10, 0),
		snap(ChannelDirectAPI, 0, 5, 5, 0),
		snap(ChannelDirectAPI, 1, 30, 0, 0),
		snap(ChannelSeatBased, 1, 0, 0, 12),
	})

	require.Len(t, h.Periods, 2)
	assert.Equal(t, 0, h.Periods[0].Period)

	current, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, 50.0, current.Volume)
	assert.Equal(t, 40.0, current.Production)
	assert.Equal(t, 12, current.ActiveSeats)
	assert.True(t, current.SeatData)
	assert.Equal(t, []Channel{ChannelDirectAPI, ChannelMarketplaceA}, current.ActiveChannels())

	base, ok := h.Baseline(3)
	require.True(t, ok)
	assert.Equal(t, 0, base.Period)
}

func TestBaselineNeedsTwoPeriods(t *testing.T) {
	_, ok := NewHistory([]Snapshot{snap(ChannelDirectAPI, 0, 1, 0, 0)}).Baseline(1)
	assert.False(t, ok)

	_, ok = NewHistory(nil).Current()
	assert.False(t, ok)
}

func TestLatestByChannel(t *testing.T) {
	acct := Account{ID: "a", Snapshots: []Snapshot{
		snap(ChannelDirectAPI, 0, 5, 0, 0),
		snap(ChannelDirectAPI, 1, 7, 0, 0),
		snap(ChannelMarketplaceB, 1, 3, 0, 0),
	}}
	latest := acct.LatestByChannel()
	assert.True(t, latest[ChannelDirectAPI].Equal(decimal.NewFromInt(7)))
	assert.True(t, latest[ChannelMarketplaceB].Equal(decimal.NewFromInt(3)))
	_, ok := latest[ChannelMarketplaceA]
	assert.False(t, ok)
}
