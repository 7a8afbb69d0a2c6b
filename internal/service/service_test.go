package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enterprise-readiness/internal/alerting"
	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/scoring"
	"enterprise-readiness/internal/signals"
	"enterprise-readiness/internal/source"
	"enterprise-readiness/internal/stage"
	"enterprise-readiness/internal/usage"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
	return nil
}

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Options{
		Signals:    signals.DefaultParams(),
		Scoring:    scoring.DefaultParams(),
		Thresholds: stage.DefaultThresholds(),
		Workers:    2,
	}, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func evenAccount(id string, current float64) usage.Account {
	acct := usage.Account{ID: id, Name: "Account " + id}
	for _, p := range []struct {
		period int
		volume float64
		seats  int
	}{{0, 100, 50}, {3, current, 100}} {
		v := decimal.NewFromFloat(p.volume)
		for _, c := range []usage.Channel{usage.ChannelDirectAPI, usage.ChannelMarketplaceA, usage.ChannelMarketplaceB} {
			acct.Snapshots = append(acct.Snapshots, usage.Snapshot{Channel: c, Period: p.period, Volume: v, Production: v, NonProduction: decimal.Zero})
		}
		acct.Snapshots = append(acct.Snapshots, usage.Snapshot{Channel: usage.ChannelSeatBased, Period: p.period, Volume: v, Production: v, NonProduction: decimal.Zero, ActiveSeats: p.seats})
	}
	return acct
}

func TestProcessRunNotifiesPromotions(t *testing.T) {
	flat := []usage.Account{{ID: "ACC-1", Name: "Quiet"}}
	grown := []usage.Account{evenAccount("ACC-1", 200)}

	var mu sync.Mutex
	current := flat
	src := source.Func(func(context.Context) ([]usage.Account, error) {
		mu.Lock()
		defer mu.Unlock()
		return current, nil
	})

	notifier := &recordingNotifier{}
	tracker := alerting.NewTracker([]stage.Stage{stage.EnterpriseReady})
	svc := New(nil, src, newPipeline(t), tracker, notifier, zerolog.Nop())

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.ProcessRun(context.Background(), at))
	assert.Empty(t, notifier.notes)

	mu.Lock()
	current = grown
	mu.Unlock()
	require.NoError(t, svc.ProcessRun(context.Background(), at.Add(time.Hour)))

	require.Len(t, notifier.notes, 1)
	note := notifier.notes[0]
	assert.Equal(t, 1, note.Accounts)
	require.Len(t, note.Promotions, 1)
	assert.Equal(t, "ACC-1", note.Promotions[0].AccountID)
	assert.Equal(t, stage.AtRisk, note.Promotions[0].From)
	assert.Equal(t, stage.EnterpriseReady, note.Promotions[0].To)

	require.NoError(t, svc.ProcessRun(context.Background(), at.Add(2*time.Hour)))
	assert.Len(t, notifier.notes, 1, "unchanged stages are not re-sent")
}

func TestProcessRunSourceError(t *testing.T) {
	src := source.Func(func(context.Context) ([]usage.Account, error) {
		return nil, errors.New("connection refused")
	})
	svc := New(nil, src, newPipeline(t), nil, nil, zerolog.Nop())

	err := svc.ProcessRun(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load accounts")
}

func TestRunWithoutScheduler(t *testing.T) {
	svc := New(nil, source.Static(nil), newPipeline(t), nil, nil, zerolog.Nop())
	assert.Error(t, svc.Run(context.Background()))
}
