package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enterprise-readiness/internal/pipeline"
	"enterprise-readiness/internal/scoring"
	"enterprise-readiness/internal/stage"
)

func sampleNotification() Notification {
	return Notification{
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Accounts:    50,
		Promotions: []Promotion{
			{AccountID: "ACC-1001", Name: "Cobalt Labs", Score: 81.2, From: stage.HighVelocity, To: stage.EnterpriseReady},
			{AccountID: "ACC-1044", Score: 79, To: stage.EnterpriseReady, New: true},
		},
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL+"/", time.Second, testLogger())
	require.NoError(t, notifier.Notify(context.Background(), sampleNotification()))

	assert.Equal(t, "chat", received["chat_id"])
	assert.Contains(t, received["text"], "ACC-1001 (Cobalt Labs): High Velocity -> Enterprise Ready, score 81.2")
	assert.Contains(t, received["text"], "ACC-1044: new -> Enterprise Ready")
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	assert.Error(t, notifier.Notify(context.Background(), sampleNotification()), "ok=false is an error")
}

func TestTelegramNotifierStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	err := notifier.Notify(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRenderMessage(t *testing.T) {
	msg := RenderMessage(sampleNotification())
	assert.True(t, strings.HasPrefix(msg, "[Enterprise Readiness]\n"))
	assert.Contains(t, msg, "Run: 2026-03-01T12:00:00Z UTC")
	assert.Contains(t, msg, "Accounts scored: 50")
	assert.Contains(t, msg, "Promotions: 2")
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(testLogger()).Notify(context.Background(), sampleNotification()))
}

func result(id string, s stage.Stage, score float64) pipeline.Result {
	return pipeline.Result{AccountID: id, Stage: s, Score: scoring.Score{Value: score}}
}

func TestTrackerObserve(t *testing.T) {
	tracker := NewTracker([]stage.Stage{stage.EnterpriseReady, stage.HighVelocity})

	first := tracker.Observe([]pipeline.Result{
		result("A", stage.Qualified, 60),
		result("B", stage.EnterpriseReady, 90),
		result("C", stage.HighVelocity, 70),
	})
	assert.Empty(t, first, "first run only sets the baseline")

	second := tracker.Observe([]pipeline.Result{
		result("A", stage.HighVelocity, 65),
		result("B", stage.EnterpriseReady, 91),
		result("C", stage.Nurture, 40),
		result("D", stage.EnterpriseReady, 85),
		result("E", stage.Qualified, 50),
	})
	require.Len(t, second, 2)
	assert.Equal(t, Promotion{AccountID: "A", Score: 65, From: stage.Qualified, To: stage.HighVelocity}, second[0])
	assert.Equal(t, "D", second[1].AccountID)
	assert.True(t, second[1].New)
	assert.Equal(t, "new", second[1].FromLabel())

	third := tracker.Observe([]pipeline.Result{
		result("C", stage.EnterpriseReady, 80),
	})
	require.Len(t, third, 1)
	assert.Equal(t, stage.Nurture, third[0].From)
}

func TestTrackerRemembersAccountsMissingFromRun(t *testing.T) {
	tracker := NewTracker([]stage.Stage{stage.EnterpriseReady})

	tracker.Observe([]pipeline.Result{result("A", stage.EnterpriseReady, 85)})
	assert.Empty(t, tracker.Observe(nil), "A failed validation this run")

	back := tracker.Observe([]pipeline.Result{result("A", stage.EnterpriseReady, 86)})
	assert.Empty(t, back, "A was already enterprise ready")
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	chunks := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, chunks)

	chunks = splitMessage("xx\n"+strings.Repeat("z", 25), 10)
	assert.Equal(t, []string{"xx\n", "zzzzzzzzzz", "zzzzzzzzzz", "zzzzz"}, chunks)

	// "é" is two bytes; a nine byte cut would split the fifth one.
	chunks = splitMessage(strings.Repeat("é", 8), 9)
	assert.Equal(t, []string{"éééé", "éééé"}, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
	}
}

func TestTelegramNotifierSplitsLongDigests(t *testing.T) {
	var mu sync.Mutex
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		texts = append(texts, payload["text"])
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	note := sampleNotification()
	for i := 0; i < 200; i++ {
		note.Promotions = append(note.Promotions, Promotion{
			AccountID: fmt.Sprintf("ACC-%04d", i),
			Name:      strings.Repeat("n", 20),
			From:      stage.Qualified,
			To:        stage.EnterpriseReady,
		})
	}

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger()).WithRateLimit(1000)
	require.NoError(t, notifier.Notify(context.Background(), note))

	mu.Lock()
	defer mu.Unlock()
	require.Greater(t, len(texts), 1)
	for _, text := range texts {
		assert.LessOrEqual(t, len(text), maxMessageLen)
	}
	assert.Equal(t, RenderMessage(note), strings.Join(texts, ""))
}
