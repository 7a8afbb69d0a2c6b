package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxMessageLen is the Telegram sendMessage text limit.
const maxMessageLen = 4096

// Notification is one digest of stage promotions from a scoring run.
type Notification struct {
	GeneratedAt   time.Time
	Accounts      int
	Promotions    []Promotion
	AdditionalMsg string
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier posts notifications through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewTelegramNotifier builds a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// WithRateLimit caps outgoing messages per second. Long digests are split
// into several messages, so this keeps them under the chat limit.
func (n *TelegramNotifier) WithRateLimit(perSecond float64) *TelegramNotifier {
	if perSecond > 0 {
		n.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return n
}

// Notify sends the rendered digest, split into as many messages as needed.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	chunks := splitMessage(RenderMessage(note), maxMessageLen)
	for i, chunk := range chunks {
		if err := n.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for telegram rate limit: %w", err)
		}
		if err := n.send(ctx, chunk); err != nil {
			return fmt.Errorf("message %d/%d: %w", i+1, len(chunks), err)
		}
	}

	n.logger.Info().
		Int("promotions", len(note.Promotions)).
		Int("messages", len(chunks)).
		Msg("digest sent (Telegram)")
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram returned ok=false")
		}
	}
	return nil
}

// splitMessage breaks text on line boundaries into chunks of at most limit
// bytes. A single longer line is cut at the last rune boundary that fits.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			cut := runeCut(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// runeCut returns the largest offset <= limit that does not split a rune.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

// LogNotifier writes digests to the log. It is used when Telegram is disabled.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier builds a notifier that only logs.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "alert_log").Logger()}
}

// Notify logs every promotion at info level.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	for _, p := range note.Promotions {
		n.logger.Info().
			Str("account_id", p.AccountID).
			Str("from", p.FromLabel()).
			Str("to", p.To.String()).
			Float64("score", p.Score).
			Msg("stage promotion")
	}
	return nil
}

// RenderMessage formats a digest as plain text.
func RenderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Enterprise Readiness]\n")
	builder.WriteString(fmt.Sprintf("Run: %s UTC\n", note.GeneratedAt.UTC().Format(time.RFC3339)))
	builder.WriteString(fmt.Sprintf("Accounts scored: %d\n", note.Accounts))
	builder.WriteString(fmt.Sprintf("Promotions: %d\n", len(note.Promotions)))
	for _, p := range note.Promotions {
		name := p.AccountID
		if p.Name != "" {
			name = fmt.Sprintf("%s (%s)", p.AccountID, p.Name)
		}
		builder.WriteString(fmt.Sprintf("- %s: %s -> %s, score %.1f\n", name, p.FromLabel(), p.To, p.Score))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
