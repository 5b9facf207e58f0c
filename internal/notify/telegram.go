// Package notify delivers lead notifications to a Telegram chat.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"sitecms/internal/logging"
)

// ErrNotConfigured is returned when no bot token is set.
var ErrNotConfigured = errors.New("telegram bot token not configured")

// Notifier sends a plain-text message to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID, text string) error
}

type TelegramOptions struct {
	APIURL   string
	BotToken string
	Timeout  time.Duration
	// FailureThreshold consecutive failures open the breaker for BreakerTimeout.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

type telegramClient struct {
	apiURL     string
	botToken   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func NewTelegramNotifier(opts TelegramOptions) Notifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = time.Minute
	}

	settings := gobreaker.Settings{
		Name:    "telegram",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &telegramClient{
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		botToken:   opts.BotToken,
		httpClient: &http.Client{Timeout: opts.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (t *telegramClient) Send(ctx context.Context, chatID, text string) error {
	if t.botToken == "" {
		return ErrNotConfigured
	}
	_, err := t.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, t.sendMessage(ctx, chatID, text)
	})
	return err
}

func (t *telegramClient) sendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// the url carries the bot token
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed apiResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode != http.StatusOK || !parsed.OK {
		if parsed.Description != "" {
			return fmt.Errorf("telegram returned %d: %s", resp.StatusCode, parsed.Description)
		}
		return fmt.Errorf("telegram returned %d", resp.StatusCode)
	}
	return nil
}
