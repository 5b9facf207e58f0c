package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var got sendMessageRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(TelegramOptions{APIURL: srv.URL + "/", BotToken: "tok"})
	err := n.Send(context.Background(), "42", "hello")

	require.NoError(t, err)
	assert.Equal(t, "/bottok/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "hello", got.Text)
}

func TestTelegramSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(TelegramOptions{APIURL: srv.URL, BotToken: "tok"})
	err := n.Send(context.Background(), "42", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramSendNotConfigured(t *testing.T) {
	n := NewTelegramNotifier(TelegramOptions{APIURL: "http://127.0.0.1:1"})
	assert.ErrorIs(t, n.Send(context.Background(), "42", "hello"), ErrNotConfigured)
}

func TestTelegramBreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(TelegramOptions{
		APIURL:           srv.URL,
		BotToken:         "tok",
		FailureThreshold: 2,
		BreakerTimeout:   time.Hour,
	})

	for i := 0; i < 2; i++ {
		require.Error(t, n.Send(context.Background(), "42", "hello"))
	}
	err := n.Send(context.Background(), "42", "hello")

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTelegramErrorHidesToken(t *testing.T) {
	n := NewTelegramNotifier(TelegramOptions{APIURL: "http://127.0.0.1:1", BotToken: "secret-token", Timeout: time.Second})
	err := n.Send(context.Background(), "42", "hello")

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestFormatLead(t *testing.T) {
	msg := FormatLead("acme.example", map[string]any{
		"phone": "123",
		"name":  "Ivan",
		"age":   float64(30),
		"extra": nil,
	})

	assert.Equal(t, "New lead from acme.example\n\nage: 30\nextra: -\nname: Ivan\nphone: 123", msg)
}

func TestFormatLeadNested(t *testing.T) {
	msg := FormatLead("", map[string]any{"tags": []any{"a", "b"}})
	assert.Equal(t, "New lead\n\ntags: [\"a\",\"b\"]", msg)
}
