package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func dialHub(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "failed to dial hub")
	return conn
}

func TestHub_BroadcastToObserver(t *testing.T) {
	hub := NewHub(newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	defer func() { _ = conn.Close() }()

	// Даем хабу зарегистрировать клиента
	time.Sleep(50 * time.Millisecond)

	err := hub.Broadcast("login", map[string]string{"subject_email": "user@example.com"})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, "login", event.Event)

	data, ok := event.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", data["subject_email"])
}

func TestHub_BroadcastToSeveralObservers(t *testing.T) {
	hub := NewHub(newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	first := dialHub(t, server)
	defer func() { _ = first.Close() }()
	second := dialHub(t, server)
	defer func() { _ = second.Close() }()

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, hub.Broadcast("registered", map[string]string{"subject_email": "new@example.com"}))

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, message, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(message), `"registered"`)
	}
}

func TestHub_BroadcastWithoutObservers(t *testing.T) {
	hub := NewHub(newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Рассылка без подключённых клиентов не ошибка
	err := hub.Broadcast("logout", map[string]string{"subject_email": "user@example.com"})
	assert.NoError(t, err)
}

func TestHub_BroadcastQueueOverflow(t *testing.T) {
	hub := NewHub(newNoopLogger())
	// Run не запущен, очередь рассылки никем не вычитывается

	var err error
	for range cap(hub.broadcast) + 1 {
		err = hub.Broadcast("login", "payload")
	}
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broadcast queue is full")
}

func TestHub_DisconnectedObserverIsRemoved(t *testing.T) {
	hub := NewHub(newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dialHub(t, server)
	time.Sleep(50 * time.Millisecond)
	_ = conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Рассылка после отключения не блокируется и не падает
	assert.NoError(t, hub.Broadcast("logout", map[string]string{"subject_email": "user@example.com"}))
}
