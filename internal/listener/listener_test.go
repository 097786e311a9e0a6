package listener

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/fuellog/internal/notifications"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func payload(t *testing.T, n notifications.Notification) string {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return string(b)
}

func TestConsume_DecodesAndSkipsGarbage(t *testing.T) {
	var got []notifications.Notification
	l := New(Config{Channel: "c"}, nil, func(_ context.Context, n notifications.Notification) {
		got = append(got, n)
	}, quiet())

	msgs := make(chan *redis.Message, 3)
	msgs <- &redis.Message{Channel: "c", Payload: payload(t, notifications.Notification{ID: "1", Title: "Registro Aprovado"})}
	msgs <- &redis.Message{Channel: "c", Payload: "{not json"}
	msgs <- &redis.Message{Channel: "c", Payload: payload(t, notifications.Notification{ID: "2", Title: "Registro Rejeitado"})}
	close(msgs)

	l.Consume(context.Background(), msgs)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, uint64(2), l.Received())
}

func TestConsume_StopsOnContextCancel(t *testing.T) {
	l := New(Config{}, nil, func(context.Context, notifications.Notification) {}, quiet())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Consume(ctx, make(chan *redis.Message))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume did not stop")
	}
}

func TestExponentialBackoff_Bounds(t *testing.T) {
	d0 := ExponentialBackoff(0)
	assert.GreaterOrEqual(t, d0, 500*time.Millisecond)
	assert.Less(t, d0, 750*time.Millisecond)

	d2 := ExponentialBackoff(2)
	assert.GreaterOrEqual(t, d2, 2*time.Second)

	big := ExponentialBackoff(100)
	assert.GreaterOrEqual(t, big, 30*time.Second)
	assert.Less(t, big, 30*time.Second+250*time.Millisecond)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := New(Config{}, nil, nil, quiet())
	h := l.HealthHandler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	l.ready.Store(true)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := LogHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

	h(context.Background(), notifications.Notification{Title: "Novo Registro Recebido", Body: "x"})

	assert.Contains(t, buf.String(), "Novo Registro Recebido")
}
