package handlers_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/fuellog/internal/http/handlers"
	"github.com/geocoder89/fuellog/internal/notifications"
	"github.com/gin-gonic/gin"
)

type fixedPermission notifications.Permission

func (p fixedPermission) Permission() notifications.Permission {
	return notifications.Permission(p)
}

// readEvent reads one SSE frame and returns its event name and data.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var event, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			if event != "" {
				return event, data
			}
			continue
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimPrefix(line, "event:")
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimPrefix(line, "data:")
		}
	}
}

func TestNotificationsStream(t *testing.T) {
	hub := notifications.NewHub(4)
	h := handlers.NewNotificationsHandler(hub, fixedPermission(notifications.PermissionGranted), time.Hour)

	// a real server: gin's Stream needs a CloseNotifier, which the recorder lacks
	srv := httptest.NewServer(setupRouter(http.MethodGet, "/notifications/stream", h.Stream))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/notifications/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}

	rd := bufio.NewReader(resp.Body)

	event, data := readEvent(t, rd)
	if event != "ready" || !strings.Contains(data, `"granted"`) {
		t.Fatalf("first event = %s %s", event, data)
	}
	if hub.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", hub.Subscribers())
	}

	sent := notifications.Notification{
		ID:    "n-1",
		Kind:  notifications.KindRecordApproved,
		Title: "Registro Aprovado",
		Body:  "Seu registro de abastecimento para ABC1D23 foi aprovado.",
	}
	if err := hub.Send(ctx, sent); err != nil {
		t.Fatalf("send: %v", err)
	}

	event, data = readEvent(t, rd)
	if event != "notification" {
		t.Fatalf("event = %q", event)
	}
	var got notifications.Notification
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if got.ID != sent.ID || got.Body != sent.Body {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestNotificationsPermission(t *testing.T) {
	h := handlers.NewNotificationsHandler(notifications.NewHub(1), fixedPermission(notifications.PermissionDenied), 0)
	r := setupRouter(http.MethodGet, "/notifications/permission", h.Permission)

	w := doJSON(r, http.MethodGet, "/notifications/permission", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}

	var body gin.H
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["permission"] != "denied" {
		t.Fatalf("permission = %v", body["permission"])
	}
}
