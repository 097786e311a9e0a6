package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/fuellog/internal/http/handlers"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestReadyz(t *testing.T) {
	tests := []struct {
		name     string
		h        *handlers.HealthHandler
		wantCode int
	}{
		{"no redis", handlers.NewHealthHandler(nil), http.StatusOK},
		{"redis up", handlers.NewHealthHandler(fakePinger{}), http.StatusOK},
		{"redis down", handlers.NewHealthHandler(fakePinger{err: errors.New("refused")}), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(http.MethodGet, "/readyz", tt.h.Readyz)

			w := doJSON(r, http.MethodGet, "/readyz", "")
			if w.Code != tt.wantCode {
				t.Fatalf("got %d want %d body=%s", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h := handlers.NewHealthHandler(nil)
	r := setupRouter(http.MethodGet, "/healthz", h.Healthz)

	if w := doJSON(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
}
