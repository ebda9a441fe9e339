package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guttosm/macropulse/internal/domain/errs"
)

func TestGet_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("user agent: got %q", ua)
		}
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	body, err := New(5*time.Second).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(body) != "payload" {
		t.Fatalf("body: got %q", body)
	}
}

func TestGet_StatusPolicy(t *testing.T) {
	cases := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"redirect-ish", http.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := New(5*time.Second).Get(context.Background(), srv.URL)
			if !errors.Is(err, errs.ErrSourceUnavailable) {
				t.Fatalf("expected ErrSourceUnavailable, got %v", err)
			}
		})
	}
}

func TestGet_TransportFailure(t *testing.T) {
	// Closed server: the dial must fail.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(time.Second).Get(context.Background(), url)
	if !errors.Is(err, errs.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestGet_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(time.Second).Get(ctx, srv.URL); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
