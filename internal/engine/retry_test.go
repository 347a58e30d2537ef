package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var fastRetry = RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"status error", &StatusError{StatusCode: 503}, true},
		{"wrapped status", fmt.Errorf("page: %w", &StatusError{StatusCode: 429}), true},
		{"regular error", errors.New("something"), false},
		{"dns timeout", &net.DNSError{IsTimeout: true}, true},
		{"dial refused", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryOnStatus(t *testing.T) {
	for code, want := range map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true, 400: false, 403: false, 404: false, 501: false} {
		if got := RetryOnStatus(code, nil); got != want {
			t.Errorf("RetryOnStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestRetryDoRetryThenSuccess(t *testing.T) {
	calls := 0
	got, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &StatusError{StatusCode: 503}
		}
		return "ok", nil
	})
	if err != nil || got != "ok" {
		t.Fatalf("got %q, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryDoStopsEarly(t *testing.T) {
	t.Run("non-retryable", func(t *testing.T) {
		calls := 0
		_, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
			calls++
			return "", errors.New("permanent error")
		})
		if err == nil || calls != 1 {
			t.Errorf("err=%v calls=%d, want error after 1 call", err, calls)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		_, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
			calls++
			return "", &StatusError{StatusCode: 502}
		})
		if err == nil || calls != 3 {
			t.Errorf("err=%v calls=%d, want error after 3 calls", err, calls)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := RetryDo(ctx, fastRetry, func() (string, error) {
			return "", &StatusError{StatusCode: 503}
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestBackoff(t *testing.T) {
	rc := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 5 * time.Second, Multiplier: 2}
	tests := []struct {
		name    string
		attempt int
		err     error
		want    time.Duration
	}{
		{"first", 0, errors.New("x"), 100 * time.Millisecond},
		{"exponential", 3, errors.New("x"), 800 * time.Millisecond},
		{"capped", 10, errors.New("x"), 5 * time.Second},
		{"retry-after stretches", 0, &StatusError{StatusCode: 429, RetryAfter: 2 * time.Second}, 2 * time.Second},
		{"retry-after capped", 0, &StatusError{StatusCode: 429, RetryAfter: time.Minute}, 5 * time.Second},
		{"short retry-after ignored", 3, &StatusError{StatusCode: 429, RetryAfter: time.Millisecond}, 800 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rc.backoff(tt.attempt, tt.err); got != tt.want {
				t.Errorf("backoff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"-3", 0},
		{now.Add(30 * time.Second).Format(http.TimeFormat), 30 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRetryHTTP(t *testing.T) {
	get := func(srv *httptest.Server) func() (*http.Response, error) {
		return func() (*http.Response, error) { return srv.Client().Get(srv.URL) }
	}

	t.Run("recovers after 503", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		resp, err := RetryHTTP(context.Background(), fastRetry, nil, get(srv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("final response keeps its body", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":"forbidden"}`)
		}))
		defer srv.Close()

		resp, err := RetryHTTP(context.Background(), fastRetry, nil, get(srv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusForbidden || calls != 1 || string(body) != `{"error":"forbidden"}` {
			t.Errorf("status=%d calls=%d body=%q", resp.StatusCode, calls, body)
		}
	})

	t.Run("exhausted retries keep the last body", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, "attempt %d", calls)
		}))
		defer srv.Close()

		_, err := RetryHTTP(context.Background(), fastRetry, nil, get(srv))
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
			t.Fatalf("expected StatusError 502, got %v", err)
		}
		if string(se.Body) != "attempt 3" {
			t.Errorf("body = %q, want the third attempt's", se.Body)
		}
	})

	t.Run("policy sees the body", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusForbidden)
			if calls == 1 {
				fmt.Fprint(w, "slow down")
				return
			}
			fmt.Fprint(w, "go away")
		}))
		defer srv.Close()

		policy := func(status int, body []byte) bool {
			return status == http.StatusForbidden && strings.Contains(string(body), "slow down")
		}
		resp, err := RetryHTTP(context.Background(), fastRetry, policy, get(srv))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("retry-after is read", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "4")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := RetryHTTP(context.Background(), RetryConfig{MaxWait: time.Millisecond}, nil, get(srv))
		var se *StatusError
		if !errors.As(err, &se) || se.RetryAfter != 4*time.Second {
			t.Errorf("expected RetryAfter 4s, got %v", err)
		}
	})
}
