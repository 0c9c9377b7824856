package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	base := "https://www.fca.org.uk/publications"

	cases := []struct {
		href string
		want string
	}{
		{"/news/guidance-update", "https://www.fca.org.uk/news/guidance-update"},
		{"//www.fca.org.uk/news/item", "https://www.fca.org.uk/news/item"},
		{"https://www.bis.org/press/p1.htm?utm_source=rss&utm_medium=feed", "https://www.bis.org/press/p1.htm"},
		{"item-2?fbclid=abc123", "https://www.fca.org.uk/item-2"},
	}

	for _, tc := range cases {
		got, err := NormalizeURL(tc.href, base)
		if err != nil {
			t.Fatalf("NormalizeURL(%q) error: %v", tc.href, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeURL(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}

func TestNormalizeURLRejectsBadSchemes(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeURL("javascript:void(0)", "https://example.org"); err == nil {
		t.Fatal("expected error for javascript scheme")
	}
	if _, err := NormalizeURL("", "https://example.org"); err == nil {
		t.Fatal("expected error for empty href")
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("regulatory content ", 10)))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil, nil)
	policy := RetryPolicy{Attempts: 3, Base: time.Millisecond}

	body, err := client.Get(context.Background(), server.URL, policy)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected non-empty body")
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestRetryExhaustionIsTerminal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil, nil)
	policy := RetryPolicy{Attempts: 3, Base: time.Millisecond}

	_, err := client.Get(context.Background(), server.URL, policy)
	if err == nil {
		t.Fatal("expected terminal error")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError in chain, got %v", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", statusErr.Code)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", got)
	}
}

func TestShortBodyIsRetryable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil, nil)
	if _, err := client.Get(context.Background(), server.URL, RetryPolicy{Attempts: 2, Base: time.Millisecond}); err == nil {
		t.Fatal("expected error for short body")
	}
}

func TestPolicyTimeoutCapsSlowRequests(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(strings.Repeat("x", 128)))
	}))
	defer server.Close()

	client := NewClient(5*time.Second, nil, nil)

	policy := RetryPolicy{Attempts: 1, Base: time.Millisecond, Timeout: 20 * time.Millisecond}
	if _, err := client.Get(context.Background(), server.URL, policy); err == nil {
		t.Fatal("expected timeout for slow response under a tight policy")
	}

	policy.Timeout = time.Second
	if _, err := client.Get(context.Background(), server.URL, policy); err != nil {
		t.Fatalf("generous policy timeout must succeed: %v", err)
	}
}

func TestLimiterSpacesSameDomain(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(50*time.Millisecond, nil)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "https://example.org/page"); err != nil {
			t.Fatalf("Wait error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("expected at least ~100ms of spacing, got %v", elapsed)
	}
}

func TestLimiterOverride(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(time.Millisecond, map[string]time.Duration{"slow.example.org": 80 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 2; i++ {
		if err := limiter.Wait(ctx, "https://slow.example.org/x"); err != nil {
			t.Fatalf("Wait error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
		t.Fatalf("override not applied, elapsed %v", elapsed)
	}
}
