package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsMirror/internal/domain"
)

type scriptedFetcher struct {
	failures int
	calls    int
}

func (s *scriptedFetcher) FetchText(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", errors.New("connection reset")
	}
	return "ok", nil
}

func recordSleeps(r *Retrying) *[]time.Duration {
	var slept []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return &slept
}

func TestRetryingRecoversFromTransientFailures(t *testing.T) {
	t.Parallel()

	next := &scriptedFetcher{failures: 2}
	r := NewRetrying(next, 3, LinearBackoff(500*time.Millisecond), nil)
	slept := recordSleeps(r)

	text, err := r.FetchText(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, next.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *slept)
}

func TestRetryingExhaustsAttempts(t *testing.T) {
	t.Parallel()

	next := &scriptedFetcher{failures: 10}
	r := NewRetrying(next, 3, LinearBackoff(time.Millisecond), nil)
	slept := recordSleeps(r)

	_, err := r.FetchText(context.Background(), "https://example.com/feed")
	require.Error(t, err)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 3, transportErr.Attempts)
	assert.Equal(t, "https://example.com/feed", transportErr.URL)
	assert.Equal(t, 3, next.calls)
	assert.Len(t, *slept, 2, "no pause after the final attempt")
}

func TestRetryingStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	next := &scriptedFetcher{failures: 10}
	r := NewRetrying(next, 5, LinearBackoff(time.Millisecond), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.FetchText(ctx, "https://example.com")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestLinearBackoff(t *testing.T) {
	t.Parallel()

	b := LinearBackoff(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, b(1))
	assert.Equal(t, time.Second, b(2))
	assert.Equal(t, 1500*time.Millisecond, b(3))
}

func TestHTTPFetcherSetsUserAgentAndRejectsErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), "NewsMirror-test/1.0")

	text, err := f.FetchText(context.Background(), server.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "NewsMirror-test/1.0", text)

	_, err = f.FetchText(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(2), hits.Load())
}
