package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsMirror/internal/domain"
)

func TestObserveRun(t *testing.T) {
	t.Parallel()

	m := NewSyncMetrics()
	m.ObserveRun(domain.SyncStats{New: 2, Updated: 1, Unchanged: 4, Failed: 1}, 12, 3*time.Second, nil)
	m.ObserveRun(domain.SyncStats{}, 0, time.Second, errors.New("listing down"))

	body := scrape(t, m)
	assert.Contains(t, body, `newsmirror_sync_runs_total{result="success"} 1`)
	assert.Contains(t, body, `newsmirror_sync_runs_total{result="error"} 1`)
	assert.Contains(t, body, `newsmirror_sync_articles_total{outcome="new"} 2`)
	assert.Contains(t, body, `newsmirror_sync_articles_total{outcome="unchanged"} 4`)
	assert.Contains(t, body, "newsmirror_index_articles 12", "a failed run keeps the last size")
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	m := NewSyncMetrics()
	m.ObserveRun(domain.SyncStats{New: 1}, 1, time.Second, nil)

	body := scrape(t, m)
	assert.Contains(t, body, `newsmirror_sync_runs_total{result="success"} 1`)
	assert.Contains(t, body, "newsmirror_sync_duration_seconds_bucket")
	assert.Contains(t, body, "newsmirror_index_articles 1")
}

func scrape(t *testing.T, m *SyncMetrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
