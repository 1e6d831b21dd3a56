package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, "2xx", classifyStatus(202))
	assert.Equal(t, "4xx", classifyStatus(409))
	assert.Equal(t, "5xx", classifyStatus(502))
	assert.Equal(t, "unknown", classifyStatus(99))
}

func TestRecordSync(t *testing.T) {
	before := testutil.ToFloat64(syncRunsTotal.WithLabelValues("cli", "succeeded"))
	failedBefore := testutil.ToFloat64(syncRecordsTotal.WithLabelValues("failed"))

	finished := time.Unix(1710417600, 0)
	RecordSync(SyncRun{
		Trigger:   "cli",
		Status:    "succeeded",
		Requests:  2,
		Succeeded: 2,
		Failed:    1,
		Duration:  time.Second,
		Finished:  finished,
	})

	assert.Equal(t, before+1, testutil.ToFloat64(syncRunsTotal.WithLabelValues("cli", "succeeded")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(syncRecordsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(syncLastSuccess))
}

func TestHandler(t *testing.T) {
	RecordRequest(http.MethodGet, "/v1/health", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "catalog_sync_runs_total")
}
