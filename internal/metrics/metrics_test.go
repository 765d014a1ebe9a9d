package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	// promauto panics on duplicate registration; a second Init must not
	// re-register anything.
	assert.NotPanics(t, Init)
}

func TestObserveHelpers(t *testing.T) {
	Init()
	assert.NotPanics(t, func() {
		ObserveAttempt("list_categories", "success", 120*time.Millisecond)
		ObserveFallback("create_product")
		ObserveDegradedRead()
		ObserveSubmission("partial_failure")
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	Init()
	ObserveAttempt("list_categories", "success", time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_request_attempts_total")
}
