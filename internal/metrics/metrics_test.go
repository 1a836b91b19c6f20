package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilSinkIsSafe(t *testing.T) {
	var s *Sink
	assert.NotPanics(t, func() {
		s.JobEnqueued("build")
		s.JobCompleted("build", time.Millisecond, 3)
		s.QueueDepth(QueueGenerate, 1)
		s.Chunks(1, 1)
		s.Evicted(2)
		s.Throttled()
		s.Uploaded()
	})
}

func TestSinkCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New(reg)

	s.JobEnqueued("generate_and_build")
	s.JobEnqueued("generate_and_build")
	s.JobCompleted("generate_and_build", 2*time.Millisecond, 7)
	s.Chunks(49, 12)
	s.Evicted(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.jobsEnqueued.WithLabelValues("generate_and_build")))
	assert.Equal(t, 7.0, testutil.ToFloat64(s.quads))
	assert.Equal(t, 49.0, testutil.ToFloat64(s.chunksLoaded))
	assert.Equal(t, 12.0, testutil.ToFloat64(s.chunksVisible))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.chunksEvicted))
}

func TestHandlerServesRegistry(t *testing.T) {
	s := New(prometheus.NewRegistry())
	s.Uploaded()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "voxelstream_uploads_total 1"))
}
