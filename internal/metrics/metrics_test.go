package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordUserOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUserOperation("create", "ok")
	c.RecordUserOperation("create", "ok")
	c.RecordUserOperation("create", "conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.userOps.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.userOps.WithLabelValues("create", "conflict")))
}

func TestCollector_RecordWelcomeEmail(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordWelcomeEmail("sent")
	c.RecordWelcomeEmail("failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.welcomeEmails.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.welcomeEmails.WithLabelValues("failed")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordUserOperation("list", "ok")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `user_registry_operations_total{operation="list",outcome="ok"} 1`)
}

func TestNop_SatisfiesInterface(t *testing.T) {
	var c MetricsCollector = Nop{}
	c.RecordUserOperation("list", "ok")
	c.RecordWelcomeEmail("sent")
}
