package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.AddDocumentsRendered("post", 3)
	pr.SetRoutes(9)
	pr.IncLiveReloadBroadcast()
	pr.SetLiveReloadClients(2)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "pagesmith_build_duration_seconds")
	assert.Contains(t, names, "pagesmith_documents_rendered_total")
	assert.Contains(t, names, "pagesmith_routes")
}

func TestPrometheusRecorderHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetRoutes(4)

	srv := httptest.NewServer(pr.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pagesmith_routes 4")
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveBuildDuration(time.Second)
		pr.IncBuildOutcome(BuildOutcomeFailed)
		pr.AddDocumentsRendered("page", 1)
	})
}
