package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums every sample of name whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	samples:
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue samples
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRecordReportBuild(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordReportBuild(KindTree, nil, 10*time.Millisecond)
	m.RecordReportBuild(KindTree, errors.New("boom"), time.Millisecond)
	m.RecordReportBuild(KindTree, nil, time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, reg, "test_report_builds_total", map[string]string{"kind": KindTree, "status": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "test_report_builds_total", map[string]string{"kind": KindTree, "status": "error"}))
}

func TestRecordAttributionSkipsZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordAttribution(2, 0, 300, 0)

	assert.Equal(t, 2.0, counterValue(t, reg, "test_attributed_sales_total", map[string]string{"kind": "direct"}))
	assert.Equal(t, 300.0, counterValue(t, reg, "test_attributed_income_total", map[string]string{"kind": "direct"}))
	assert.Equal(t, 0.0, counterValue(t, reg, "test_attributed_sales_total", map[string]string{"kind": "late"}))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())
	m.RecordRows("ad", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_report_rows_total{type="ad"} 3`)
}
