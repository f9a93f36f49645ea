package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		RequestsTotal,
		RequestDuration,
		RefreshTotal,
		RedirectsTotal,
		SessionExpiredTotal,
	}
	for _, c := range collectors {
		require.NotNil(t, c)
		// promauto already registered them on the default registry.
		err := prometheus.Register(c)
		var are prometheus.AlreadyRegisteredError
		assert.ErrorAs(t, err, &are)
	}
}

func TestRefreshTotalLabels(t *testing.T) {
	before := testutil.ToFloat64(RefreshTotal.WithLabelValues("success"))
	RefreshTotal.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshTotal.WithLabelValues("success")))
}
