package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

func TestObserveSolution(t *testing.T) {
	m := New("")

	cfg := pricing.DefaultConfig()
	m.ObserveSolution(pricing.SolveWith(cfg, pricing.StrategyBisection), time.Millisecond)

	cfg.Mode = pricing.ModeGivenPrice
	cfg.ManualPrice = 60000
	m.ObserveSolution(pricing.Calculate(cfg, ""), time.Microsecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("target_profit", "bisection")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("given_price", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InfeasibleTargets.WithLabelValues("given_price")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InfeasibleTargets.WithLabelValues("target_profit")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("test")
	m.ObserveSolution(pricing.Solve(pricing.DefaultConfig()), time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `test_pricing_calculations_total{mode="target_profit",strategy="closed_form"} 1`)
}
