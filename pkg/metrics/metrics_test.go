package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	beforeOK := testutil.ToFloat64(gatewayCallCounter.WithLabelValues(GatewayLLM, "success"))
	beforeErr := testutil.ToFloat64(gatewayCallCounter.WithLabelValues(GatewayLLM, "error"))

	GatewayCall(GatewayLLM, time.Now(), nil)
	GatewayCall(GatewayLLM, time.Now(), errors.New("boom"))
	GatewayCall(GatewayLLM, time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(gatewayCallCounter.WithLabelValues(GatewayLLM, "success")) - beforeOK; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(gatewayCallCounter.WithLabelValues(GatewayLLM, "error")) - beforeErr; got != 2 {
		t.Errorf("error delta = %v, want 2", got)
	}

	beforeIter := testutil.ToFloat64(iterationCounter)
	Iteration()
	if got := testutil.ToFloat64(iterationCounter) - beforeIter; got != 1 {
		t.Errorf("iteration delta = %v, want 1", got)
	}
}
