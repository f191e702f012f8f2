package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"ocean-df/internal/walkthrough/config"
	"ocean-df/pkg/evm_client"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTxObserver(t *testing.T) {
	var obs evm_client.ReceiptObserver = TxObserver{}

	obs.ObserveReceipt(context.Background(), evm_client.TxResult{Label: "test.ok", GasUsed: 21000, Success: true})
	obs.ObserveReceipt(context.Background(), evm_client.TxResult{Label: "test.revert", GasUsed: 50000, Success: false})

	assert.Equal(t, 1.0, testutil.ToFloat64(TxSent.WithLabelValues("test.ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(TxSent.WithLabelValues("test.revert")))
	assert.Equal(t, 0.0, testutil.ToFloat64(TxReverted.WithLabelValues("test.ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(TxReverted.WithLabelValues("test.revert")))
}

func TestObserveStep(t *testing.T) {
	ObserveStep("unit_step", 10*time.Millisecond, nil)
	ObserveStep("unit_step", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(StepDuration, "walkthrough_step_duration_seconds"))
}

func TestMetricsServerDisabled(t *testing.T) {
	s := NewMetricsServer(config.MonitorConfig{Enable: false, PrometheusAddr: ":0"}, zap.NewNop())
	s.Run()
	assert.NoError(t, s.Stop(context.Background()))
}
