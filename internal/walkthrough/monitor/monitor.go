package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ocean-df/internal/walkthrough/config"
	"ocean-df/pkg/evm_client"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type MetricsServer struct {
	cfg    config.MonitorConfig
	tl     *zap.Logger
	server *http.Server
}

func NewMetricsServer(cfg config.MonitorConfig, tl *zap.Logger) *MetricsServer {
	if !cfg.Enable || cfg.PrometheusAddr == "" {
		return &MetricsServer{cfg: cfg, tl: tl}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		cfg: cfg,
		tl:  tl,
		server: &http.Server{
			Addr:              cfg.PrometheusAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run 启动指标暴露服务
func (s *MetricsServer) Run() {
	if s.server == nil {
		return // disabled
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.tl.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// Stop 优雅关闭 HTTP 服务
func (s *MetricsServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil // disabled
	}

	s.server.SetKeepAlivesEnabled(false)
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// TxObserver 把上链结果记入交易指标
type TxObserver struct{}

func (TxObserver) ObserveReceipt(_ context.Context, res evm_client.TxResult) {
	TxSent.WithLabelValues(res.Label).Inc()
	TxGasUsed.WithLabelValues(res.Label).Observe(float64(res.GasUsed))
	if !res.Success {
		TxReverted.WithLabelValues(res.Label).Inc()
	}
}

// ObserveStep 记录步骤耗时
func ObserveStep(step string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StepDuration.WithLabelValues(step, status).Observe(elapsed.Seconds())
}
