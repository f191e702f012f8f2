package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// TxSent 链上交易
	TxSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkthrough_tx_sent_total",
			Help: "Total number of mined transactions, by contract method.",
		},
		[]string{"label"},
	)
	TxReverted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkthrough_tx_reverted_total",
			Help: "Total number of transactions mined with status 0.",
		},
		[]string{"label"},
	)
	TxGasUsed = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walkthrough_tx_gas_used",
			Help:    "Gas used per mined transaction.",
			Buckets: []float64{21000, 50000, 100000, 200000, 500000, 1000000, 3000000, 6000000},
		},
		[]string{"label"},
	)

	// StepDuration 步骤耗时
	StepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walkthrough_step_duration_seconds",
			Help:    "Time taken by each walkthrough step.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"step", "status"},
	)

	// AsyncWriterMessagesDropped AsyncWriter 指标
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{1, 5, 10, 50, 100, 500},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_flush_count_total",
			Help: "Total number of batch flushes triggered.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterItemsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_items_written_total",
			Help: "Total number of items successfully written by the async writer.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterWriteErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_write_errors_total",
			Help: "Total number of failed batch writes.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		// 交易指标
		TxSent,
		TxReverted,
		TxGasUsed,
		StepDuration,

		// async 写入指标
		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushCount,
		AsyncWriterFlushDuration,
		AsyncWriterItemsWritten,
		AsyncWriterWriteErrors,
	)
}
