package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memWriter struct {
	mu      sync.Mutex
	batches [][]int
	closed  bool
	err     error
}

func (m *memWriter) BWrite(_ context.Context, batch []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, append([]int(nil), batch...))
	return m.err
}

func (m *memWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memWriter) snapshot() [][]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]int(nil), m.batches...)
}

func TestAsyncBatchWriterFlushesBySize(t *testing.T) {
	mem := &memWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), mem, 2, time.Hour, "test_size", 1)
	w.Start(context.Background())

	w.Submit(1)
	w.Submit(2)

	require.Eventually(t, func() bool { return len(mem.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{1, 2}, mem.snapshot()[0])
	w.Close()
}

func TestAsyncBatchWriterFlushesOnClose(t *testing.T) {
	mem := &memWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), mem, 10, time.Hour, "test_close", 1)
	w.Start(context.Background())

	w.Submit(1)
	w.Submit(2)
	w.Submit(3)
	w.Close()
	w.Close()

	assert.Equal(t, [][]int{{1, 2, 3}}, mem.snapshot())
	assert.True(t, mem.closed)
}

func TestAsyncBatchWriterFlushesOnTick(t *testing.T) {
	mem := &memWriter{}
	w := NewAsyncBatchWriter[int](zap.NewNop(), mem, 10, 10*time.Millisecond, "test_tick", 1)
	w.Start(context.Background())
	defer w.Close()

	w.Submit(7)
	require.Eventually(t, func() bool { return len(mem.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestAsyncBatchWriterSurvivesWriteError(t *testing.T) {
	mem := &memWriter{err: errors.New("down")}
	w := NewAsyncBatchWriter[int](zap.NewNop(), mem, 1, time.Hour, "test_err", 1)
	w.Start(context.Background())

	w.Submit(1)
	w.Submit(2)
	w.Close()

	assert.Len(t, mem.snapshot(), 2)
}

func TestMultiWriter(t *testing.T) {
	a := &memWriter{err: errors.New("a down")}
	b := &memWriter{}
	m := MultiWriter[int]{a, b}

	err := m.BWrite(context.Background(), []int{1})
	require.EqualError(t, err, "a down")
	assert.Len(t, b.snapshot(), 1)
	require.NoError(t, m.Close())
	assert.True(t, a.closed && b.closed)
}
