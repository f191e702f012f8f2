package writer

import (
	"context"
)

type BatchWriter[T any] interface {
	BWrite(ctx context.Context, batch []T) error
	Close() error
}

// MultiWriter 依次写入多个下游，单个失败不影响其它
type MultiWriter[T any] []BatchWriter[T]

func (m MultiWriter[T]) BWrite(ctx context.Context, batch []T) error {
	var firstErr error
	for _, w := range m {
		if err := w.BWrite(ctx, batch); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiWriter[T]) Close() error {
	var firstErr error
	for _, w := range m {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
