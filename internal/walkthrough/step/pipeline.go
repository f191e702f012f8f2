package step

import (
	"context"
	"fmt"
	"time"

	"ocean-df/internal/walkthrough/monitor"
	"ocean-df/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "walkthrough"

// Func 定义步骤执行函数
type Func func(ctx context.Context) error

type stepNameKey struct{}

// NameFromContext 当前正在执行的步骤名，步骤外为空
func NameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(stepNameKey{}).(string)
	return name
}

type namedStep struct {
	name string
	fn   Func
}

// Pipeline 顺序执行步骤，遇到第一个错误即停止
type Pipeline struct {
	steps  []namedStep
	logger *zap.Logger
}

func NewPipeline(logger *zap.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Register 按注册顺序追加步骤
func (p *Pipeline) Register(name string, fn Func) *Pipeline {
	p.steps = append(p.steps, namedStep{name: name, fn: fn})
	return p
}

// Names 已注册步骤名
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.name)
	}
	return names
}

// Run 依次执行所有步骤；返回的错误带上失败步骤名
func (p *Pipeline) Run(ctx context.Context) error {
	total := len(p.steps)
	for i, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("step %s: %w", s.name, err)
		}
		if err := p.execute(ctx, i+1, total, s); err != nil {
			return fmt.Errorf("step %s: %w", s.name, err)
		}
	}
	return nil
}

func (p *Pipeline) execute(ctx context.Context, index, total int, s namedStep) error {
	ctx, span := logger.StartSpan(ctx, tracerName, s.name,
		attribute.String("step", s.name),
		attribute.Int("index", index),
	)
	defer span.End()
	ctx = context.WithValue(ctx, stepNameKey{}, s.name)

	tl := logger.WithTrace(ctx, p.logger).With(zap.String("step", s.name))
	tl.Info(fmt.Sprintf("===== %d/%d %s =====", index, total, s.name))
	startTime := time.Now()

	err := s.fn(ctx)
	elapsed := time.Since(startTime)
	monitor.ObserveStep(s.name, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		tl.Error("Step failed", zap.Error(err), zap.Duration("duration", elapsed))
		return err
	}
	tl.Info("Step completed", zap.Duration("duration", elapsed))
	return nil
}
