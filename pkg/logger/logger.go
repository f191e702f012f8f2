package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger   = zap.NewNop()
	logLevel = zap.NewAtomicLevel()
)

// Options 日志输出配置
type Options struct {
	Dir     string // 日志目录，为空时只输出到控制台
	Console bool
}

// NewLogger 创建 root logger：JSON 文件(轮转) + 控制台
func NewLogger(serviceName string, opts Options) *zap.Logger {
	cores := make([]zapcore.Core, 0, 2)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			panic(err)
		}

		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.LevelKey = "level"
		encoderConfig.MessageKey = "msg"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

		// 使用lumberjack进行日志轮转
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, serviceName+".log"),
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), logLevel))
	}

	if opts.Console || len(cores) == 0 {
		consoleConfig := zap.NewDevelopmentEncoderConfig()
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stdout), logLevel))
	}

	logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger
}

// SetLogLevel 动态调整日志级别，非法级别忽略
func SetLogLevel(level string) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		logger.Warn("Ignoring invalid log level", zap.String("level", level))
		return
	}
	logLevel.SetLevel(zapLevel)
	logger.Debug("Log level set to", zap.String("level", level))
}

// WithTrace 将 trace/span id 注入 logger
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
