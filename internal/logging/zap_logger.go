package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger emits one JSON object per log line through zap.
// Verbose maps to debug level, which is only enabled in verbose mode.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates a JSON logger writing to stderr.
func NewZapLogger(verbose bool) *ZapLogger {
	return NewZapLoggerTo(os.Stderr, verbose)
}

// NewZapLoggerTo creates a JSON logger writing to out.
func NewZapLoggerTo(out io.Writer, verbose bool) *ZapLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(out)),
		zap.NewAtomicLevelAt(level),
	)
	return NewZapLoggerFromCore(core)
}

// NewZapLoggerFromCore wraps an existing zap core.
func NewZapLoggerFromCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{sugar: zap.New(core).Sugar().With("component", "twbmig")}
}

// Verbose logs at debug level.
func (l *ZapLogger) Verbose(format string, args ...interface{}) {
	l.sugar.Debug(message(format, args))
}

// Info logs at info level.
func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Info(message(format, args))
}

// Error logs at error level.
func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Error(message(format, args))
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func message(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
