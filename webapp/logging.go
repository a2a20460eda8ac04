package webapp

import (
	"github.com/corewire/respond"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// Uses JSON encoding; RESPOND_LOG_LEVEL controls the level.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type zapLogger struct{ *zap.Logger }

func (l zapLogger) LogHandlerFailure(err error) {
	l.Logger.Error("unhandled handler failure", zap.Error(err))
}

func (l zapLogger) LogHookFailure(err error) {
	l.Logger.Error("lifecycle hook failure", zap.Error(err))
}

func (l zapLogger) LogAbort(reason error) {
	l.Logger.Error("mid-response abort", zap.Error(reason))
}

func (l zapLogger) LogFinalStatus(status int) {
	l.Logger.Debug("response completed", zap.Int("status", status))
}

// NewRespondLogger adapts a zap logger to the pipeline's Logger interface.
func NewRespondLogger(l *zap.Logger) respond.Logger {
	return zapLogger{l.Named("respond")}
}
