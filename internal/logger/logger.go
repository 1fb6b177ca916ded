package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "user-auth-service"

// Logger is a no-op until Init or InitWith is called.
var Logger = zap.NewNop()

// New builds the service logger: JSON at info level in production, colored
// console output at debug level everywhere else.
func New(environment string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if environment == "production" {
		cfg = zap.NewProductionConfig()
	}

	enc := &cfg.EncoderConfig
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	if environment != "production" {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return cfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", serviceName)),
	)
}

func Init(environment string) error {
	l, err := New(environment)
	if err != nil {
		return err
	}
	InitWith(l)
	return nil
}

// InitWith installs l as the package and zap global logger.
func InitWith(l *zap.Logger) {
	Logger = l
	zap.ReplaceGlobals(l)
}

func Sync() {
	_ = Logger.Sync()
}

func WithRequestID(requestID string) *zap.Logger {
	if requestID == "" {
		return Logger
	}
	return Logger.With(zap.String("request_id", requestID))
}

func Debug(msg string, fields ...zap.Field) { Logger.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Logger.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Logger.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Logger.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { Logger.Fatal(msg, fields...) }
