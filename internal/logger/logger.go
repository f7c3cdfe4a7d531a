// internal/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	// LogFile receives JSON-encoded entries. Empty disables the file sink.
	LogFile string
	// Development lowers the level to debug and uses the pretty console
	// encoder.
	Development bool
	// FlushInterval for the buffered file sink.
	FlushInterval time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		LogFile:       "logs/launchpad.log",
		FlushInterval: time.Second,
	}
}

// Logger wraps zap.Logger with operation-scoped helpers.
type Logger struct {
	*zap.Logger
	sink *FileSink
}

// New builds a logger that tees human-readable output to the console and
// JSON entries to the configured file.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	var consoleEncoder zapcore.Encoder
	if cfg.Development {
		consoleEncoder = PrettyEncoder()
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(zapcore.Lock(os.Stdout)), level),
	}

	var sink *FileSink
	if cfg.LogFile != "" {
		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.TimeKey = "timestamp"
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		fileEncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

		var err error
		sink, err = NewFileSink(cfg.LogFile, cfg.FlushInterval)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), sink, level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		sink: sink,
	}, nil
}

// WithOperation creates a logger scoped to one operation, carrying a fresh
// correlation id through every entry it emits.
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
		zap.Time("start_time", time.Now().UTC()),
	)
}

// WithComponent adds the emitting component to every entry.
func (l *Logger) WithComponent(component string) *zap.Logger {
	return l.With(zap.String("component", component))
}

// Close flushes and closes the file sink, if any.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}
