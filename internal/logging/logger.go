package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger wraps zap.Logger so child loggers stay in this type.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // FormatConsole or FormatJSON; console when empty
	Development bool
	OutputPaths []string
}

// New creates a logger. Script runs are read by people, so the console
// encoder is the default and JSON is opt-in for log shipping.
func New(cfg Config) (*Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	format := cfg.Format
	if format == "" {
		format = FormatConsole
	}
	encoder, err := encoderConfig(format, cfg.Development)
	if err != nil {
		return nil, err
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	logger, err := zap.Config{
		Level:             level,
		Development:       cfg.Development,
		Encoding:          format,
		EncoderConfig:     encoder,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     !cfg.Development,
		DisableStacktrace: !cfg.Development,
	}.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// FromZap wraps an existing zap logger, e.g. one built by zaptest.
func FromZap(l *zap.Logger) *Logger {
	if l == nil {
		return NewNop()
	}
	return &Logger{Logger: l}
}

// Named returns a child logger with the given name segment.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

func encoderConfig(format string, development bool) (zapcore.EncoderConfig, error) {
	switch format {
	case FormatConsole:
		enc := zap.NewDevelopmentEncoderConfig()
		enc.TimeKey = ""
		if development {
			enc.TimeKey = "T"
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return enc, nil
	case FormatJSON:
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = "timestamp"
		enc.MessageKey = "message"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.EncodeDuration = zapcore.SecondsDurationEncoder
		return enc, nil
	default:
		return zapcore.EncoderConfig{}, fmt.Errorf("unknown log format %q", format)
	}
}
