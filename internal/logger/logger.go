package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings shared by the zap and zerolog loggers.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json or console
	OutputPath string // empty means stdout
}

func (c Config) normalized() Config {
	c.Level = strings.ToLower(c.Level)
	if c.Level == "" {
		c.Level = "info"
	}
	c.Encoding = strings.ToLower(c.Encoding)
	if c.Encoding != "console" && c.Encoding != "json" {
		c.Encoding = "json"
	}
	if c.OutputPath == "" {
		c.OutputPath = "stdout"
	}
	return c
}

// New builds the application zap.Logger.
func New(cfg Config) (*zap.Logger, error) {
	cfg = cfg.normalized()

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", cfg.Level, err)
		level.SetLevel(zap.InfoLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	zapConfig := zap.Config{
		Level:             level,
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          cfg.Encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{cfg.OutputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewZerolog builds the zerolog.Logger used by the migrator and the realtime hub,
// writing to stdout or stderr with the same level and encoding as New.
func NewZerolog(cfg Config) zerolog.Logger {
	cfg = cfg.normalized()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.OutputPath == "stderr" {
		out = os.Stderr
	}
	if cfg.Encoding == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimestampFieldName = "timestamp"
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
