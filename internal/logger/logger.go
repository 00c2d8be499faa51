// Package logger 构建 zap 日志器。
//
// json 格式用于 CI，console 格式用于本地排查；日志固定写 stderr，stdout 只留给结果事件。
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New 按级别与格式构建日志器。
// level: debug, info, warn, error
func New(level, format string) (*zap.Logger, zap.AtomicLevel, error) {
	atomicLevel := zap.NewAtomicLevel()
	if err := atomicLevel.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, atomicLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.TrimSpace(format) {
	case FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case FormatJSON, "":
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	default:
		return nil, atomicLevel, fmt.Errorf("unsupported log format %q", format)
	}
	cfg.Level = atomicLevel
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, atomicLevel, fmt.Errorf("build logger: %w", err)
	}
	return l, atomicLevel, nil
}

// OrNop 避免调用方到处判空。
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
