package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how much to log.
type Options struct {
	// Path is a log file. Empty means stderr.
	Path    string
	Verbose bool
}

// New builds a production JSON logger. The TUI passes a file path because the
// terminal belongs to the UI; servers log to stderr.
func New(o Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if o.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	out := "stderr"
	if p := strings.TrimSpace(o.Path); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, err
		}
		out = p
	}
	config.OutputPaths = []string{out}
	config.ErrorOutputPaths = []string{out}
	return config.Build()
}

// Nop is used by tests and library callers that pass no logger.
func Nop() *zap.Logger { return zap.NewNop() }

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
