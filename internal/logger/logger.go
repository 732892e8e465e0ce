package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	maxInputLogLength = 80

	FieldApp = "app"
)

// Options controls the CLI logger.
type Options struct {
	App   string
	JSON  bool
	Debug bool
	// Output defaults to stderr so command output on stdout stays machine readable.
	Output string
}

// Config returns the zap configuration New builds from.
func (o Options) Config() zap.Config {
	level := zapcore.InfoLevel
	if o.Debug {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	if o.JSON {
		encoding = "json"
	}

	output := strings.TrimSpace(o.Output)
	if output == "" {
		output = "stderr"
	}

	cfg := zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableStacktrace: !o.Debug,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,

			StacktraceKey: "stacktrace",
		},
	}
	// console output is read by a person at the terminal, the app name is noise there
	if app := strings.TrimSpace(o.App); app != "" && o.JSON {
		cfg.InitialFields = map[string]any{FieldApp: app}
	}
	return cfg
}

func New(opts Options) (*zap.Logger, error) {
	logger, err := opts.Config().Build()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	return logger, nil
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
