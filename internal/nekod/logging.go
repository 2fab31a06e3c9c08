package nekod

import (
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
)

// NewLogger creates the daemon-level structured logger.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	writer := os.Stdout
	if strings.ToLower(cfg.Output) == "stderr" {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: cfg.AddSource,
	}
	if cfg.UTC {
		opts.ReplaceAttr = func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				t := attr.Value.Time().UTC()
				return slog.Attr{Key: attr.Key, Value: slog.TimeValue(t)}
			}
			return attr
		}
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler)
	version, commit := buildVersion()
	return logger.With(
		"app", "nekod",
		"pid", os.Getpid(),
		"version", version,
		"commit", commit,
	)
}

// NewModuleLogger creates the zap logger handed to modules.
func NewModuleLogger(cfg LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if strings.ToLower(cfg.Format) != "json" {
		zcfg = zap.NewDevelopmentConfig()
	}

	switch strings.ToLower(cfg.Level) {
	case "debug":
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zcfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if strings.ToLower(cfg.Output) == "stdout" {
		zcfg.OutputPaths = []string{"stdout"}
	} else {
		zcfg.OutputPaths = []string{"stderr"}
	}

	return zcfg.Build()
}

func buildVersion() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev", "unknown"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	commit := "unknown"
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			commit = setting.Value
			break
		}
	}
	return version, commit
}
