// Package logger builds the zap loggers used across skykeep.
package logger

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Options configures New.
type Options struct {
	Level string
	File  FileConfig // Empty Path disables file output

	// Console receives colored output. Nil disables it; the terminal surface
	// owns stdout while the scene is on screen.
	Console io.Writer

	// Mute lists logger names whose entries below Error are dropped.
	// A name also mutes its children ("loader" mutes "loader.texture").
	Mute []string
}

// New builds a logger from opts. With no outputs it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	lvl := parseLevel(opts.Level)

	var cores []zapcore.Core

	if opts.Console != nil {
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(opts.Console), lvl))
	}

	if opts.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		}

		fileEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(Mute(zapcore.NewTee(cores...), opts.Mute...), zap.AddCaller()), nil
}

// Mute wraps core so that loggers named in names only emit Error and above.
func Mute(core zapcore.Core, names ...string) zapcore.Core {
	if len(names) == 0 {
		return core
	}
	return &muteCore{Core: core, names: names}
}

type muteCore struct {
	zapcore.Core
	names []string
}

func (c *muteCore) With(fields []zapcore.Field) zapcore.Core {
	return &muteCore{Core: c.Core.With(fields), names: c.names}
}

func (c *muteCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level < zapcore.ErrorLevel && c.muted(ent.LoggerName) {
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c *muteCore) muted(name string) bool {
	for _, n := range c.names {
		if name == n || strings.HasPrefix(name, n+".") {
			return true
		}
	}
	return false
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
