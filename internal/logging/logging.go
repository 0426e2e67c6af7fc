// Package logging provides the process logger: a kratos log.Logger written
// through logrus, optionally teed into a rotating file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dday/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _ log.Logger = (*Logger)(nil)

// Logger adapts a logrus logger to the kratos logging interface.
type Logger struct {
	log *logrus.Logger
}

// NewLogger builds the logger described by c. The returned cleanup closes the
// log file, if any.
func NewLogger(c *conf.Log) (*Logger, func(), error) {
	l := logrus.New()
	cleanup := func() {}

	if c == nil {
		c = &conf.Log{}
	}

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(c.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("could not create log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    int(c.MaxSize),
			MaxBackups: int(c.MaxBackups),
			MaxAge:     int(c.MaxAge),
			Compress:   c.Compress,
		}
		out = io.MultiWriter(os.Stdout, fileWriter)
		cleanup = func() { _ = fileWriter.Close() }
	}
	l.SetOutput(out)

	return &Logger{log: l}, cleanup, nil
}

// New wraps an existing logrus logger.
func New(l *logrus.Logger) *Logger {
	return &Logger{log: l}
}

func (l *Logger) Log(level log.Level, keyvals ...interface{}) error {
	lvl := toLogrusLevel(level)
	if !l.log.IsLevelEnabled(lvl) {
		return nil
	}

	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	var msg string
	fields := make(logrus.Fields, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == log.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields[key] = keyvals[i+1]
	}

	l.log.WithFields(fields).Log(lvl, msg)
	return nil
}

func toLogrusLevel(level log.Level) logrus.Level {
	switch level {
	case log.LevelDebug:
		return logrus.DebugLevel
	case log.LevelWarn:
		return logrus.WarnLevel
	case log.LevelError:
		return logrus.ErrorLevel
	case log.LevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
