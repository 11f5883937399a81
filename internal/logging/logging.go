// Package logging sets up the application logger. Output goes to a rotating
// file because the terminal belongs to the program.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/llehouerou/tagdeck/internal/config"
)

const defaultLogFile = "tagdeck/tagdeck.log"

// New creates a logger writing to the configured file, or to the XDG state
// directory when no file is configured. The returned closer flushes and
// closes the file.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	path := cfg.File
	if path == "" {
		p, err := xdg.StateFile(defaultLogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve log path: %w", err)
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	return newLogger(out, cfg.Level), out, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return newLogger(io.Discard, "error")
}

func newLogger(out io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
