// Package logging routes slog output to a rotating log file
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kotleni/cats/internal/config"
	"github.com/kotleni/cats/internal/osutil"
)

// Setup installs the default slog logger. Records are written in logfmt to
// a size-rotated file at path. When verbose is set, records are also echoed
// to stderr. The returned closer flushes and closes the log file.
func Setup(cfg config.LogConfig, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	}

	var w io.Writer = file
	if cfg.Verbose {
		w = io.MultiWriter(file, config.Stderr)
	}

	slog.SetDefault(slog.New(NewHandler(w, cfg.Level)))

	return file, nil
}

// NewHandler returns a logfmt slog handler at the named level.
func NewHandler(w io.Writer, level string) slog.Handler {
	lvl, err := charmlog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = charmlog.InfoLevel
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Formatter:       charmlog.LogfmtFormatter,
		Level:           lvl,
	})
}
