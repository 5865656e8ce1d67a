package logger

import (
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions controls the rotation behavior of a file-backed logger.
type FileOptions struct {
	// Path is the location of the logfile.
	Path string
	// MaxSizeMB is the maximum size in megabytes before the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to retain.
	MaxBackups int
	// MaxAgeDays is the number of days to retain rotated files.
	MaxAgeDays int
}

// DefaultFileOptions returns sensible rotation defaults for a notification log.
func DefaultFileOptions(path string) FileOptions {
	return FileOptions{
		Path:       path,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// NewFileLogger returns a logger that appends to a rotated logfile instead
// of stdout. Used by the CLI when --logfile is supplied.
func NewFileLogger(opts FileOptions, level LogLevel) Logger {
	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	return NewStandardLogger(log.New(writer, "", log.LstdFlags), level, "[notifycast]")
}
