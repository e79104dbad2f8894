package build

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

const (
	// DefaultMaxLogFiles is the default number of rotated log files kept
	// on disk.
	DefaultMaxLogFiles = 5

	// DefaultMaxLogFileSize is the default size in MB at which the log
	// file is rotated.
	DefaultMaxLogFileSize = 10

	// DefaultLogFilename is the log file name used when no custom name
	// is configured.
	DefaultLogFilename = "wiki-mcp.log"
)

// LogRotatorConfig holds the configuration for the log file rotator.
type LogRotatorConfig struct {
	// LogDir is the directory log files are written to. An empty
	// directory disables file logging.
	LogDir string

	// MaxLogFiles is the number of rotated files to keep.
	MaxLogFiles int

	// MaxLogFileSize is the size in MB at which the file is rotated.
	MaxLogFileSize int

	// Filename overrides DefaultLogFilename.
	Filename string
}

// DefaultLogRotatorConfig returns a LogRotatorConfig with file logging
// disabled and the default rotation limits.
func DefaultLogRotatorConfig() *LogRotatorConfig {
	return &LogRotatorConfig{
		MaxLogFiles:    DefaultMaxLogFiles,
		MaxLogFileSize: DefaultMaxLogFileSize,
		Filename:       DefaultLogFilename,
	}
}

// RotatingLogWriter is an io.Writer that feeds a size-based, gzip
// compressing file rotator through a pipe.
type RotatingLogWriter struct {
	pipe    *io.PipeWriter
	rotator *rotator.Rotator
	done    chan struct{}
}

// NewRotatingLogWriter creates the log directory, opens the rotator and
// starts the goroutine draining the pipe into it.
func NewRotatingLogWriter(cfg *LogRotatorConfig) (*RotatingLogWriter,
	error) {

	filename := cfg.Filename
	if filename == "" {
		filename = DefaultLogFilename
	}

	logFile := filepath.Join(cfg.LogDir, filename)
	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w",
			err)
	}

	// The rotator threshold is in KB, the config in MB.
	r, err := rotator.New(
		logFile, int64(cfg.MaxLogFileSize*1024), false,
		cfg.MaxLogFiles,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	r.SetCompressor(gzip.NewWriter(nil), ".gz")

	pr, pw := io.Pipe()
	w := &RotatingLogWriter{
		pipe:    pw,
		rotator: r,
		done:    make(chan struct{}),
	}

	// The rotator is the log destination, so its own failure can only be
	// reported on stderr.
	go func() {
		defer close(w.done)

		if err := r.Run(pr); err != nil {
			_, _ = fmt.Fprintf(os.Stderr,
				"failed to run file rotator: %v\n", err)
		}
	}()

	return w, nil
}

// Write implements io.Writer.
func (w *RotatingLogWriter) Write(b []byte) (int, error) {
	return w.pipe.Write(b)
}

// Close flushes pending writes, stops the rotator goroutine and closes the
// log file.
func (w *RotatingLogWriter) Close() error {
	if err := w.pipe.Close(); err != nil {
		return err
	}
	<-w.done

	err := w.rotator.Close()
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}

	return nil
}
