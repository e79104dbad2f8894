package build

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// DefaultLogLevel is the level loggers start at.
const DefaultLogLevel = "info"

// LogManager owns the log destinations of the process and hands out
// per-subsystem loggers writing to all of them.
type LogManager struct {
	mu sync.Mutex

	// roots are the top-level handlers, one per destination.
	roots []btclogv2.Handler

	// subsystems are the tagged handlers created so far, kept so level
	// changes reach loggers that were already handed out.
	subsystems map[string][]btclogv2.Handler

	level btclog.Level
	file  *RotatingLogWriter
}

// NewLogManager creates a log manager writing to console and, if
// rotatorCfg names a log directory, to a rotating log file.
func NewLogManager(console io.Writer,
	rotatorCfg *LogRotatorConfig) (*LogManager, error) {

	m := &LogManager{
		roots:      []btclogv2.Handler{btclogv2.NewDefaultHandler(console)},
		subsystems: make(map[string][]btclogv2.Handler),
		level:      btclog.LevelInfo,
	}

	if rotatorCfg != nil && rotatorCfg.LogDir != "" {
		file, err := NewRotatingLogWriter(rotatorCfg)
		if err != nil {
			return nil, err
		}

		m.file = file
		m.roots = append(m.roots, btclogv2.NewDefaultHandler(file))
	}

	for _, h := range m.roots {
		h.SetLevel(m.level)
	}

	return m, nil
}

// Logger returns a logger whose records are tagged with subsystem and
// written to every destination.
func (m *LogManager) Logger(subsystem string) *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlers, ok := m.subsystems[subsystem]
	if !ok {
		for _, root := range m.roots {
			h := root.SubSystem(subsystem)
			h.SetLevel(m.level)
			handlers = append(handlers, h)
		}
		m.subsystems[subsystem] = handlers
	}

	set := make(fanout, len(handlers))
	for i, h := range handlers {
		set[i] = h
	}

	return slog.New(set)
}

// SetLevel parses level (trace, debug, info, warn, error, critical, off)
// and applies it to every logger handed out so far and all future ones.
func (m *LogManager) SetLevel(level string) error {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid log level %q", level)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.level = lvl
	for _, h := range m.roots {
		h.SetLevel(lvl)
	}
	for _, handlers := range m.subsystems {
		for _, h := range handlers {
			h.SetLevel(lvl)
		}
	}

	return nil
}

// Close flushes and closes the log file, if any.
func (m *LogManager) Close() error {
	if m.file == nil {
		return nil
	}

	return m.file.Close()
}
