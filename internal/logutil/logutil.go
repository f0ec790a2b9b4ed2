// Package logutil configures the process-wide charmbracelet logger.
package logutil

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/charmbracelet/log"
)

var (
	mu     sync.Mutex
	level  = log.InfoLevel
	output = io.Writer(os.Stderr)
)

// Configure sets the global level. An empty level means info; "trace" maps
// to debug.
func Configure(levelRaw string) error {
	lvl, err := ParseLevel(levelRaw)
	if err != nil {
		return err
	}
	mu.Lock()
	level = lvl
	mu.Unlock()
	log.SetLevel(lvl)
	return nil
}

// ParseLevel parses a level name.
func ParseLevel(levelRaw string) (log.Level, error) {
	switch s := strings.ToLower(strings.TrimSpace(levelRaw)); s {
	case "":
		return log.InfoLevel, nil
	case "trace", "trac":
		return log.DebugLevel, nil
	default:
		lvl, err := log.ParseLevel(s)
		if err != nil {
			return 0, fmt.Errorf("invalid log level %q", levelRaw)
		}
		return lvl, nil
	}
}

// SetOutput redirects the global logger and loggers created afterwards.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
	log.SetOutput(w)
}

// New returns a prefixed logger with timestamps at the configured level.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log.NewWithOptions(output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}
