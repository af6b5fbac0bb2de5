package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/arbitrage/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger mirrors the core no-op logger.
type NopLogger = corelogger.NopLogger

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	format string
)

// Configure sets the minimum level (debug, info, warn, error) and output
// format (json or console) for loggers created afterwards. An empty format
// falls back to APP_ENV: "dev" selects the console writer.
func Configure(level, fmtName string, w io.Writer) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = l
	}
	switch fmtName {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %s", fmtName)
	}
	zerolog.SetGlobalLevel(lvl)
	mu.Lock()
	defer mu.Unlock()
	format = fmtName
	if w != nil {
		out = w
	}
	return nil
}

// New returns a Logger for the given component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
