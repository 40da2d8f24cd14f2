package logger

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Level string
	File  string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// PrepareLogger configures the standard logrus logger. An empty File keeps stdout.
// The returned closer releases the log file and must be called on shutdown.
func PrepareLogger(config Config) (io.Closer, error) {
	level, err := log.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", config.Level, err)
	}

	var (
		out    io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if config.File != "" {
		f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(out)
	log.SetLevel(level)
	return closer, nil
}
