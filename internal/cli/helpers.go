package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/autoparse/internal/logging"
)

// CreateLogger configures the application logger for the given level name.
// It writes to Stderr to keep Stdout for command output.
func CreateLogger(level string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl, os.Stderr), nil
}

// ReadData reads a data document from path, or Stdin when path is "-".
func ReadData(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}
