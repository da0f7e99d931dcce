// Package audit provides a best-effort append-only prediction log for
// offline analysis.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fraudguard/scoring-service/internal/domain/port"
)

// JSONLLogger implements port.PredictionLogger by appending one JSON
// object per line to a local file.
type JSONLLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewJSONLLogger opens (creating directories as needed) the log file in
// append mode.
func NewJSONLLogger(path string) (*JSONLLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}
	return &JSONLLogger{file: f}, nil
}

// Log appends one prediction entry.
func (l *JSONLLogger) Log(_ context.Context, entry port.PredictionLogEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshalling audit entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *JSONLLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
