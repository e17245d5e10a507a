package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log is an append-only JSONL audit log.
type Log struct {
	path string
	file *os.File
	mu   sync.Mutex
}

var _ Sink = (*Log)(nil)

// Open opens (or creates) an audit log file for appending.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: open file: %w", err)
	}
	return &Log{path: path, file: file}, nil
}

// Path returns the file the log appends to.
func (l *Log) Path() string { return l.path }

// Record appends r as one JSON line and syncs to disk.
// An empty timestamp is set to now.
func (l *Log) Record(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("audit: marshal record: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("audit: write record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("audit: sync: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// ReadLog reads the JSONL file at path and returns the records matching f,
// oldest first. Malformed lines are skipped.
func ReadLog(path string, f Filter) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open log: %w", err)
	}
	defer file.Close()

	var out []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if f.match(r) {
			out = append(out, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: read log: %w", err)
	}

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}
