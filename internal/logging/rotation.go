package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig controls size-based rotation of the gateway log.
type RotationConfig struct {
	// MaxSizeMB is the size in megabytes at which the log is rotated.
	// 0 disables rotation.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept as gateway.log.1..N.
	MaxBackups int
}

// DefaultRotationConfig returns the rotation settings used when none are
// configured.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.WriteCloser over a file that is renamed to
// path.1 once it would grow past the configured size. Older backups shift
// to path.2 and so on; anything past MaxBackups is deleted.
// It is safe for concurrent use.
type RotatingWriter struct {
	mu         sync.Mutex
	path       string
	maxBytes   int64
	maxBackups int
	file       *os.File
	size       int64
}

// NewRotatingWriter opens (or creates) path for appending.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:       path,
		maxBytes:   int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxBackups: cfg.MaxBackups,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rw.file = f
	rw.size = info.Size()
	return nil
}

// Write appends p, rotating first if p would push the file past its limit.
// A failed rotation is reported on stderr and the write still goes to the
// current file.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, errors.New("log file is closed")
	}
	if rw.maxBytes > 0 && rw.size > 0 && rw.size+int64(len(p)) > rw.maxBytes {
		if err := rw.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	rw.file = nil

	if rw.maxBackups <= 0 {
		if err := os.Remove(rw.path); err != nil && !os.IsNotExist(err) {
			return errors.Join(fmt.Errorf("remove log file: %w", err), rw.open())
		}
		return rw.open()
	}

	_ = os.Remove(rw.backupPath(rw.maxBackups))
	for i := rw.maxBackups - 1; i >= 1; i-- {
		_ = os.Rename(rw.backupPath(i), rw.backupPath(i+1))
	}
	if err := os.Rename(rw.path, rw.backupPath(1)); err != nil {
		return errors.Join(fmt.Errorf("rename log file: %w", err), rw.open())
	}
	return rw.open()
}

func (rw *RotatingWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// Size returns the number of bytes in the current file.
func (rw *RotatingWriter) Size() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}

// Close syncs and closes the file. Closing twice is a no-op.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	syncErr := rw.file.Sync()
	closeErr := rw.file.Close()
	rw.file = nil
	return errors.Join(syncErr, closeErr)
}
