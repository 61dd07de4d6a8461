package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FileRotator is a size-based rotating log file writer. When the live file
// exceeds maxSize it is renamed with a timestamp suffix and a fresh file is
// opened; old rotated files beyond maxFiles are removed.
type FileRotator struct {
	mu   sync.Mutex
	file *os.File
	size int64

	path     string
	maxSize  int64
	maxFiles int
	compress bool

	// rotMu serializes compression and pruning of rotated files.
	rotMu sync.Mutex
}

// NewFileRotator opens (or creates) the log file at path.
func NewFileRotator(path string, maxSize int64, maxFiles int, compress bool) (*FileRotator, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid max file size: %d", maxSize)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	return &FileRotator{
		file:     file,
		size:     info.Size(),
		path:     path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
		compress: compress,
	}, nil
}

func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Sync flushes the live file to disk.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close flushes and closes the live file.
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate is called with mu held.
func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close log file for rotation: %w", err)
	}

	rotated := fmt.Sprintf("%s.%s", r.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(r.path, rotated); err != nil {
		// Keep logging into the old file rather than losing entries.
		file, openErr := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr != nil {
			r.file = nil
			return fmt.Errorf("reopen log file after failed rotation: %w", openErr)
		}
		r.file = file
		return fmt.Errorf("rename log file: %w", err)
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		r.file = nil
		return fmt.Errorf("open new log file: %w", err)
	}
	r.file = file
	r.size = 0

	go r.finishRotation(rotated)
	return nil
}

func (r *FileRotator) finishRotation(rotated string) {
	r.rotMu.Lock()
	defer r.rotMu.Unlock()

	if r.compress {
		if err := compressFile(rotated); err == nil {
			rotated += ".gz"
		}
	}
	r.prune()
}

// prune removes the oldest rotated files once more than maxFiles exist.
// Called with rotMu held.
func (r *FileRotator) prune() {
	if r.maxFiles <= 0 {
		return
	}

	matches, err := filepath.Glob(r.path + ".*")
	if err != nil {
		return
	}
	// Timestamp suffixes sort chronologically.
	sort.Strings(matches)
	for len(matches) > r.maxFiles {
		os.Remove(matches[0])
		matches = matches[1:]
	}
}

func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		gz.Close()
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".gz")
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path + ".gz")
		return err
	}

	return os.Remove(path)
}

// ParseSize parses a human-readable size such as "100MB" or "512KB".
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive: %d", value)
	}
	return value * multiplier, nil
}
