// Package filemanager provides the load-modify-write discipline that backs
// every on-disk wald schema (workspace manifest, baum manifest, config,
// state): read the current file under a shared lock, let the caller mutate
// it in memory, then write to a sibling temp file and atomically rename it
// over the original. wald assumes single-process, single-writer semantics
// (see the workspace concurrency model), so unlike a CAS store this package
// does not retry on concurrent modification — a write race is a programming
// error, not a condition to recover from.
package filemanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forduniver/wald/internal/core/walderr"
)

const lockPollInterval = 50 * time.Millisecond

// UpdateFunc mutates data in place; returning an error aborts the update
// before anything is written.
type UpdateFunc[T any] func(data *T) error

// Manager reads and writes YAML-encoded values of type T at a given path.
type Manager[T any] struct {
	lockTimeout time.Duration
}

// NewManager creates a Manager with a default lock-acquisition timeout.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{lockTimeout: 5 * time.Second}
}

// NewManagerWithTimeout creates a Manager with a custom lock-acquisition timeout.
func NewManagerWithTimeout[T any](timeout time.Duration) *Manager[T] {
	return &Manager[T]{lockTimeout: timeout}
}

// Read loads and unmarshals the file at path under a shared lock. A missing
// file is reported via os.IsNotExist(err) so callers can treat it as "empty".
func (m *Manager[T]) Read(ctx context.Context, path string) (*T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	lock := createLock(path)
	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	locked, err := lock.TryRLockContext(lockCtx, lockPollInterval)
	if err != nil || !locked {
		return nil, fmt.Errorf("%w: acquire read lock on %s: %v", walderr.ErrManifestReadFailed, path, err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := readFileWithRetry(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", walderr.ErrManifestReadFailed, err)
	}

	var result T
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", walderr.ErrManifestReadFailed, err)
	}

	return &result, nil
}

// Write marshals data and atomically replaces the file at path: write to a
// sibling temp file, fsync it, then rename over the original. On rename
// failure the temp file is left on disk and the error wraps
// ErrManifestWriteFailed, per the load-modify-write contract.
func (m *Manager[T]) Write(ctx context.Context, path string, data *T) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", walderr.ErrManifestWriteFailed, err)
	}

	lock := createLock(path)
	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockPollInterval)
	if err != nil || !locked {
		return fmt.Errorf("%w: acquire write lock on %s: %v", walderr.ErrManifestWriteFailed, path, err)
	}
	defer func() { _ = lock.Unlock() }()

	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", walderr.ErrManifestWriteFailed, err)
	}

	tempFile := fmt.Sprintf("%s.%d.%d.tmp", path, os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tempFile, yamlData, 0o644); err != nil {
		return fmt.Errorf("%w: write temp file: %v", walderr.ErrManifestWriteFailed, err)
	}

	if f, err := os.OpenFile(tempFile, os.O_RDWR, 0o644); err == nil {
		_ = f.Sync()
		_ = f.Close()
	}

	if err := atomicRename(tempFile, path); err != nil {
		// Leave the temp file on disk; per spec, a failed rename is not
		// cleaned up so the caller can inspect or recover it manually.
		return fmt.Errorf("%w: rename %s over %s: %v", walderr.ErrManifestWriteFailed, tempFile, path, err)
	}
	cleanupLockFile(path)

	return nil
}

// Update loads the file (or starts from a zero value if absent), applies fn,
// and writes the result back.
func (m *Manager[T]) Update(ctx context.Context, path string, fn UpdateFunc[T]) error {
	data, err := m.Read(ctx, path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		data = new(T)
	}

	if err := fn(data); err != nil {
		return fmt.Errorf("update function failed: %w", err)
	}

	return m.Write(ctx, path, data)
}

// Delete removes the file at path; removing an already-absent file is not
// an error.
func (m *Manager[T]) Delete(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	lock := createLock(path)
	lockCtx, cancel := context.WithTimeout(ctx, m.lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockPollInterval)
	if err != nil || !locked {
		return fmt.Errorf("%w: acquire lock on %s: %v", walderr.ErrManifestWriteFailed, path, err)
	}
	if err := lock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", path, err)
	}
	cleanupLockFile(path)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}
