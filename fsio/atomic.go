package fsio

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path atomically and applies perm to the
// final file. The data is written to a temp file in the destination
// directory, flushed to disk, and renamed over the destination, so a
// concurrent reader sees either the old contents or the new contents but
// never a partial write.
//
// A chmod failure after a successful rename is logged as a warning rather
// than returned: the contents are already in place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}

	if err := os.Chmod(path, perm); err != nil {
		slog.Warn("could not set file permissions; contents were written",
			"path", path,
			"perm", perm,
			"error", err,
		)
	}

	return nil
}

// ReadFileShared reads the file at path while holding a best-effort advisory
// shared lock on the open handle. If the platform has no lock primitive, or
// acquiring it fails, the read proceeds without a lock.
func ReadFileShared(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	locked := lockShared(f)
	if !locked {
		slog.Debug("shared file lock unavailable, reading without lock", "path", path)
	}
	defer func() {
		if locked {
			unlock(f)
		}
	}()

	return io.ReadAll(f)
}
