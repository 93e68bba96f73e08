// Package tmpfile hands out uniquely named scratch files for external tool
// invocations. Every acquisition returns a release function; callers defer
// it so the file disappears on success, failure and timeout alike.
package tmpfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const dirPerm = 0o750

// New reserves a unique path under dir with the given extension (".pdf",
// ".docx", ...). The file itself is not created; the release function
// removes it if the caller wrote it.
func New(dir, ext string) (string, func(), error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", nil, fmt.Errorf("cannot create scratch directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	release := func() {
		_ = os.Remove(path)
	}
	return path, release, nil
}

// Write acquires a scratch path and writes data to it.
func Write(dir, ext string, data []byte) (string, func(), error) {
	path, release, err := New(dir, ext)
	if err != nil {
		return "", nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		release()
		return "", nil, fmt.Errorf("cannot write scratch file: %w", err)
	}
	return path, release, nil
}
