package tmpfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewUniquePaths(t *testing.T) {
	dir := t.TempDir()

	a, releaseA, err := New(dir, ".pdf")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer releaseA()

	b, releaseB, err := New(dir, ".pdf")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer releaseB()

	if a == b {
		t.Errorf("New() returned the same path twice: %s", a)
	}
	if !strings.HasSuffix(a, ".pdf") {
		t.Errorf("path %s does not carry the extension", a)
	}
	if filepath.Dir(a) != dir {
		t.Errorf("path %s is outside %s", a, dir)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scratch")

	path, release, err := New(dir, ".docx")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer release()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("scratch directory was not created: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path %s is outside %s", path, dir)
	}
}

func TestWriteAndRelease(t *testing.T) {
	dir := t.TempDir()
	content := []byte("%PDF-1.4 test")

	path, release, err := Write(dir, ".pdf", content)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading scratch file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("scratch file content = %q, want %q", got, content)
	}

	release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("release did not remove the file, stat err = %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	path, release, err := Write(t.TempDir(), ".pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	release()
	release() // second call must not panic
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after release")
	}
}
