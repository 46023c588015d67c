package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")

	err := WriteFileAtomic(path, 0644, func(w io.Writer) error {
		_, err := w.Write([]byte("pixels"))
		return err
	})
	if err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pixels" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestWriteFileAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")
	boom := errors.New("encoder failed")

	err := WriteFileAtomic(path, 0644, func(w io.Writer) error {
		w.Write([]byte("half a png"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected encoder error, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "chart.png")
	err := WriteFileAtomic(path, 0644, func(w io.Writer) error { return nil })
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestWaitForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.png")

	go func() {
		time.Sleep(80 * time.Millisecond)
		os.WriteFile(path, []byte("x"), 0644)
	}()

	if err := WaitForFile(context.Background(), path, 2*time.Second); err != nil {
		t.Fatalf("WaitForFile failed: %v", err)
	}
}

func TestWaitForFileTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.png")
	if err := WaitForFile(context.Background(), path, 100*time.Millisecond); err == nil {
		t.Fatalf("expected timeout")
	}
}
