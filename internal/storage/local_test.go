package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStore_SaveRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "abc.pdf", []byte("%PDF-1.4 data"), "application/pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ref != "abc.pdf" {
		t.Errorf("unexpected ref %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(dir, "abc.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4 data" {
		t.Errorf("content mismatch: %q", data)
	}

	url, err := store.URL(context.Background(), ref)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "/uploads/abc.pdf" {
		t.Errorf("unexpected url %q", url)
	}

	if err := store.Remove(context.Background(), ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc.pdf")); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}

	// Removing a missing file is not an error.
	if err := store.Remove(context.Background(), ref); err != nil {
		t.Errorf("second remove: %v", err)
	}
}

func TestLocalStore_SanitizesTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "../../etc/passwd", []byte("x"), "application/pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ref != "passwd" {
		t.Errorf("expected path stripped to base, got %q", ref)
	}
	if _, err := os.Stat(filepath.Join(dir, "passwd")); err != nil {
		t.Errorf("file should land inside the store dir: %v", err)
	}
}
