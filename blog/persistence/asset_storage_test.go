package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorage_WriteReadRemove(t *testing.T) {
	root := t.TempDir()
	storage := NewFileStorage(root)
	ctx := context.Background()

	if err := storage.Write(ctx, "/uploads/temp/u1/a.png", []byte("data")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := storage.Read(ctx, "/uploads/temp/u1/a.png")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("Read = %q, want %q", got, "data")
	}

	if err := storage.Remove(ctx, "/uploads/temp/u1/a.png"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "uploads", "temp", "u1", "a.png")); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed, stat err = %v", err)
	}

	// Removing twice is fine
	if err := storage.Remove(ctx, "/uploads/temp/u1/a.png"); err != nil {
		t.Errorf("second Remove failed: %v", err)
	}
}

func TestFileStorage_ConfinedToRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "public")
	storage := NewFileStorage(root)
	ctx := context.Background()

	if err := storage.Write(ctx, "../../outside.png", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(parent, "outside.png")); !os.IsNotExist(err) {
		t.Error("expected write to stay inside the storage root")
	}
	if _, err := os.Stat(filepath.Join(root, "outside.png")); err != nil {
		t.Errorf("expected file under root: %v", err)
	}
}

func TestFileStorage_Errors(t *testing.T) {
	storage := NewFileStorage(t.TempDir())

	tests := []struct {
		name string
		ctx  func() context.Context
		path string
	}{
		{
			name: "empty path",
			ctx:  context.Background,
			path: "",
		},
		{
			name: "missing file",
			ctx:  context.Background,
			path: "/uploads/temp/u1/nope.png",
		},
		{
			name: "cancelled context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			path: "/uploads/temp/u1/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := storage.Read(tt.ctx(), tt.path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
