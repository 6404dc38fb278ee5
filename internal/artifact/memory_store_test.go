package artifact

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "run-1", "report.md", []byte("# Report")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Put(ctx, "run-1", "/notes.md", []byte("n")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	raw, err := s.Get(ctx, "run-1", "report.md")
	if err != nil || string(raw) != "# Report" {
		t.Fatalf("get: %q, %v", raw, err)
	}

	// Leading slashes normalize to the same key.
	raw, err = s.Get(ctx, "run-1", "notes.md")
	if err != nil || string(raw) != "n" {
		t.Fatalf("get normalized path: %q, %v", raw, err)
	}

	paths, err := s.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "notes.md" || paths[1] != "report.md" {
		t.Fatalf("unexpected listing: %v", paths)
	}

	if _, err := s.Get(ctx, "run-2", "report.md"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
