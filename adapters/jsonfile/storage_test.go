package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStorePersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "prompts.json")

	store, err := New(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	if _, ok, err := store.ReadInt(ctx, "promptkit.startups"); ok || err != nil {
		t.Fatalf("expected unwritten key, ok=%v err=%v", ok, err)
	}
	if err := store.WriteInt(ctx, "promptkit.startups", 3); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.WriteInt(ctx, "promptkit.push_seen", 1); err != nil {
		t.Fatalf("write: %v", err)
	}

	// ensure file written
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file at %s", path)
	}

	// reload
	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	v, ok, err := reloaded.ReadInt(ctx, "promptkit.startups")
	if err != nil || !ok || v != 3 {
		t.Fatalf("expected startups 3, got %d ok=%v err=%v", v, ok, err)
	}
	v, ok, _ = reloaded.ReadInt(ctx, "promptkit.push_seen")
	if !ok || v != 1 {
		t.Fatalf("expected push_seen 1, got %d ok=%v", v, ok)
	}
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestStoreEmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreEmptyFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok, _ := s.ReadInt(context.Background(), "k"); ok {
		t.Fatal("expected empty store")
	}
}

func TestStoresSharingFileKeepEachOthersKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	ctx := context.Background()

	a, err := New(path)
	if err != nil {
		t.Fatalf("new a: %v", err)
	}
	b, err := New(path)
	if err != nil {
		t.Fatalf("new b: %v", err)
	}

	if err := a.WriteInt(ctx, "promptkit.push_seen", 1); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := b.WriteInt(ctx, "promptkit.startups", 1); err != nil {
		t.Fatalf("write b: %v", err)
	}

	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v, ok, _ := reloaded.ReadInt(ctx, "promptkit.push_seen"); !ok || v != 1 {
		t.Fatalf("expected push_seen 1 from a, got %d ok=%v", v, ok)
	}
	if v, ok, _ := reloaded.ReadInt(ctx, "promptkit.startups"); !ok || v != 1 {
		t.Fatalf("expected startups 1 from b, got %d ok=%v", v, ok)
	}
}

func TestStoreFailedWriteKeepsPreviousState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.WriteInt(ctx, "promptkit.startups", 1); err != nil {
		t.Fatalf("write: %v", err)
	}

	// a directory in place of the temp file makes every write fail
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}

	if err := s.WriteInt(ctx, "promptkit.startups", 2); err == nil {
		t.Fatal("expected write error")
	}
	if v, ok, _ := s.ReadInt(ctx, "promptkit.startups"); !ok || v != 1 {
		t.Fatalf("expected previous value 1, got %d ok=%v", v, ok)
	}

	if err := s.WriteInt(ctx, "promptkit.push_seen", 1); err == nil {
		t.Fatal("expected write error")
	}
	if _, ok, _ := s.ReadInt(ctx, "promptkit.push_seen"); ok {
		t.Fatal("expected failed new key to stay unwritten")
	}

	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v, _, _ := reloaded.ReadInt(ctx, "promptkit.startups"); v != 1 {
		t.Fatalf("expected file to keep startups 1, got %d", v)
	}
}
