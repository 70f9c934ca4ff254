package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacedockvcs/dock/pkg/object"
)

func TestReadMissingFileYieldsEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage")
	s, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("expected empty set, got %v", s)
	}
}

func TestAddWritesBlobAndStagingEntry(t *testing.T) {
	root := t.TempDir()
	dockDir := filepath.Join(root, ".dock")
	if err := os.MkdirAll(dockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	store := object.NewStore(dockDir)

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	stagePath := filepath.Join(dockDir, "stage")
	if err := Add(root, stagePath, store, []string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	s, err := Read(stagePath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := object.HashBytes([]byte("hello"))
	if s["a.txt"] != want {
		t.Errorf("staged hash = %q, want %q", s["a.txt"], want)
	}
	if !store.Exists(object.KindObject, want) {
		t.Error("blob was not written to the object store")
	}
}

func TestAddExpandsDirectory(t *testing.T) {
	root := t.TempDir()
	dockDir := filepath.Join(root, ".dock")
	store := object.NewStore(dockDir)

	if err := os.MkdirAll(filepath.Join(root, "d"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "d", "b.txt"), []byte("world"), 0o644); err != nil {
		t.Fatal(err)
	}

	stagePath := filepath.Join(dockDir, "stage")
	if err := os.MkdirAll(dockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := Add(root, stagePath, store, []string{"d"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	s, err := Read(stagePath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := s["d/b.txt"]; !ok {
		t.Errorf("expected d/b.txt staged, got %v", s)
	}
}

func TestAddSkipsIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	dockDir := filepath.Join(root, ".dock")
	if err := os.MkdirAll(dockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	store := object.NewStore(dockDir)

	if err := os.WriteFile(filepath.Join(root, ".dockignore"), []byte("skip.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "skip.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	stagePath := filepath.Join(dockDir, "stage")
	err := Add(root, stagePath, store, []string{"skip.txt"})
	if err == nil {
		t.Fatal("expected error: no files matched after ignore filtering")
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	dockDir := filepath.Join(root, ".dock")
	if err := os.MkdirAll(dockDir, 0o755); err != nil {
		t.Fatal(err)
	}
	store := object.NewStore(dockDir)

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	stagePath := filepath.Join(dockDir, "stage")
	if err := Add(root, stagePath, store, []string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := Remove(stagePath, []string{"a.txt"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	s, err := Read(stagePath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("expected empty staging set after remove, got %v", s)
	}
}
