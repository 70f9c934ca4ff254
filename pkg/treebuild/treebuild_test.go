package treebuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacedockvcs/dock/pkg/ignore"
	"github.com/spacedockvcs/dock/pkg/object"
)

func TestFromWorkspace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "d"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "d", "b.txt"), []byte("world"), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := FromWorkspace(dir, ignore.New(dir))
	if err != nil {
		t.Fatalf("FromWorkspace: %v", err)
	}
	if tree["a.txt"] != object.HashBytes([]byte("hello")) {
		t.Errorf("a.txt hash mismatch: %v", tree["a.txt"])
	}
	if tree["d/b.txt"] != object.HashBytes([]byte("world")) {
		t.Errorf("d/b.txt hash mismatch: %v", tree["d/b.txt"])
	}
	if len(tree) != 2 {
		t.Errorf("expected 2 entries, got %d: %v", len(tree), tree)
	}
}

func TestFromWorkspaceHonorsIgnore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".dockignore"), []byte("secret.txt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("shh"), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := FromWorkspace(dir, ignore.New(dir))
	if err != nil {
		t.Fatalf("FromWorkspace: %v", err)
	}
	if _, ok := tree["secret.txt"]; ok {
		t.Error("secret.txt should be omitted from the built tree")
	}
}

func TestFromStagedSeedsThenOverlays(t *testing.T) {
	parent := map[string]object.Hash{"a.txt": "old-a", "b.txt": "old-b"}
	staging := map[string]object.Hash{"a.txt": "new-a", "c.txt": "new-c"}

	tree := FromStaged(staging, parent)
	want := object.Tree{"a.txt": "new-a", "b.txt": "old-b", "c.txt": "new-c"}
	if len(tree) != len(want) {
		t.Fatalf("got %v, want %v", tree, want)
	}
	for k, v := range want {
		if tree[k] != v {
			t.Errorf("tree[%q] = %q, want %q", k, tree[k], v)
		}
	}
}

func TestFromStagedNoParent(t *testing.T) {
	tree := FromStaged(map[string]object.Hash{"x": "hx"}, nil)
	if len(tree) != 1 || tree["x"] != "hx" {
		t.Errorf("unexpected tree: %v", tree)
	}
}
