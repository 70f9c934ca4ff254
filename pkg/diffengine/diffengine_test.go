package diffengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacedockvcs/dock/pkg/ignore"
	"github.com/spacedockvcs/dock/pkg/object"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiffNewFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")

	res, err := Diff(root, ignore.New(root), nil, nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(res.New) != 1 || res.New[0] != "a.txt" {
		t.Errorf("New = %v, want [a.txt]", res.New)
	}
	if len(res.Modified) != 0 || len(res.Deleted) != 0 {
		t.Errorf("unexpected Modified/Deleted: %v / %v", res.Modified, res.Deleted)
	}
}

func TestDiffModifiedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "changed")
	starlogFiles := map[string]object.Hash{"a.txt": object.HashBytes([]byte("original"))}

	res, err := Diff(root, ignore.New(root), nil, starlogFiles)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(res.Modified) != 1 || res.Modified[0] != "a.txt" {
		t.Errorf("Modified = %v, want [a.txt]", res.Modified)
	}
	if len(res.New) != 0 {
		t.Errorf("expected no New entries, got %v", res.New)
	}
}

func TestDiffStagedAdditionIsNotModified(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "new content")
	staging := map[string]object.Hash{"a.txt": object.HashBytes([]byte("new content"))}

	res, err := Diff(root, ignore.New(root), staging, nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(res.Modified) != 0 {
		t.Errorf("expected no Modified entries for staged addition, got %v", res.Modified)
	}
	if len(res.New) != 0 {
		t.Errorf("staged path should be tracked, not New: %v", res.New)
	}
}

func TestDiffDeletedFile(t *testing.T) {
	root := t.TempDir()
	starlogFiles := map[string]object.Hash{"gone.txt": object.HashBytes([]byte("bye"))}

	res, err := Diff(root, ignore.New(root), nil, starlogFiles)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(res.Deleted) != 1 || res.Deleted[0] != "gone.txt" {
		t.Errorf("Deleted = %v, want [gone.txt]", res.Deleted)
	}
}

func TestDiffRenamedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "new_name.txt", "same content")
	starlogFiles := map[string]object.Hash{"old_name.txt": object.HashBytes([]byte("same content"))}

	res, err := Diff(root, ignore.New(root), nil, starlogFiles)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(res.Renamed) != 1 {
		t.Fatalf("Renamed = %v, want one entry", res.Renamed)
	}
	if res.Renamed[0].From != "old_name.txt" || res.Renamed[0].To != "new_name.txt" {
		t.Errorf("Renamed[0] = %+v, want old_name.txt -> new_name.txt", res.Renamed[0])
	}
	// Renamed members still appear in New/Deleted per spec (no removal).
	if len(res.New) != 1 || res.New[0] != "new_name.txt" {
		t.Errorf("New = %v, want [new_name.txt]", res.New)
	}
	if len(res.Deleted) != 1 || res.Deleted[0] != "old_name.txt" {
		t.Errorf("Deleted = %v, want [old_name.txt]", res.Deleted)
	}
}

func TestDiffIgnoredFileNotNew(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".dockignore", "ignored.txt\n")
	writeFile(t, root, "ignored.txt", "skip me")

	res, err := Diff(root, ignore.New(root), nil, nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	for _, p := range res.New {
		if p == "ignored.txt" {
			t.Errorf("ignored.txt should not appear as New")
		}
	}
}
