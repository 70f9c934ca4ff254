package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacedockvcs/dock/pkg/staging"
)

func TestInitCreatesLayout(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(r.DockDir); err != nil {
		t.Fatalf("dock dir missing: %v", err)
	}
	current, err := r.Refs.CurrentCourse()
	if err != nil {
		t.Fatalf("CurrentCourse: %v", err)
	}
	if current != "core" {
		t.Errorf("current course = %q, want core", current)
	}
}

func TestInitFailsIfAlreadyExists(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := Init(root); err == nil {
		t.Fatal("expected error on double init")
	}
}

func TestOpenFindsRepoFromSubdir(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.RootDir != root {
		t.Errorf("RootDir = %q, want %q", r.RootDir, root)
	}
}

func TestRecordAndLog(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	stagePath := filepath.Join(r.DockDir, "stage")
	if err := staging.Add(root, stagePath, r.Store, []string{"a.txt"}); err != nil {
		t.Fatalf("staging.Add: %v", err)
	}
	staged, err := staging.Read(stagePath)
	if err != nil {
		t.Fatalf("staging.Read: %v", err)
	}

	h1, err := r.Record(staged, RecordOptions{Author: "tester", Message: "first"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if h1 == "" {
		t.Fatal("expected non-empty starlog hash")
	}

	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("world"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := staging.Add(root, stagePath, r.Store, []string{"b.txt"}); err != nil {
		t.Fatalf("staging.Add: %v", err)
	}
	staged2, err := staging.Read(stagePath)
	if err != nil {
		t.Fatalf("staging.Read: %v", err)
	}
	h2, err := r.Record(staged2, RecordOptions{Author: "tester", Message: "second"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	chain, err := r.Log(0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(chain) != 2 || chain[0] != h2 || chain[1] != h1 {
		t.Fatalf("Log = %v, want [%s %s]", chain, h2, h1)
	}
}

func TestStatusReportsNewFiles(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := r.Status(nil)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(res.New) != 1 || res.New[0] != "a.txt" {
		t.Errorf("New = %v, want [a.txt]", res.New)
	}
}

func TestWarpRestoresRecordedState(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	stagePath := filepath.Join(r.DockDir, "stage")
	if err := staging.Add(root, stagePath, r.Store, []string{"a.txt"}); err != nil {
		t.Fatalf("staging.Add: %v", err)
	}
	staged, err := staging.Read(stagePath)
	if err != nil {
		t.Fatalf("staging.Read: %v", err)
	}
	if _, err := r.Record(staged, RecordOptions{Author: "tester", Message: "snapshot"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("stray"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.Warp("core"); err != nil {
		t.Fatalf("Warp: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("a.txt = %q, want hello", data)
	}
	if _, err := os.Stat(filepath.Join(root, "stray.txt")); !os.IsNotExist(err) {
		t.Errorf("stray.txt should have been removed by warp")
	}
}

func TestRecordWithSigner(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	stagePath := filepath.Join(r.DockDir, "stage")
	if err := staging.Add(root, stagePath, r.Store, []string{"a.txt"}); err != nil {
		t.Fatalf("staging.Add: %v", err)
	}
	staged, err := staging.Read(stagePath)
	if err != nil {
		t.Fatalf("staging.Read: %v", err)
	}

	called := false
	signer := func(payload []byte) (string, error) {
		called = true
		if len(payload) == 0 {
			t.Error("expected non-empty signing payload")
		}
		return "sig-placeholder", nil
	}

	h, err := r.Record(staged, RecordOptions{Author: "tester", Message: "signed", Signer: signer})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !called {
		t.Error("signer was not invoked")
	}

	s, err := r.Graph.Read(h)
	if err != nil {
		t.Fatalf("Read starlog: %v", err)
	}
	if string(s.Extra["signature"]) != `"sig-placeholder"` {
		t.Errorf("signature = %s, want quoted sig-placeholder", s.Extra["signature"])
	}
}
