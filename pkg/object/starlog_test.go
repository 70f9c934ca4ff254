package object

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/spacedockvcs/dock/pkg/dockerr"
)

func TestStarlogMarshalUnmarshalRoundTrip(t *testing.T) {
	treeHash := HashBytes([]byte("tree"))
	parentHash := HashBytes([]byte("parent"))
	fileHash := HashBytes([]byte("a.txt"))
	s := Starlog{
		Tree:   treeHash,
		Parent: parentHash,
		Files:  map[string]Hash{"a.txt": fileHash},
		Extra: map[string]json.RawMessage{
			"author":  json.RawMessage(`"ada"`),
			"message": json.RawMessage(`"first commit"`),
		},
	}
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Tree != s.Tree || got.Parent != s.Parent {
		t.Errorf("got tree/parent %q/%q, want %q/%q", got.Tree, got.Parent, s.Tree, s.Parent)
	}
	if len(got.Files) != 1 || got.Files["a.txt"] != fileHash {
		t.Errorf("files mismatch: %v", got.Files)
	}
	if string(got.Extra["author"]) != `"ada"` {
		t.Errorf("extra author mismatch: %s", got.Extra["author"])
	}
}

func TestStarlogNoParentOmitsField(t *testing.T) {
	s := Starlog{Tree: HashBytes([]byte("tree")), Files: map[string]Hash{}}
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, ok := raw["parent"]; ok {
		t.Errorf("expected no \"parent\" key for a root starlog, got %s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.HasParent() {
		t.Error("HasParent() should be false for a root starlog")
	}
}

func TestUnmarshalMissingTreeIsCorrupt(t *testing.T) {
	_, err := Unmarshal([]byte(`{"files":{}}`))
	if err == nil {
		t.Error("expected error for starlog missing \"tree\"")
	}
}

func TestUnmarshalRejectsMalformedTreeHash(t *testing.T) {
	_, err := Unmarshal([]byte(`{"tree":"not-a-valid-hash","files":{}}`))
	if !errors.Is(err, dockerr.ErrInvalidHash) {
		t.Errorf("Unmarshal with a malformed tree hash = %v, want dockerr.ErrInvalidHash", err)
	}
}

func TestWriteReadStarlogRoundTrip(t *testing.T) {
	store := tempStore(t)
	treeHash := HashBytes([]byte("t1"))
	fileHash := HashBytes([]byte("x"))
	s := Starlog{Tree: treeHash, Files: map[string]Hash{"x": fileHash}}
	h, err := WriteStarlog(store, s)
	if err != nil {
		t.Fatalf("WriteStarlog: %v", err)
	}
	got, err := ReadStarlog(store, h)
	if err != nil {
		t.Fatalf("ReadStarlog: %v", err)
	}
	if got.Tree != s.Tree || got.Files["x"] != fileHash {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
