package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spacedockvcs/dock/pkg/dockerr"
)

// Tree is a manifest mapping repository-relative, posix-separated paths to
// blob hashes. It has no nested structure — spec.md §3 defines Tree as a
// flat JSON object, unlike a git tree's per-directory nesting.
type Tree map[string]Hash

// Serialize renders t as a UTF-8 JSON object, keys in canonical
// lexicographic order by posix path. spec.md §9 leaves tree key ordering
// unpinned by the source; since the tree's hash is the hash of these exact
// bytes, two builders that disagree on order would produce different
// hashes for identical content, so this project canonicalizes on sorted
// order rather than relying on encoding/json's incidental map-key sort.
func Serialize(t Tree) ([]byte, error) {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("serialize tree: marshal key %q: %w", p, err)
		}
		val, err := json.Marshal(string(t[p]))
		if err != nil {
			return nil, fmt.Errorf("serialize tree: marshal value for %q: %w", p, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ErrCorruptTree is returned by Deserialize when the bytes do not decode to
// a flat string-valued JSON object.
var ErrCorruptTree = fmt.Errorf("corrupt tree object")

// Deserialize parses tree object bytes back into a Tree. It fails with
// ErrCorruptTree if the payload is not a flat object of string values.
func Deserialize(data []byte) (Tree, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("deserialize tree: %w: %v", ErrCorruptTree, err)
	}
	t := make(Tree, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("deserialize tree: key %q: %w", k, ErrCorruptTree)
		}
		h := Hash(s)
		if !h.Valid() {
			return nil, dockerr.Wrap(fmt.Sprintf("deserialize tree: key %q", k), dockerr.ErrInvalidHash, nil)
		}
		t[k] = h
	}
	return t, nil
}

// WriteTree serializes t and writes it to the store, returning its hash.
func WriteTree(s *Store, t Tree) (Hash, error) {
	data, err := Serialize(t)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	h, err := s.Put(KindObject, data)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return h, nil
}

// LoadTree reads and parses the tree object at h.
func LoadTree(s *Store, h Hash) (Tree, error) {
	data, err := s.Get(KindObject, h)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", h, err)
	}
	t, err := Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", h, err)
	}
	return t, nil
}
