package object

import (
	"encoding/json"
	"fmt"

	"github.com/spacedockvcs/dock/pkg/dockerr"
)

// ErrCorruptStarlog is returned when a starlog object's bytes do not parse
// as JSON, or required fields are the wrong shape.
var ErrCorruptStarlog = fmt.Errorf("corrupt starlog object")

// Starlog is a commit-like record: it points at a Tree and, optionally, at
// a parent Starlog, plus a denormalized copy of the resolved tree's file
// map and whatever opaque metadata (author, message, timestamp, a
// signature...) the authoring collaborator attached. Unknown fields round
// trip through Extra so the core never has to understand them.
type Starlog struct {
	Tree   Hash
	Parent Hash // empty when absent/root
	Files  map[string]Hash
	Extra  map[string]json.RawMessage
}

// HasParent reports whether this starlog has a recorded parent.
func (s Starlog) HasParent() bool {
	return s.Parent != ""
}

// Marshal renders s as the JSON object format spec.md §6 defines:
// {"tree":..., "parent":... (omitted if absent), "files":{...}, <extra>...}.
func Marshal(s Starlog) ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(s.Extra)+3)
	for k, v := range s.Extra {
		obj[k] = v
	}

	treeJSON, err := json.Marshal(string(s.Tree))
	if err != nil {
		return nil, fmt.Errorf("marshal starlog: tree: %w", err)
	}
	obj["tree"] = treeJSON

	if s.HasParent() {
		parentJSON, err := json.Marshal(string(s.Parent))
		if err != nil {
			return nil, fmt.Errorf("marshal starlog: parent: %w", err)
		}
		obj["parent"] = parentJSON
	} else {
		delete(obj, "parent")
	}

	files := s.Files
	if files == nil {
		files = map[string]Hash{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return nil, fmt.Errorf("marshal starlog: files: %w", err)
	}
	obj["files"] = filesJSON

	return json.Marshal(obj)
}

// Unmarshal parses starlog object bytes, splitting the recognized fields
// (tree, parent, files) from everything else, which lands in Extra
// unmodified for round-tripping.
func Unmarshal(data []byte) (Starlog, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Starlog{}, fmt.Errorf("unmarshal starlog: %w: %v", ErrCorruptStarlog, err)
	}

	out := Starlog{Extra: make(map[string]json.RawMessage, len(raw))}
	for k, v := range raw {
		out.Extra[k] = v
	}

	treeRaw, ok := raw["tree"]
	if !ok {
		return Starlog{}, fmt.Errorf("unmarshal starlog: missing \"tree\": %w", ErrCorruptStarlog)
	}
	var tree string
	if err := json.Unmarshal(treeRaw, &tree); err != nil {
		return Starlog{}, fmt.Errorf("unmarshal starlog: \"tree\": %w", ErrCorruptStarlog)
	}
	if !Hash(tree).Valid() {
		return Starlog{}, dockerr.Wrap("unmarshal starlog: \"tree\"", dockerr.ErrInvalidHash, nil)
	}
	out.Tree = Hash(tree)
	delete(out.Extra, "tree")

	if parentRaw, ok := raw["parent"]; ok {
		var parent string
		if err := json.Unmarshal(parentRaw, &parent); err != nil {
			return Starlog{}, fmt.Errorf("unmarshal starlog: \"parent\": %w", ErrCorruptStarlog)
		}
		if parent != "" && !Hash(parent).Valid() {
			return Starlog{}, dockerr.Wrap("unmarshal starlog: \"parent\"", dockerr.ErrInvalidHash, nil)
		}
		out.Parent = Hash(parent)
		delete(out.Extra, "parent")
	}

	if filesRaw, ok := raw["files"]; ok {
		var files map[string]Hash
		if err := json.Unmarshal(filesRaw, &files); err != nil {
			return Starlog{}, fmt.Errorf("unmarshal starlog: \"files\": %w", ErrCorruptStarlog)
		}
		for path, h := range files {
			if !h.Valid() {
				return Starlog{}, dockerr.Wrap(fmt.Sprintf("unmarshal starlog: \"files\"[%q]", path), dockerr.ErrInvalidHash, nil)
			}
		}
		out.Files = files
		delete(out.Extra, "files")
	} else {
		out.Files = map[string]Hash{}
	}

	return out, nil
}

// WriteStarlog serializes s and writes it to the store's starlog shard,
// returning its hash.
func WriteStarlog(store *Store, s Starlog) (Hash, error) {
	data, err := Marshal(s)
	if err != nil {
		return "", fmt.Errorf("write starlog: %w", err)
	}
	h, err := store.Put(KindStarlog, data)
	if err != nil {
		return "", fmt.Errorf("write starlog: %w", err)
	}
	return h, nil
}

// ReadStarlog loads and parses the starlog object at h.
func ReadStarlog(store *Store, h Hash) (Starlog, error) {
	data, err := store.Get(KindStarlog, h)
	if err != nil {
		return Starlog{}, fmt.Errorf("read starlog %s: %w", h, err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return Starlog{}, fmt.Errorf("read starlog %s: %w", h, err)
	}
	return s, nil
}
