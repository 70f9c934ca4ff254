// Package starlog implements the StarlogGraph described in spec.md §4.6:
// reading starlog records and deriving their parent, tree hash, and
// denormalized file map. The on-the-wire record shape lives in
// pkg/object (object.Starlog); this package is the graph-traversal layer
// above it.
package starlog

import (
	"fmt"

	"github.com/spacedockvcs/dock/pkg/object"
)

// Graph reads starlog objects out of a store.
type Graph struct {
	Store *object.Store
}

// New returns a Graph backed by store.
func New(store *object.Store) *Graph {
	return &Graph{Store: store}
}

// Read loads and parses the starlog at hash.
func (g *Graph) Read(hash object.Hash) (object.Starlog, error) {
	s, err := object.ReadStarlog(g.Store, hash)
	if err != nil {
		return object.Starlog{}, fmt.Errorf("starlog graph: read %s: %w", hash, err)
	}
	return s, nil
}

// TreeHashOf returns the tree hash recorded in the starlog at hash, failing
// if the starlog has no tree (malformed).
func (g *Graph) TreeHashOf(hash object.Hash) (object.Hash, error) {
	s, err := g.Read(hash)
	if err != nil {
		return "", err
	}
	if s.Tree == "" {
		return "", fmt.Errorf("starlog graph: %s: %w", hash, object.ErrCorruptStarlog)
	}
	return s.Tree, nil
}

// FilesOfParent returns the denormalized file map of the starlog at
// parentHash. If parentHash is empty (no parent / no starlog yet), it
// returns an empty map — never an error.
func (g *Graph) FilesOfParent(parentHash object.Hash) (map[string]object.Hash, error) {
	if parentHash == "" {
		return map[string]object.Hash{}, nil
	}
	s, err := g.Read(parentHash)
	if err != nil {
		return nil, err
	}
	if s.Files == nil {
		return map[string]object.Hash{}, nil
	}
	return s.Files, nil
}

// Parents walks the starlog chain starting at hash, following the single
// parent link, up to limit entries (0 means unlimited). The starlog at
// hash is included first.
func (g *Graph) Parents(hash object.Hash, limit int) ([]object.Hash, error) {
	var out []object.Hash
	cur := hash
	for cur != "" {
		out = append(out, cur)
		if limit > 0 && len(out) >= limit {
			break
		}
		s, err := g.Read(cur)
		if err != nil {
			return nil, fmt.Errorf("starlog graph: walk parents from %s: %w", hash, err)
		}
		cur = s.Parent
	}
	return out, nil
}
