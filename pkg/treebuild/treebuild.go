// Package treebuild implements the build half of the TreeCodec described in
// spec.md §4.5: turning a workspace or a staging map into an object.Tree.
// Serialization, writing, and loading live on object.Tree itself (see
// pkg/object); this package only builds the in-memory mapping.
package treebuild

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spacedockvcs/dock/pkg/object"
	"github.com/spacedockvcs/dock/pkg/workspace"
)

// FromWorkspace walks root (skipping .dock and ignored files, via ic) and
// builds a Tree mapping each file's posix-relative path to the hash of its
// contents. It does not write any blobs to the store; pairing blob writes
// with this call is the caller's responsibility, same as a staging "add".
func FromWorkspace(root string, ic workspace.Ignorer) (object.Tree, error) {
	paths, err := workspace.ListFiles(root, ic)
	if err != nil {
		return nil, fmt.Errorf("build tree from workspace: %w", err)
	}

	tree := make(object.Tree, len(paths))
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("build tree from workspace: read %s: %w", rel, err)
		}
		tree[rel] = object.HashBytes(data)
	}
	return tree, nil
}

// FromStaged seeds a Tree with parentFiles (the parent starlog's denormalized
// file map — nil/empty when there is no parent), then overlays staging,
// adding and replacing entries. Deletions are expressed by the staging
// collaborator's own bookkeeping (omitting a path it wants removed); this
// function only overlays what it is given, it never infers a deletion.
func FromStaged(staging map[string]object.Hash, parentFiles map[string]object.Hash) object.Tree {
	tree := make(object.Tree, len(parentFiles)+len(staging))
	for p, h := range parentFiles {
		tree[p] = h
	}
	for p, h := range staging {
		tree[p] = h
	}
	return tree
}
