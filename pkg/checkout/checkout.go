// Package checkout implements "warp to course" as described in
// spec.md §4.9: replacing the workspace's tracked contents with the files
// recorded in a target tree. Unlike DiffEngine, checkout does not honor
// .dockignore — restoration removes everything outside the target tree,
// ignored or not.
package checkout

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spacedockvcs/dock/pkg/dockerr"
	"github.com/spacedockvcs/dock/pkg/object"
)

const dockDirName = ".dock"

// Warp restores root's working tree to match tree, reading blobs from
// store. The caller loads the tree; Warp then runs the remaining ordered
// phases of spec.md §4.9: build the target path set, delete untracked
// files, prune empty directories, then write the target's blobs. Checkout does not roll back on failure; callers should
// only invoke it from a clean or reconcilable state.
func Warp(root string, store *object.Store, tree object.Tree) error {
	targetPaths := make(map[string]bool, len(tree))
	for p := range tree {
		targetPaths[p] = true
	}

	if err := deleteUntracked(root, targetPaths); err != nil {
		return dockerr.Wrap("warp", nil, err)
	}
	if err := pruneEmptyDirs(root); err != nil {
		return dockerr.Wrap("warp", nil, err)
	}
	if err := writeTree(root, store, tree); err != nil {
		return dockerr.Wrap("warp", nil, err)
	}
	return nil
}

func isUnderDock(rel string) bool {
	return rel == dockDirName || strings.HasPrefix(rel, dockDirName+"/")
}

func deleteUntracked(root string, targetPaths map[string]bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if isUnderDock(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !targetPaths[rel] {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove %q: %w", rel, err)
			}
		}
		return nil
	})
}

func pruneEmptyDirs(root string) error {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if isUnderDock(rel) {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return err
	}

	// Deepest first, so a parent empties out only after its children have
	// already been considered for removal.
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("readdir %q: %w", dir, err)
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove dir %q: %w", dir, err)
			}
		}
	}
	return nil
}

func writeTree(root string, store *object.Store, tree object.Tree) error {
	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, relPath := range paths {
		blobHash := tree[relPath]
		if !store.Exists(object.KindObject, blobHash) {
			return dockerr.Wrap(fmt.Sprintf("write tree %q", relPath), dockerr.ErrBlobMissing, nil)
		}
		data, err := store.Get(object.KindObject, blobHash)
		if err != nil {
			return fmt.Errorf("read blob %q: %w", relPath, err)
		}

		absPath := filepath.Join(root, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return fmt.Errorf("mkdir for %q: %w", relPath, err)
		}
		if err := os.WriteFile(absPath, data, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", relPath, err)
		}
	}
	return nil
}
