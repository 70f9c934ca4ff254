// Package workspace implements the WorkspaceWalker described in spec.md
// §4.4: enumerate workspace files relative to the repository root, skipping
// internal and ignored paths.
package workspace

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Ignorer is satisfied by ignore.Checker; kept as an interface here so this
// package does not need to import ignore, keeping the dependency order
// IgnoreFilter <- WorkspaceWalker one-directional per spec.md §2.
type Ignorer interface {
	IsIgnored(path string) bool
}

var internalSegments = map[string]bool{
	".dock":        true,
	".git":         true,
	"__pycache__":  true,
}

// ListFiles walks root and returns the posix-relative paths of all regular,
// non-ignored, non-internal files, in deterministic order: sorted
// byte-wise by full posix path (so "a.txt" comes before "a/b.txt").
//
// Rules, applied in order, per spec.md §4.4:
//  1. Skip entries whose path contains a segment .dock, .git, or __pycache__.
//  2. Skip non-regular files.
//  3. Apply the ignore filter; drop matches.
//  4. Emit the posix-relative path.
func ListFiles(root string, ic Ignorer) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
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

		if d.IsDir() {
			if internalSegments[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if hasInternalSegment(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		if ic != nil && ic.IsIgnored(rel) {
			return nil
		}

		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list workspace files: %w", err)
	}

	sort.Strings(out)
	return out, nil
}

func hasInternalSegment(relPath string) bool {
	start := 0
	for i := 0; i <= len(relPath); i++ {
		if i == len(relPath) || relPath[i] == '/' {
			if internalSegments[relPath[start:i]] {
				return true
			}
			start = i + 1
		}
	}
	return false
}
