// Package diffengine implements DiffEngine as described in spec.md §4.8:
// classifying the workspace against the tracked set (staging ∪ latest
// starlog's file map) into new, modified, deleted, and renamed
// presentations.
package diffengine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spacedockvcs/dock/pkg/object"
	"github.com/spacedockvcs/dock/pkg/workspace"
)

// Result holds the four disjoint presentations produced by Diff. New,
// Modified and Deleted are pairwise disjoint; a path may additionally
// appear in Renamed.
type Result struct {
	New      []string // workspace paths not tracked
	Modified []string // tracked (via starlog) paths whose content changed
	Deleted  []string // tracked paths missing from the workspace
	Renamed  []Rename // new/deleted pairs sharing content
}

// Rename pairs a deleted path with a new path carrying identical content.
type Rename struct {
	From string
	To   string
}

// Diff computes the workspace status relative to staging and the latest
// recorded starlog's file map. staging may be nil (no staged changes
// recorded). starlogFiles may be nil (no starlog yet).
func Diff(root string, ic workspace.Ignorer, staging map[string]object.Hash, starlogFiles map[string]object.Hash) (Result, error) {
	files, err := workspace.ListFiles(root, ic)
	if err != nil {
		return Result{}, fmt.Errorf("diff: %w", err)
	}
	workspaceSet := make(map[string]bool, len(files))
	for _, f := range files {
		workspaceSet[f] = true
	}

	tracked := make(map[string]bool, len(staging)+len(starlogFiles))
	for p := range staging {
		tracked[p] = true
	}
	for p := range starlogFiles {
		tracked[p] = true
	}

	var res Result

	for _, p := range files {
		if !tracked[p] {
			res.New = append(res.New, p)
		}
	}
	sort.Strings(res.New)

	for p := range tracked {
		if !workspaceSet[p] {
			res.Deleted = append(res.Deleted, p)
		}
	}
	sort.Strings(res.Deleted)

	for _, p := range files {
		starlogHash, inStarlog := starlogFiles[p]
		if !inStarlog {
			continue
		}
		hash, err := hashFile(root, p)
		if err != nil {
			return Result{}, fmt.Errorf("diff: %w", err)
		}
		if hash != starlogHash {
			res.Modified = append(res.Modified, p)
		}
	}
	sort.Strings(res.Modified)

	usedDeleted := make(map[string]bool, len(res.Deleted))
	for _, n := range res.New {
		hash, err := hashFile(root, n)
		if err != nil {
			return Result{}, fmt.Errorf("diff: %w", err)
		}
		for _, d := range res.Deleted {
			if usedDeleted[d] {
				continue
			}
			if starlogFiles[d] == hash {
				res.Renamed = append(res.Renamed, Rename{From: d, To: n})
				usedDeleted[d] = true
				break
			}
		}
	}

	return res, nil
}

func hashFile(root, relPath string) (object.Hash, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", relPath, err)
	}
	return object.HashBytes(data), nil
}
