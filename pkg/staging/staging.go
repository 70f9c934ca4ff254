// Package staging implements the collaborator spec.md §3 calls out as
// external to the core: the staging set recorded at .dock/stage, whose
// format the core treats as opaque. This package defines one concrete
// format (a JSON map of repo-relative path to blob hash) and the add/remove
// operations that maintain it, grounded on the teacher's own JSON staging
// index and atomic-write pattern.
package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spacedockvcs/dock/pkg/ignore"
	"github.com/spacedockvcs/dock/pkg/object"
)

// Set maps repo-relative path to the blob hash staged for it.
type Set map[string]object.Hash

// Read loads the staging set at path. A missing file yields an empty set,
// not an error.
func Read(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}
	var s Set
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	if s == nil {
		s = Set{}
	}
	return s, nil
}

// Write atomically writes the staging set to path.
func Write(path string, s Set) error {
	if s == nil {
		s = Set{}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".stage-tmp-*")
	if err != nil {
		return fmt.Errorf("write staging: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write staging: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: rename: %w", err)
	}
	return nil
}

// Add hashes and writes a blob for each resolved path under root, then
// records it in the staging set at stagePath. Paths that resolve to
// directories are expanded to every non-ignored file beneath them; paths
// matched by .dockignore are silently skipped. If no file remains after
// that filtering, Add fails with "no files matched" and writes nothing.
func Add(root, stagePath string, store *object.Store, paths []string) error {
	s, err := Read(stagePath)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	ic := ignore.New(root)
	resolved, err := expand(root, ic, paths)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if len(resolved) == 0 {
		return fmt.Errorf("add: no files matched")
	}

	for _, rel := range resolved {
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("add: read %q: %w", rel, err)
		}
		hash, err := store.Put(object.KindObject, content)
		if err != nil {
			return fmt.Errorf("add: write blob %q: %w", rel, err)
		}
		s[rel] = hash
	}

	if err := Write(stagePath, s); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Remove drops paths from the staging set at stagePath. It does not touch
// the working tree.
func Remove(stagePath string, paths []string) error {
	s, err := Read(stagePath)
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	removed := false
	for _, p := range paths {
		if _, ok := s[p]; ok {
			delete(s, p)
			removed = true
		}
	}
	if !removed {
		return fmt.Errorf("rm: no staged files matched")
	}
	return Write(stagePath, s)
}

func expand(root string, ic *ignore.Checker, inputs []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, input := range inputs {
		abs := filepath.Join(root, filepath.FromSlash(input))
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}
		if !info.IsDir() {
			rel := filepath.ToSlash(input)
			if !ic.IsIgnored(rel) {
				seen[rel] = true
			}
			continue
		}
		err = filepath.Walk(abs, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !ic.IsIgnored(rel) {
				seen[rel] = true
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %q: %w", input, err)
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
