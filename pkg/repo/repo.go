// Package repo wires the core components spec.md describes — ObjectStore,
// TreeCodec, StarlogGraph, RefStore, DiffEngine, and Checkout — into a
// single opened repository, mirroring how the teacher's pkg/repo.Repo
// wires its own object store, refs, and tree builder together.
package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spacedockvcs/dock/pkg/checkout"
	"github.com/spacedockvcs/dock/pkg/config"
	"github.com/spacedockvcs/dock/pkg/diffengine"
	"github.com/spacedockvcs/dock/pkg/dockerr"
	"github.com/spacedockvcs/dock/pkg/ignore"
	"github.com/spacedockvcs/dock/pkg/object"
	"github.com/spacedockvcs/dock/pkg/pathtable"
	"github.com/spacedockvcs/dock/pkg/refs"
	"github.com/spacedockvcs/dock/pkg/starlog"
	"github.com/spacedockvcs/dock/pkg/treebuild"
)

// Repo represents an opened dock repository.
type Repo struct {
	RootDir string        // working directory root
	DockDir string        // .dock/ directory
	Store   *object.Store // content-addressed object store
	Refs    *refs.Store   // courses + helm
	Graph   *starlog.Graph
}

// Init creates a new repository at path: the .dock/ directory structure,
// the object and starlog shard trees, and the core course pointing at an
// empty latest starlog. Fails if a .dock/ directory already exists.
func Init(path string) (*Repo, error) {
	dockDir := pathtable.DockDir(path)

	if _, err := os.Stat(dockDir); err == nil {
		return nil, dockerr.Wrap("init", nil, fmt.Errorf("repository already exists at %s", dockDir))
	}

	dirs := []string{
		pathtable.ObjectsDir(dockDir),
		pathtable.StarlogsDir(dockDir),
		pathtable.CoursesDir(dockDir),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, dockerr.Wrap(fmt.Sprintf("init: mkdir %s", d), dockerr.ErrIOError, err)
		}
	}

	refStore := refs.New(dockDir)
	if err := refStore.Init(); err != nil {
		return nil, dockerr.Wrap("init", nil, err)
	}

	store := object.NewStore(dockDir)
	return &Repo{
		RootDir: path,
		DockDir: dockDir,
		Store:   store,
		Refs:    refStore,
		Graph:   starlog.New(store),
	}, nil
}

// Open searches upward from path for a .dock/ directory and opens the
// repository it finds.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, dockerr.Wrap("open: abs path", nil, err)
	}

	cur := abs
	for {
		dockDir := pathtable.DockDir(cur)
		info, err := os.Stat(dockDir)
		if err == nil && info.IsDir() {
			cfg, err := config.Read(pathtable.ConfigFile(dockDir))
			if err != nil {
				return nil, dockerr.Wrap("open: read config", nil, err)
			}
			store := object.NewStoreWithLevel(dockDir, cfg.Core.Level())
			return &Repo{
				RootDir: cur,
				DockDir: dockDir,
				Store:   store,
				Refs:    refs.New(dockDir),
				Graph:   starlog.New(store),
			}, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, dockerr.Wrap("open", nil, fmt.Errorf("not a dock repository (or any parent up to /)"))
		}
		cur = parent
	}
}

// Ignorer returns the .dockignore checker for the repository root.
func (r *Repo) Ignorer() *ignore.Checker {
	return ignore.New(r.RootDir)
}

// Status computes the workspace diff against staging and the current
// course's latest starlog, or against an empty file map if the course has
// no starlog yet.
func (r *Repo) Status(staging map[string]object.Hash) (diffengine.Result, error) {
	starlogFiles, err := r.latestFiles()
	if err != nil {
		return diffengine.Result{}, dockerr.Wrap("status", nil, err)
	}
	return diffengine.Diff(r.RootDir, r.Ignorer(), staging, starlogFiles)
}

func (r *Repo) latestFiles() (map[string]object.Hash, error) {
	latest, err := r.Refs.LatestStarlog()
	if err != nil {
		if isNoStarlogYet(err) {
			return map[string]object.Hash{}, nil
		}
		return nil, err
	}
	return r.Graph.FilesOfParent(latest)
}

// RecordOptions carries the opaque metadata fields a starlog preserves
// verbatim alongside its tree and parent (spec.md §3: author, message,
// timestamp, plus whatever a signer attaches).
type RecordOptions struct {
	Author    string
	Message   string
	Timestamp int64 // unix seconds; zero means "now"
	Signer    Signer
}

// Signer produces an opaque signature string over a starlog's canonical
// payload. It is used by "record --sign" and stored verbatim in the
// starlog's Extra bag.
type Signer func(payload []byte) (string, error)

// Record composes a tree from the current staging set layered over the
// course's latest starlog (spec.md §4.5's build_from_staged), writes a new
// starlog on top of that latest starlog, and moves the course ref forward.
// It returns the hash of the new starlog. staging is typically read from
// .dock/stage by the caller (see pkg/staging); a nil/empty staging set
// records the parent's tree unchanged.
func (r *Repo) Record(staging map[string]object.Hash, opts RecordOptions) (object.Hash, error) {
	var parent object.Hash
	latest, err := r.Refs.LatestStarlog()
	if err != nil {
		if !isNoStarlogYet(err) {
			return "", dockerr.Wrap("record", nil, err)
		}
	} else {
		parent = latest
	}

	parentFiles, err := r.Graph.FilesOfParent(parent)
	if err != nil {
		return "", dockerr.Wrap("record", nil, err)
	}
	tree := treebuild.FromStaged(staging, parentFiles)

	treeHash, err := object.WriteTree(r.Store, tree)
	if err != nil {
		return "", dockerr.Wrap("record: write tree", nil, err)
	}

	ts := opts.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}

	extra := map[string]json.RawMessage{}
	if opts.Author != "" {
		extra["author"] = quoteJSON(opts.Author)
	}
	if opts.Message != "" {
		extra["message"] = quoteJSON(opts.Message)
	}
	extra["timestamp"] = json.RawMessage(fmt.Sprintf("%d", ts))

	s := object.Starlog{
		Tree:   treeHash,
		Parent: parent,
		Files:  tree,
		Extra:  extra,
	}

	if opts.Signer != nil {
		payload, err := object.Marshal(s)
		if err != nil {
			return "", dockerr.Wrap("record: marshal for signing", nil, err)
		}
		sig, err := opts.Signer(payload)
		if err != nil {
			return "", dockerr.Wrap("record: sign", nil, err)
		}
		s.Extra["signature"] = quoteJSON(sig)
	}

	hash, err := object.WriteStarlog(r.Store, s)
	if err != nil {
		return "", dockerr.Wrap("record: write starlog", nil, err)
	}

	current, err := r.Refs.CurrentCourse()
	if err != nil {
		return "", dockerr.Wrap("record", nil, err)
	}
	if err := r.Refs.SetCourseHead(current, hash); err != nil {
		return "", dockerr.Wrap("record", nil, err)
	}

	return hash, nil
}

// Log walks the current course's starlog chain, newest first, up to limit
// entries (0 means unlimited).
func (r *Repo) Log(limit int) ([]object.Hash, error) {
	latest, err := r.Refs.LatestStarlog()
	if err != nil {
		if isNoStarlogYet(err) {
			return nil, nil
		}
		return nil, dockerr.Wrap("log", nil, err)
	}
	return r.Graph.Parents(latest, limit)
}

// Warp restores the workspace to the state recorded at the named course's
// latest starlog and moves helm to point at it.
func (r *Repo) Warp(course string) error {
	head, err := r.Refs.CourseHead(course)
	if err != nil && !isNoStarlogYet(err) {
		return dockerr.Wrap("warp", nil, err)
	}
	tree, err := r.treeAt(head)
	if err != nil {
		return dockerr.Wrap("warp", nil, err)
	}
	if err := checkout.Warp(r.RootDir, r.Store, tree); err != nil {
		return dockerr.Wrap("warp", nil, err)
	}
	return r.Refs.Warp(course)
}

func (r *Repo) treeAt(starlogHash object.Hash) (object.Tree, error) {
	if starlogHash == "" {
		return object.Tree{}, nil
	}
	treeHash, err := r.Graph.TreeHashOf(starlogHash)
	if err != nil {
		return nil, err
	}
	return object.LoadTree(r.Store, treeHash)
}

func quoteJSON(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return json.RawMessage(data)
}

func isNoStarlogYet(err error) bool {
	return errors.Is(err, dockerr.ErrNoStarlogYet)
}
