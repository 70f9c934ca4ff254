package object

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/spacedockvcs/dock/pkg/dockerr"
)

// Kind distinguishes the two parallel sharded stores spec.md §4.2 defines:
// blobs/trees live under objects/, starlogs live under starlogs/.
type Kind string

const (
	KindObject  Kind = "objects"
	KindStarlog Kind = "starlogs"
)

// ErrNotFound is returned when Get is asked for a hash that has no file on
// disk in the requested shard.
var ErrNotFound = fmt.Errorf("object not found")

// Store is a content-addressed, two-character fan-out store rooted at a
// repository's .dock directory. Bodies are stored zstd-compressed on disk;
// Get always hands back the original logical bytes, so hashes are computed
// over the uncompressed content — storing compressed
// is purely an on-disk detail, not a change to object identity.
type Store struct {
	root  string // path to .dock
	level zstd.EncoderLevel
}

// NewStore returns a Store rooted at dockDir (the repository's .dock
// directory), compressing at zstd's default level. The shard directories
// are created lazily on first write.
func NewStore(dockDir string) *Store {
	return &Store{root: dockDir, level: zstd.SpeedDefault}
}

// NewStoreWithLevel is NewStore with an explicit zstd compression level,
// for callers honoring a repository's core.compression setting.
func NewStoreWithLevel(dockDir string, level zstd.EncoderLevel) *Store {
	return &Store{root: dockDir, level: level}
}

func (s *Store) path(kind Kind, h Hash) string {
	dir, rest := h.Shard()
	return filepath.Join(s.root, string(kind), dir, rest)
}

// Exists reports whether an object with the given hash is present under the
// given kind's shard tree.
func (s *Store) Exists(kind Kind, h Hash) bool {
	_, err := os.Stat(s.path(kind, h))
	return err == nil
}

// Put computes the hash of data, writes it (compressed) under the given
// kind's shard tree, and returns the hash. Writes are tolerated to overwrite
// an existing file: content at a given hash is always identical by
// construction, so a re-write is a no-op in effect.
func (s *Store) Put(kind Kind, data []byte) (Hash, error) {
	h := HashBytes(data)

	dir := filepath.Join(s.root, string(kind), string(h)[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", dockerr.Wrap(fmt.Sprintf("object store: mkdir %s", dir), dockerr.ErrIOError, err)
	}

	compressed, err := s.compress(data)
	if err != nil {
		return "", fmt.Errorf("object store: compress %s: %w", h, err)
	}

	dest := s.path(kind, h)
	if err := os.WriteFile(dest, compressed, 0o644); err != nil {
		return "", dockerr.Wrap(fmt.Sprintf("object store: write %s", h), dockerr.ErrIOError, err)
	}
	return h, nil
}

// Get reads and decompresses the object stored at h under the given kind.
// It returns ErrNotFound (wrapped) if no such object exists. The hash is
// trusted, not re-verified against the returned bytes: a single-process,
// single-writer repository never sees a hash collide with stale content.
func (s *Store) Get(kind Kind, h Hash) ([]byte, error) {
	raw, err := os.ReadFile(s.path(kind, h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dockerr.Wrap(fmt.Sprintf("object store: get %s", h), ErrNotFound, nil)
		}
		return nil, dockerr.Wrap(fmt.Sprintf("object store: get %s", h), dockerr.ErrIOError, err)
	}
	data, err := decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("object store: decompress %s: %w", h, err)
	}
	return data, nil
}

func (s *Store) compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(s.level))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
