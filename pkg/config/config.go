// Package config reads and writes .dock/config.toml. Spec.md §6 declares
// the file "opaque to core" — the on-disk layout only requires that the
// path exists and is left alone by every core operation. This package
// gives callers (the CLI) a concrete shape to put in it: the user identity
// and compression level, named remotes, and a signing key path.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zstd"
)

// Config is the repository-local settings document stored at
// .dock/config.toml.
type Config struct {
	User    UserConfig        `toml:"user"`
	Core    CoreConfig        `toml:"core"`
	Remotes map[string]string `toml:"remotes"`
	Signing SigningConfig     `toml:"signing"`
}

// UserConfig names the collaborator "record" attributes starlogs to when
// --author is not given; $USER is consulted only if Name is empty.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// CoreConfig holds on-disk-format knobs. Compression selects the zstd
// level the object store compresses bodies at; an empty or unrecognized
// value falls back to zstd's default level.
type CoreConfig struct {
	Compression string `toml:"compression"`
}

// Level maps Compression's name to a zstd.EncoderLevel, defaulting to
// zstd.SpeedDefault for an empty or unrecognized value.
func (c CoreConfig) Level() zstd.EncoderLevel {
	switch strings.ToLower(strings.TrimSpace(c.Compression)) {
	case "fastest":
		return zstd.SpeedFastest
	case "better":
		return zstd.SpeedBetterCompression
	case "best":
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// SigningConfig holds an SSH private key path. "record --sign" does not
// read it: its key comes from --sign-key, ssh-agent, or ~/.ssh.
type SigningConfig struct {
	KeyPath string `toml:"key_path"`
}

// Read loads config.toml at path. A missing file is not an error: it
// yields a Config with an empty remote set, matching an unconfigured
// repository.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Remotes: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	return &cfg, nil
}

// Write atomically writes cfg to path.
func Write(path string, cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// SetRemote stores/updates a named remote URL in the config at path.
func SetRemote(path, name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("set remote: remote URL is required")
	}

	cfg, err := Read(path)
	if err != nil {
		return err
	}
	cfg.Remotes[name] = remoteURL
	return Write(path, cfg)
}

// SetUser stores the collaborator identity used to attribute starlogs when
// "record" is run without --author.
func SetUser(path, name, email string) error {
	cfg, err := Read(path)
	if err != nil {
		return err
	}
	cfg.User = UserConfig{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	return Write(path, cfg)
}

// SetCompression stores core.compression ("fastest", "default", "better",
// or "best") controlling the zstd level new objects are written at.
func SetCompression(path, level string) error {
	cfg, err := Read(path)
	if err != nil {
		return err
	}
	cfg.Core.Compression = strings.TrimSpace(level)
	return Write(path, cfg)
}
