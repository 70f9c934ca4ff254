package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spacedockvcs/dock/pkg/repo"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

const starlogSignaturePrefix = "sshsig-v1"

// newSSHStarlogSigner resolves a repo.Signer for "record --sign".
//
// An explicit keyPath always wins and is loaded straight from disk, the
// same way a pinned deploy key would be. With no keyPath, a running
// ssh-agent (SSH_AUTH_SOCK) is preferred over guessing a default file:
// an agent-held key never touches the signing process as plaintext, and
// picking the agent's first identity matches how ssh itself picks a key
// when none is named. Only when no agent is reachable do we fall back to
// probing ~/.ssh for the usual id_ed25519/id_ecdsa/id_rsa names.
func newSSHStarlogSigner(keyPath string) (repo.Signer, string, error) {
	keyPath = strings.TrimSpace(keyPath)

	if keyPath == "" {
		if signer, label, ok := agentSigner(); ok {
			return buildSigner(signer), label, nil
		}
	}

	resolvedPath, err := resolveSigningKeyPath(keyPath)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}
	return buildSigner(signer), resolvedPath, nil
}

// agentSigner dials SSH_AUTH_SOCK and returns its first loaded identity, if
// any. A failure to dial or an empty identity list is not an error worth
// surfacing — it just means the file-based fallback should run instead.
func agentSigner() (ssh.Signer, string, bool) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, "", false
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, "", false
	}

	client := agent.NewClient(conn)
	signers, err := client.Signers()
	if err != nil || len(signers) == 0 {
		conn.Close()
		return nil, "", false
	}
	signer := signers[0]
	return signer, fmt.Sprintf("ssh-agent:%s", ssh.FingerprintSHA256(signer.PublicKey())), true
}

// buildSigner wraps signer (agent-backed or file-backed, both ssh.Signer)
// in the repo.Signer closure that repo.Record calls. The envelope carries
// the public key's fingerprint alongside its full blob; verify recomputes
// the fingerprint from the blob and rejects the signature on a mismatch.
func buildSigner(signer ssh.Signer) repo.Signer {
	pub := signer.PublicKey()
	pubB64 := base64.StdEncoding.EncodeToString(pub.Marshal())
	fingerprint := ssh.FingerprintSHA256(pub)

	return func(payload []byte) (string, error) {
		sig, err := signer.Sign(rand.Reader, payload)
		if err != nil {
			return "", err
		}
		sigB64 := base64.StdEncoding.EncodeToString(sig.Blob)
		return fmt.Sprintf("%s:%s:%s:%s:%s", starlogSignaturePrefix, sig.Format, fingerprint, pubB64, sigB64), nil
	}
}

func resolveSigningKeyPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "" {
		return expandUserPath(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
		filepath.Join(home, ".ssh", "id_rsa"),
	}
	for _, candidate := range candidates {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no default SSH private key found in ~/.ssh (id_ed25519, id_ecdsa, id_rsa)")
}

func expandUserPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
