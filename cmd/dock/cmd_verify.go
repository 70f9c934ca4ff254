package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spacedockvcs/dock/pkg/object"
	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the current course's latest starlog and every blob it references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			latest, err := r.Refs.LatestStarlog()
			if err != nil {
				return err
			}

			s, err := r.Graph.Read(latest)
			if err != nil {
				return fmt.Errorf("verify: read starlog %s: %w", latest, err)
			}

			tree, err := object.LoadTree(r.Store, s.Tree)
			if err != nil {
				return fmt.Errorf("verify: load tree %s: %w", s.Tree, err)
			}

			out := cmd.OutOrStdout()
			missing := 0
			for path, blobHash := range tree {
				if !r.Store.Exists(object.KindObject, blobHash) {
					fmt.Fprintf(out, "missing blob: %s (%s)\n", path, blobHash)
					missing++
				}
			}
			if missing > 0 {
				return fmt.Errorf("verify: %d missing blob(s)", missing)
			}

			if sigRaw, ok := s.Extra["signature"]; ok {
				var sig string
				if err := json.Unmarshal(sigRaw, &sig); err != nil {
					return fmt.Errorf("verify: malformed signature field: %w", err)
				}
				if err := verifyStarlogSignature(s, sig); err != nil {
					return fmt.Errorf("verify: signature check failed: %w", err)
				}
				fmt.Fprintln(out, "signature: valid")
			}

			fmt.Fprintf(out, "%s: ok (%d files)\n", latest, len(tree))
			return nil
		},
	}
}

// verifyStarlogSignature checks sig against the starlog's canonical bytes
// with the signature field itself removed, since that is exactly the
// payload newSSHStarlogSigner signs in signing_ssh.go.
func verifyStarlogSignature(s object.Starlog, sig string) error {
	parts := strings.SplitN(sig, ":", 5)
	if len(parts) != 5 || parts[0] != starlogSignaturePrefix {
		return fmt.Errorf("unrecognized signature format")
	}
	format, fingerprint, pubB64, sigB64 := parts[1], parts[2], parts[3], parts[4]

	pubBytes, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	pub, err := ssh.ParsePublicKey(pubBytes)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}
	if got := ssh.FingerprintSHA256(pub); got != fingerprint {
		return fmt.Errorf("signature fingerprint %s does not match embedded key %s", fingerprint, got)
	}
	sigBlob, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	unsigned := object.Starlog{
		Tree:   s.Tree,
		Parent: s.Parent,
		Files:  s.Files,
		Extra:  withoutKey(s.Extra, "signature"),
	}
	payload, err := object.Marshal(unsigned)
	if err != nil {
		return fmt.Errorf("rebuild signed payload: %w", err)
	}

	return pub.Verify(payload, &ssh.Signature{Format: format, Blob: sigBlob})
}

func withoutKey(m map[string]json.RawMessage, key string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		if k == key {
			continue
		}
		out[k] = v
	}
	return out
}
