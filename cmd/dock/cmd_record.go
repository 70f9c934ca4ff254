package main

import (
	"fmt"
	"os"

	"github.com/spacedockvcs/dock/pkg/config"
	"github.com/spacedockvcs/dock/pkg/pathtable"
	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spacedockvcs/dock/pkg/staging"
	"github.com/spf13/cobra"
)

func newRecordCmd() *cobra.Command {
	var message string
	var author string
	var sign bool
	var signKey string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record the staged changes onto the current course",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("record message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			stagePath := pathtable.StageFile(r.DockDir)
			staged, err := staging.Read(stagePath)
			if err != nil {
				return err
			}

			if author == "" {
				cfg, err := config.Read(pathtable.ConfigFile(r.DockDir))
				if err != nil {
					return err
				}
				author = cfg.User.Name
			}
			if author == "" {
				author = os.Getenv("USER")
			}
			if author == "" {
				author = "unknown"
			}

			opts := repo.RecordOptions{Author: author, Message: message}
			signedWith := ""
			if sign {
				signer, keyPath, err := newSSHStarlogSigner(signKey)
				if err != nil {
					return err
				}
				opts.Signer = signer
				signedWith = keyPath
			}

			hash, err := r.Record(staged, opts)
			if err != nil {
				return err
			}

			current, err := r.Refs.CurrentCourse()
			if err != nil {
				current = "?"
			}

			short := string(hash)
			if len(short) > 8 {
				short = short[:8]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", current, short, message)
			if sign {
				fmt.Fprintf(cmd.OutOrStdout(), "signed with %s\n", signedWith)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "starlog message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: config user.name, then $USER)")
	cmd.Flags().BoolVar(&sign, "sign", false, "sign the starlog with an SSH private key")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "path to SSH private key (default: first ssh-agent identity, else ~/.ssh/id_ed25519, id_ecdsa, id_rsa)")

	return cmd
}
