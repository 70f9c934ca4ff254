package main

import (
	"fmt"

	"github.com/spacedockvcs/dock/pkg/pathtable"
	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spacedockvcs/dock/pkg/staging"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage file contents for the next record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			stagePath := pathtable.StageFile(r.DockDir)
			if err := staging.Add(r.RootDir, stagePath, r.Store, args); err != nil {
				return err
			}
			return nil
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Unstage file contents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			stagePath := pathtable.StageFile(r.DockDir)
			if err := staging.Remove(stagePath, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unstaged %d path(s)\n", len(args))
			return nil
		},
	}
}
