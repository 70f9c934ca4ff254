package main

import (
	"fmt"

	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spf13/cobra"
)

func newWarpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warp <course>",
		Short: "Restore the workspace to a course's latest starlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.Warp(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "warped to %s\n", args[0])
			return nil
		},
	}
}
