package main

import (
	"fmt"
	"io"

	"github.com/spacedockvcs/dock/pkg/pathtable"
	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spacedockvcs/dock/pkg/staging"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workspace status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			stagePath := pathtable.StageFile(r.DockDir)
			staged, err := staging.Read(stagePath)
			if err != nil {
				return err
			}

			res, err := r.Status(staged)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			current, err := r.Refs.CurrentCourse()
			if err == nil {
				fmt.Fprintf(out, "on course %s\n", current)
			}

			printGroup(out, "new", res.New)
			printGroup(out, "modified", res.Modified)
			printGroup(out, "deleted", res.Deleted)
			if len(res.Renamed) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "renamed:")
				for _, rn := range res.Renamed {
					fmt.Fprintf(out, "  %s -> %s\n", rn.From, rn.To)
				}
			}
			return nil
		},
	}
}

func printGroup(out io.Writer, label string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", label)
	for _, p := range paths {
		fmt.Fprintf(out, "  %s\n", p)
	}
}
