package main

import (
	"fmt"

	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spf13/cobra"
)

func newCourseCmd() *cobra.Command {
	var deleteCourse string

	cmd := &cobra.Command{
		Use:   "course [name]",
		Short: "List, create, or delete courses",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if deleteCourse != "" {
				if err := r.Refs.DeleteCourse(deleteCourse); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted course %q\n", deleteCourse)
				return nil
			}

			if len(args) == 1 {
				if err := r.Refs.CreateCourse(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created course %q\n", args[0])
				return nil
			}

			courses, current, err := r.Refs.ListCoursesWithCurrent()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range courses {
				if c == current {
					fmt.Fprintf(out, "* %s\n", c)
				} else {
					fmt.Fprintf(out, "  %s\n", c)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&deleteCourse, "delete", "d", "", "delete the named course")
	return cmd
}
