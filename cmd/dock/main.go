package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "dock",
		Short: "Content-addressed version control for a workspace",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newRecordCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newCourseCmd())
	root.AddCommand(newWarpCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newRemoteCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dock 0.1.0-dev")
		},
	}
}
