package main

import (
	"fmt"

	"github.com/spacedockvcs/dock/pkg/config"
	"github.com/spacedockvcs/dock/pkg/pathtable"
	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spf13/cobra"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage named remotes in config.toml",
	}
	cmd.AddCommand(newRemoteAddCmd())
	cmd.AddCommand(newRemoteListCmd())
	return cmd
}

func newRemoteAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add or update a named remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			configPath := pathtable.ConfigFile(r.DockDir)
			return config.SetRemote(configPath, args[0], args[1])
		},
	}
}

func newRemoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			configPath := pathtable.ConfigFile(r.DockDir)
			cfg, err := config.Read(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for name, url := range cfg.Remotes {
				fmt.Fprintf(out, "%s\t%s\n", name, url)
			}
			return nil
		},
	}
}
