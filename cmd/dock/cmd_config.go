package main

import (
	"fmt"

	"github.com/spacedockvcs/dock/pkg/config"
	"github.com/spacedockvcs/dock/pkg/pathtable"
	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or set .dock/config.toml's user and core sections",
	}
	cmd.AddCommand(newConfigUserCmd())
	cmd.AddCommand(newConfigCoreCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			cfg, err := config.Read(pathtable.ConfigFile(r.DockDir))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user.name = %q\n", cfg.User.Name)
			fmt.Fprintf(out, "user.email = %q\n", cfg.User.Email)
			fmt.Fprintf(out, "core.compression = %q\n", cfg.Core.Compression)
			fmt.Fprintf(out, "signing.key_path = %q\n", cfg.Signing.KeyPath)
			for name, url := range cfg.Remotes {
				fmt.Fprintf(out, "remotes.%s = %q\n", name, url)
			}
			return nil
		},
	}
}

func newConfigUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <name> <email>",
		Short: "Set the identity 'record' attributes starlogs to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return config.SetUser(pathtable.ConfigFile(r.DockDir), args[0], args[1])
		},
	}
}

func newConfigCoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compression <fastest|default|better|best>",
		Short: "Set the zstd level new objects are written at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			return config.SetCompression(pathtable.ConfigFile(r.DockDir), args[0])
		},
	}
}
