package main

import (
	"encoding/json"
	"fmt"

	"github.com/spacedockvcs/dock/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show starlog history for the current course",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			chain, err := r.Log(limit)
			if err != nil {
				return err
			}
			if len(chain) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no starlogs yet")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, hash := range chain {
				s, err := r.Graph.Read(hash)
				if err != nil {
					return err
				}

				if oneline {
					short := string(hash)
					if len(short) > 8 {
						short = short[:8]
					}
					fmt.Fprintf(out, "%s %s\n", short, extraString(s.Extra, "message"))
					continue
				}

				fmt.Fprintf(out, "starlog %s\n", hash)
				if author := extraString(s.Extra, "author"); author != "" {
					fmt.Fprintf(out, "Author: %s\n", author)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", extraString(s.Extra, "message"))
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of starlogs to show")

	return cmd
}

func extraString(extra map[string]json.RawMessage, key string) string {
	raw, ok := extra[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
