package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <postal-code>",
		Short: "Print the addresses of the facilities sharing a postal code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			for _, address := range a.dataset.Match(args[0]) {
				if _, err := fmt.Fprintln(out, address); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
