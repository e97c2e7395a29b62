package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the WordPress credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			wp, err := ctx.wordpressClient()
			if err != nil {
				return err
			}
			if !wp.TestConnection(cmd.Context()) {
				return fmt.Errorf("cannot reach WordPress at %s", wp.BaseURL())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", wp.BaseURL())
			return nil
		},
	}
}
