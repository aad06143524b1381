package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/bunmark"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bunmark version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "bunmark", bunmark.VersionTag())
		},
	}
}
