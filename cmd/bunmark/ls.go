package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/bunmark/internal/logging"
	"github.com/iw2rmb/bunmark/vault"
)

func newLsCmd(f *flags) *cobra.Command {
	var folders bool
	var limit int
	cmd := &cobra.Command{
		Use:   "ls [vault] [query]",
		Short: "List the notes of a vault",
		Long: `ls prints the vault's notes relative to its root. With a query the notes
are fuzzy-matched against it and printed best match first.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, level, err := f.load()
			if err != nil {
				return err
			}
			var query string
			if len(args) == 2 {
				query = args[1]
			}
			v, err := openVault(vaultPath(cfg, args), cfg, logging.New(cmd.ErrOrStderr(), level))
			if err != nil {
				return err
			}
			if v == nil {
				return vault.ErrNoVault
			}

			out := cmd.OutOrStdout()
			if query != "" {
				found, err := v.Find(query, limit)
				if err != nil {
					return err
				}
				for _, e := range found {
					fmt.Fprintln(out, e.Path)
				}
				return nil
			}

			l, err := v.List()
			if err != nil {
				return err
			}
			if folders {
				for _, d := range l.Folders {
					fmt.Fprintln(out, d+"/")
				}
			}
			for _, e := range l.Files {
				fmt.Fprintln(out, e.Path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&folders, "folders", false, "also print folders")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of matches for a query")
	return cmd
}
