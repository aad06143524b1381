package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/bunmark/host"
	"github.com/iw2rmb/bunmark/internal/logging"
	"github.com/iw2rmb/bunmark/locale"
)

func newHostCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "host [vault]",
		Short: "Serve a vault as JSON lines over stdin and stdout",
		Long: `host answers editor core messages, one JSON object per line, read from
stdin. Replies and change notices are written to stdout; logs go to stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, level, err := f.load()
			if err != nil {
				return err
			}
			log := logging.New(cmd.ErrOrStderr(), level)
			v, err := openVault(vaultPath(cfg, args), cfg, log)
			if err != nil {
				return err
			}
			srv := host.New(v, host.Options{Logger: log, Locale: locale.New(language(cfg))})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err = host.ServeStdio(ctx, srv, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
