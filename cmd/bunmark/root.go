package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/iw2rmb/bunmark/editor"
	"github.com/iw2rmb/bunmark/host"
	"github.com/iw2rmb/bunmark/internal/app"
	"github.com/iw2rmb/bunmark/internal/config"
	"github.com/iw2rmb/bunmark/internal/logging"
	"github.com/iw2rmb/bunmark/locale"
	"github.com/iw2rmb/bunmark/session"
	"github.com/iw2rmb/bunmark/vault"
)

type flags struct {
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "bunmark [vault]",
		Short: "Live-preview markdown notes in the terminal",
		Long: `bunmark edits a folder of markdown notes with live preview: markup
hides away from the cursor, code blocks are highlighted and images show
as previews.

Examples:
  bunmark ~/notes              # open the vault in the editor
  bunmark host ~/notes         # serve the vault over stdin/stdout
  bunmark ls ~/notes meeting   # fuzzy-find notes`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEditor(cmd.Context(), f, args)
		},
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "config file (default $XDG_CONFIG_HOME/bunmark/config.yaml)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(newHostCmd(f), newLsCmd(f), newVersionCmd())
	return root
}

// load reads the configuration and applies the flags over it.
func (f *flags) load() (*config.Config, slog.Level, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, slog.LevelInfo, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, slog.LevelInfo, err
	}
	return cfg, level, nil
}

// vaultPath picks the vault argument over the configured one.
func vaultPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.VaultPath
}

// openVault opens the vault at path on the OS file system. An empty path
// yields a nil vault; the host then answers with "Vault not configured".
func openVault(path string, cfg *config.Config, log *slog.Logger) (*vault.Vault, error) {
	if path == "" {
		return nil, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return vault.Open(afero.NewOsFs(), abs, vault.Options{Logger: log, Ignore: cfg.Vault.Ignore})
}

// language returns the configured UI language, or the one of $LANG.
func language(cfg *config.Config) string {
	if cfg.Language != "" {
		return cfg.Language
	}
	lang, _, _ := strings.Cut(os.Getenv("LANG"), ".")
	return lang
}

func editorConfig(cfg *config.Config) editor.Config {
	wrap := editor.WrapNone
	if cfg.Editor.Wrap {
		wrap = editor.WrapWord
	}
	return editor.Config{
		Style:          editor.DefaultStyle(),
		WrapMode:       wrap,
		TabWidth:       cfg.Editor.TabWidth,
		ShowLineNums:   cfg.Editor.LineNumbers,
		HighlightStyle: cfg.Editor.HighlightStyle,
		Schedule:       cfg.SchedulerOptions(),
		Margin:         cfg.Scan.ViewportMargin,
	}
}

// logFile returns where the editor logs; the terminal belongs to the UI.
func logFile(cfg *config.Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get config dir: %w", err)
	}
	return filepath.Join(dir, "bunmark.log"), nil
}

func runEditor(ctx context.Context, f *flags, args []string) error {
	cfg, level, err := f.load()
	if err != nil {
		return err
	}
	path, err := logFile(cfg)
	if err != nil {
		return err
	}
	log, closer, err := logging.OpenFile(path, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	v, err := openVault(vaultPath(cfg, args), cfg, log)
	if err != nil {
		return err
	}
	text := locale.New(language(cfg))
	srv := host.New(v, host.Options{Logger: log, Locale: text})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	notices, err := srv.Watch(ctx)
	if err != nil && !errors.Is(err, vault.ErrWatchUnsupported) && !errors.Is(err, vault.ErrNoVault) {
		log.Warn("bunmark: watch", "err", err)
	}

	m := app.New(app.Options{
		Host:    srv,
		Notices: notices,
		Session: session.New(cfg.SessionMode(), cfg.SessionTiming()),
		Editor:  editorConfig(cfg),
		Locale:  text,
		Logger:  log,
		Style:   app.DefaultStyle(),
	})
	log.Info("bunmark: start", "vault", v != nil, "mode", cfg.Mode, "language", text.Language().String())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

