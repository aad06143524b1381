// Package host answers the editor core's requests against a vault.
//
// A Server takes one core to host message at a time and returns the host to
// core replies it produced. ServeStdio runs a Server over JSON lines, one
// message per line.
package host

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/locale"
	"github.com/iw2rmb/bunmark/protocol"
	"github.com/iw2rmb/bunmark/vault"
)

type Options struct {
	Logger *slog.Logger
	Locale *locale.Catalog
	Clock  clock.Clock
	// FindLimit caps findFiles replies without a limit of their own.
	FindLimit int
}

type Server struct {
	mu sync.Mutex

	vault  *vault.Vault
	log    *slog.Logger
	text   *locale.Catalog
	router *protocol.Router
	clock  clock.Clock
	limit  int

	// current is the note saveContent writes to.
	current string
	out     []protocol.Message
}

// New returns a server for v. A nil vault answers every request with
// "Vault not configured".
func New(v *vault.Vault, opt Options) *Server {
	s := &Server{vault: v, log: opt.Logger, text: opt.Locale, clock: clock.OrSystem(opt.Clock), limit: opt.FindLimit}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.text == nil {
		s.text = locale.New("en")
	}
	if s.limit <= 0 {
		s.limit = 50
	}
	s.router = protocol.NewRouter()
	s.routes()
	return s
}

// Vault returns the served vault, or nil.
func (s *Server) Vault() *vault.Vault { return s.vault }

// Handle processes one message and returns the replies in order.
func (s *Server) Handle(m protocol.Message) []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = nil
	if err := s.router.Dispatch(m); err != nil {
		cmd := protocol.Command("")
		if m != nil {
			cmd = m.Command()
		}
		s.log.Warn("host: request failed", "command", cmd, "err", err)
		if !s.replied() {
			s.notice(protocol.LevelError, s.errorText(err))
		}
	}
	out := s.out
	s.out = nil
	return out
}

// HandleJSON decodes data and handles it. Undecodable input produces a
// showMessage error.
func (s *Server) HandleJSON(data []byte) []protocol.Message {
	m, err := protocol.Decode(data)
	if err != nil {
		s.log.Warn("host: decode", "err", err)
		return []protocol.Message{protocol.ShowMessage{
			Level: protocol.LevelError,
			Text:  s.text.Translate("badMessage", err.Error()),
		}}
	}
	return s.Handle(m)
}

func (s *Server) reply(m protocol.Message) { s.out = append(s.out, m) }

func (s *Server) replied() bool { return len(s.out) > 0 }

func (s *Server) notice(level, text string) {
	s.reply(protocol.ShowMessage{Level: level, Text: text})
}

func (s *Server) info(key string, args ...any) {
	s.notice(protocol.LevelInfo, s.text.Translate(key, args...))
}

// errorText is the user-facing text of err: the vault sentinel it wraps, or
// err itself.
func (s *Server) errorText(err error) string {
	for _, sentinel := range []error{
		vault.ErrNoVault, vault.ErrInvalidName, vault.ErrNotFound, vault.ErrExists,
		vault.ErrFolderNotFound, vault.ErrFolderExists, vault.ErrMoveIntoSelf, vault.ErrOutsideRoot,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func (s *Server) need() (*vault.Vault, error) {
	if s.vault == nil {
		return nil, vault.ErrNoVault
	}
	return s.vault, nil
}
