package host

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/iw2rmb/bunmark/protocol"
	"github.com/iw2rmb/bunmark/vault"
)

// MaxLine bounds one JSON line; note contents travel inside messages.
const MaxLine = 64 << 20

// Watch turns vault change events into fileChanged notices. Notes created
// or removed also refresh the listing.
func (s *Server) Watch(ctx context.Context) (<-chan []protocol.Message, error) {
	if s.vault == nil {
		return nil, vault.ErrNoVault
	}
	events, err := s.vault.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan []protocol.Message)
	go func() {
		defer close(out)
		for ev := range events {
			msgs := s.changed(ev)
			select {
			case out <- msgs:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Server) changed(ev vault.Event) []protocol.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = nil
	s.log.Debug("host: file event", "op", ev.Op, "name", ev.Name)
	if ev.Op != vault.Removed {
		s.reply(protocol.FileChanged{FileName: ev.Name})
	}
	if ev.Op != vault.Changed {
		if err := s.status(); err != nil {
			s.log.Warn("host: list", "err", err)
		}
	}
	out := s.out
	s.out = nil
	return out
}

type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) write(msgs []protocol.Message) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	for _, m := range msgs {
		data, err := protocol.Encode(m)
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if _, err := lw.w.Write(data); err != nil {
			return fmt.Errorf("host: write: %w", err)
		}
	}
	return nil
}

// ServeStdio reads one message per line from r and writes the replies to w,
// one per line, until r is exhausted or ctx is done. When the vault can be
// watched, change notices are written as they happen.
func ServeStdio(ctx context.Context, s *Server, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lw := &lineWriter{w: w}

	if notices, err := s.Watch(ctx); err == nil {
		go func() {
			for msgs := range notices {
				if err := lw.write(msgs); err != nil {
					s.log.Warn("host: notice", "err", err)
				}
			}
		}()
	} else if !errors.Is(err, vault.ErrWatchUnsupported) && !errors.Is(err, vault.ErrNoVault) {
		s.log.Warn("host: watch", "err", err)
	}

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), MaxLine)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("host: read: %w", err)
					}
				default:
				}
				return nil
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			if err := lw.write(s.HandleJSON(line)); err != nil {
				return err
			}
		}
	}
}
