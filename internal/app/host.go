package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/protocol"
)

// Host answers core to host messages. *host.Server implements it.
type Host interface {
	Handle(protocol.Message) []protocol.Message
}

// repliesMsg carries the host's answers to one call.
type repliesMsg struct {
	replies []protocol.Message
}

// noticesMsg carries unsolicited host messages, such as fileChanged.
type noticesMsg struct {
	replies []protocol.Message
	closed  bool
}

// call sends msgs to the host in order off the update loop.
func (m *Model) call(msgs ...protocol.Message) tea.Cmd {
	if m.host == nil || len(msgs) == 0 {
		return nil
	}
	h := m.host
	return func() tea.Msg {
		var out []protocol.Message
		for _, msg := range msgs {
			out = append(out, h.Handle(msg)...)
		}
		return repliesMsg{replies: out}
	}
}

func waitNotices(ch <-chan []protocol.Message) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msgs, ok := <-ch
		return noticesMsg{replies: msgs, closed: !ok}
	}
}

// dispatch routes host replies to their handlers and returns the commands
// they queued.
func (m *Model) dispatch(replies []protocol.Message) tea.Cmd {
	for _, r := range replies {
		if err := m.router.Dispatch(r); err != nil {
			m.log.Warn("app: reply", "command", r.Command(), "err", err)
		}
	}
	cmds := m.queued
	m.queued = nil
	return tea.Batch(cmds...)
}

// queue adds cmd to the commands of the current dispatch.
func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.queued = append(m.queued, cmd)
	}
}
