package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/protocol"
)

// DefaultNoticeTTL is how long a notice stays in the status line.
const DefaultNoticeTTL = 4 * time.Second

type notice struct {
	id    uint64
	level string
	text  string
}

type noticeExpiredMsg struct{ id uint64 }

// notify shows text in the status line until it expires or a newer notice
// replaces it.
func (m *Model) notify(level, text string) tea.Cmd {
	if text == "" {
		return nil
	}
	m.lastNotice++
	n := notice{id: m.lastNotice, level: level, text: text}
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
	if level == protocol.LevelError {
		m.log.Warn("app: notice", "text", text)
	} else {
		m.log.Debug("app: notice", "text", text)
	}
	return tea.Tick(m.opt.NoticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{id: n.id} })
}

const maxNotices = 8

func (m *Model) expire(id uint64) {
	for i, n := range m.notices {
		if n.id == id {
			m.notices = append(m.notices[:i], m.notices[i+1:]...)
			return
		}
	}
}

// currentNotice returns the newest live notice.
func (m *Model) currentNotice() (notice, bool) {
	if len(m.notices) == 0 {
		return notice{}, false
	}
	return m.notices[len(m.notices)-1], true
}
