package images

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/fence"
	"github.com/iw2rmb/bunmark/markdown"
)

type State uint8

const (
	Unrendered State = iota
	Pending
	Resolved
	Revealed
)

func (s State) String() string {
	switch s {
	case Unrendered:
		return "unrendered"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Revealed:
		return "revealed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

var remoteRE = regexp.MustCompile(`(?i)^(https?:|data:|vscode-resource:|vscode-webview-resource:)`)

// IsRemote reports whether url can be displayed without asking the host.
func IsRemote(url string) bool { return remoteRE.MatchString(url) }

// Request asks the host to resolve a local image path.
type Request struct {
	ID   uint64
	Row  int
	Path string
}

// Meta carries optional details of a resolved image.
type Meta struct {
	Width  int
	Height int
}

type Options struct {
	Ledger *decor.Ledger
	Fences *fence.Tracker
	Logger *slog.Logger
}

type lineState struct {
	text    string
	state   State
	spans   []markdown.Span
	handles []decor.Handle
	pending []uint64
}

// Layer owns the image marks of one editor.
type Layer struct {
	ledger *decor.Ledger
	fences *fence.Tracker
	log    *slog.Logger

	lines    map[int]*lineState
	requests map[uint64]decor.Handle
	nextID   uint64
	revealed int

	dirty              bool
	dirtyFrom, dirtyTo int
}

func New(opt Options) *Layer {
	l := &Layer{
		ledger:   opt.Ledger,
		fences:   opt.Fences,
		log:      opt.Logger,
		lines:    make(map[int]*lineState),
		requests: make(map[uint64]decor.Handle),
		revealed: -1,
	}
	if l.ledger == nil {
		l.ledger = &decor.Ledger{}
	}
	if l.fences == nil {
		l.fences = &fence.Tracker{}
	}
	if l.log == nil {
		l.log = slog.New(slog.DiscardHandler)
	}
	return l
}

func (l *Layer) Ledger() *decor.Ledger { return l.ledger }

// State returns the state of row.
func (l *Layer) State(row int) State {
	if ls, ok := l.lines[row]; ok {
		return ls.state
	}
	return Unrendered
}

// Revealed returns the revealed row, or -1.
func (l *Layer) Revealed() int { return l.revealed }

// PendingRequests returns how many resolutions are outstanding.
func (l *Layer) PendingRequests() int { return len(l.requests) }

// Pass is the window of one update. Active is the cursor row of a focused
// editor, or -1. From < 0 updates every line.
type Pass struct {
	Active   int
	From, To int
}

// Update rebuilds image marks of changed lines in the window and returns
// the resolution requests for new local images.
func (l *Layer) Update(doc fence.Lines, p Pass) []Request {
	n := doc.LineCount()
	for row := range l.lines {
		if row >= n {
			l.clearLine(row)
			delete(l.lines, row)
		}
	}
	from, to := 0, n-1
	if p.From >= 0 {
		from, to = max(0, p.From), min(n-1, p.To)
	}

	var reqs []Request
	for row := from; row <= to; row++ {
		reqs = append(reqs, l.updateLine(doc, row, row == p.Active)...)
	}
	return reqs
}

func (l *Layer) updateLine(doc fence.Lines, row int, active bool) []Request {
	text := doc.Line(row)
	ls := l.lines[row]

	if active || row == l.revealed {
		l.reset(row, text, l.stateWhenHidden(row))
		return nil
	}
	if ls != nil && ls.text == text && (ls.state == Pending || ls.state == Resolved) {
		return nil
	}
	if fs := l.fences.At(doc, row); fs.Inside || fs.Delimiter {
		l.reset(row, text, Unrendered)
		return nil
	}

	spans := markdown.ScanInline(text, 0).Images
	ls = l.reset(row, text, Unrendered)
	if len(spans) == 0 {
		return nil
	}
	ls.spans = spans
	ls.state = Resolved

	var reqs []Request
	for _, s := range spans {
		w := decor.Image{Alt: s.Alt, URL: s.URL, Title: s.Title}
		local := !IsRemote(s.URL)
		if local {
			l.nextID++
			w.RequestID = l.nextID
			w.Placeholder = true
		} else {
			w.Src = s.URL
		}
		h, err := l.ledger.Add(row, s.Full(), decor.Decoration{Kind: decor.Replaced, Widget: w})
		if err != nil {
			l.log.Debug("images: mark skipped", "line", row, "start", s.Open.Start, "err", err)
			continue
		}
		ls.handles = append(ls.handles, h)
		if local {
			l.requests[w.RequestID] = h
			ls.pending = append(ls.pending, w.RequestID)
			ls.state = Pending
			reqs = append(reqs, Request{ID: w.RequestID, Row: row, Path: s.URL})
		}
	}
	return reqs
}

func (l *Layer) stateWhenHidden(row int) State {
	if row == l.revealed {
		return Revealed
	}
	return Unrendered
}

// reset clears the marks of row and records text as its last seen content.
func (l *Layer) reset(row int, text string, st State) *lineState {
	l.clearLine(row)
	ls := &lineState{text: text, state: st}
	l.lines[row] = ls
	return ls
}

func (l *Layer) clearLine(row int) {
	ls, ok := l.lines[row]
	if !ok {
		return
	}
	for _, h := range ls.handles {
		l.ledger.Remove(h)
	}
	for _, id := range ls.pending {
		delete(l.requests, id)
	}
	ls.handles, ls.pending, ls.spans = nil, nil, nil
}

// Resolve applies a host reply. It reports false when id is unknown or its
// widget is gone. A nil uri keeps the placeholder.
func (l *Layer) Resolve(id uint64, uri *string, meta Meta) bool {
	h, ok := l.requests[id]
	if !ok {
		return false
	}
	delete(l.requests, id)
	m, ok := l.ledger.Lookup(h)
	if !ok {
		return false
	}
	if ls := l.lines[m.Line]; ls != nil {
		ls.pending = removeID(ls.pending, id)
		if len(ls.pending) == 0 && ls.state == Pending {
			ls.state = Resolved
		}
	}
	if uri == nil {
		l.log.Debug("images: unresolved", "id", id, "line", m.Line)
		return true
	}
	w, _ := m.Widget.(decor.Image)
	w.Src = *uri
	w.Placeholder = false
	w.Width, w.Height = meta.Width, meta.Height
	return l.ledger.Update(h, w)
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, cur := range ids {
		if cur == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Reveal clears the previews of row so the raw markdown can be edited. It
// returns the cursor target: the alt text start of the image at col, or of
// the first image on the line.
func (l *Layer) Reveal(row, col int) (buffer.Pos, bool) {
	ls, ok := l.lines[row]
	if !ok || len(ls.spans) == 0 {
		return buffer.Pos{}, false
	}
	target := ls.spans[0]
	for _, s := range ls.spans {
		if full := s.Full(); col >= full.Start && col < full.End {
			target = s
			break
		}
	}
	if l.revealed >= 0 && l.revealed != row {
		l.MarkDirty(l.revealed, l.revealed)
		delete(l.lines, l.revealed)
	}
	l.revealed = row
	l.reset(row, ls.text, Revealed)
	return buffer.Pos{Row: row, Col: target.Inner.Start}, true
}

// CursorMoved ends the reveal once the cursor leaves the revealed line. It
// reports whether the line needs an update.
func (l *Layer) CursorMoved(row int) bool {
	if l.revealed < 0 || row == l.revealed {
		return false
	}
	prev := l.revealed
	l.revealed = -1
	l.clearLine(prev)
	delete(l.lines, prev)
	l.MarkDirty(prev, prev)
	return true
}

// ShiftLines follows an edit that changed the line count after row.
func (l *Layer) ShiftLines(row, delta int) {
	if delta == 0 {
		return
	}
	l.ledger.ShiftLines(row, delta)
	lines := make(map[int]*lineState, len(l.lines))
	for r, ls := range l.lines {
		switch {
		case r <= row:
			lines[r] = ls
		case delta < 0 && r <= row-delta:
			for _, id := range ls.pending {
				delete(l.requests, id)
			}
		default:
			lines[r+delta] = ls
		}
	}
	l.lines = lines
	switch {
	case l.revealed <= row:
	case delta < 0 && l.revealed <= row-delta:
		l.revealed = -1
	default:
		l.revealed += delta
	}
}

// Invalidate forgets the cached text of rows from..to so the next update
// reprocesses them.
func (l *Layer) Invalidate(from, to int) {
	for row, ls := range l.lines {
		if row >= from && row <= to {
			ls.text = ""
			ls.state = Unrendered
		}
	}
	l.MarkDirty(from, to)
}

// Reset drops every mark and request.
func (l *Layer) Reset() {
	l.ledger.ClearAll()
	clear(l.lines)
	clear(l.requests)
	l.revealed = -1
	l.dirty = false
}

// MarkDirty widens the window the next scheduled update covers.
func (l *Layer) MarkDirty(from, to int) {
	if !l.dirty {
		l.dirty, l.dirtyFrom, l.dirtyTo = true, from, to
		return
	}
	l.dirtyFrom = min(l.dirtyFrom, from)
	l.dirtyTo = max(l.dirtyTo, to)
}

// TakeDirty returns and resets the pending window.
func (l *Layer) TakeDirty() (from, to int, ok bool) {
	if !l.dirty {
		return 0, 0, false
	}
	l.dirty = false
	return l.dirtyFrom, l.dirtyTo, true
}
