// Package schedule coalesces edit and cursor events into bounded-rate
// re-scans.
//
// Each concern owns one named slot. Arming a slot bumps its generation, so
// an older timer that fires later no longer matches and is dropped: at most
// one timer per slot is ever live. The scheduler only does bookkeeping; the
// caller turns a Timer into a real tick and reports it back through Fire.
package schedule

import (
	"fmt"
	"time"

	"github.com/iw2rmb/bunmark/session"
)

type Slot uint8

const (
	Syntax Slot = iota
	Image
	Fence
	Autosave
	slotCount
)

var slotNames = [slotCount]string{"syntax", "image", "fence", "autosave"}

func (s Slot) String() string {
	if s < slotCount {
		return slotNames[s]
	}
	return fmt.Sprintf("Slot(%d)", uint8(s))
}

// Tier buckets documents by size.
type Tier uint8

const (
	Normal Tier = iota
	Heavy
	VeryHeavy
)

func (t Tier) String() string {
	switch t {
	case Heavy:
		return "heavy"
	case VeryHeavy:
		return "very-heavy"
	default:
		return "normal"
	}
}

// Delays of one mode and tier.
type Delays struct {
	Change  time.Duration
	Cursor  time.Duration
	MinIdle time.Duration
	Image   time.Duration
}

var delayTable = [2][3]Delays{
	session.ModeSidebar: {
		Normal:    {Change: 50 * time.Millisecond, Cursor: 25 * time.Millisecond, MinIdle: 700 * time.Millisecond, Image: 250 * time.Millisecond},
		Heavy:     {Change: 120 * time.Millisecond, Cursor: 60 * time.Millisecond, MinIdle: 1100 * time.Millisecond, Image: 400 * time.Millisecond},
		VeryHeavy: {Change: 200 * time.Millisecond, Cursor: 120 * time.Millisecond, MinIdle: 1600 * time.Millisecond, Image: 600 * time.Millisecond},
	},
	session.ModeMain: {
		Normal:    {Change: 80 * time.Millisecond, Cursor: 40 * time.Millisecond, MinIdle: 700 * time.Millisecond, Image: 250 * time.Millisecond},
		Heavy:     {Change: 180 * time.Millisecond, Cursor: 100 * time.Millisecond, MinIdle: 1100 * time.Millisecond, Image: 400 * time.Millisecond},
		VeryHeavy: {Change: 300 * time.Millisecond, Cursor: 180 * time.Millisecond, MinIdle: 1600 * time.Millisecond, Image: 600 * time.Millisecond},
	},
}

type Options struct {
	Mode session.Mode

	// HeavyChars and VeryHeavyChars are the tier thresholds in runes.
	// Zero values select 120000 and 250000.
	HeavyChars     int
	VeryHeavyChars int

	// Autosave is the autosave delay; zero selects 750ms.
	Autosave time.Duration
	// ImageDelay, when set, replaces the normal-tier image delay.
	ImageDelay time.Duration
}

// Timer is an armed slot. The caller waits Delay and then calls Fire with
// Slot and Gen.
type Timer struct {
	Slot   Slot
	Gen    uint64
	Delay  time.Duration
	Forced bool
}

type Scheduler struct {
	opt Options

	gens   [slotCount]uint64
	armed  [slotCount]bool
	forced [slotCount]bool
}

func New(opt Options) *Scheduler {
	if opt.HeavyChars <= 0 {
		opt.HeavyChars = 120_000
	}
	if opt.VeryHeavyChars <= 0 {
		opt.VeryHeavyChars = 250_000
	}
	if opt.Autosave <= 0 {
		opt.Autosave = 750 * time.Millisecond
	}
	return &Scheduler{opt: opt}
}

func (s *Scheduler) Mode() session.Mode { return s.opt.Mode }

// SetMode switches the delay table, as when the editor moves between the
// sidebar and the main window.
func (s *Scheduler) SetMode(m session.Mode) { s.opt.Mode = m }

// TierFor buckets a document of chars runes.
func (s *Scheduler) TierFor(chars int) Tier {
	switch {
	case chars > s.opt.VeryHeavyChars:
		return VeryHeavy
	case chars > s.opt.HeavyChars:
		return Heavy
	default:
		return Normal
	}
}

// DelaysFor returns the delays for a document of chars runes.
func (s *Scheduler) DelaysFor(chars int) Delays {
	mode := s.opt.Mode
	if mode > session.ModeMain {
		mode = session.ModeSidebar
	}
	tier := s.TierFor(chars)
	d := delayTable[mode][tier]
	if s.opt.ImageDelay > 0 && tier == Normal {
		d.Image = s.opt.ImageDelay
	}
	return d
}

func (s *Scheduler) arm(slot Slot, delay time.Duration, forced bool) Timer {
	s.gens[slot]++
	s.armed[slot] = true
	s.forced[slot] = forced
	return Timer{Slot: slot, Gen: s.gens[slot], Delay: delay, Forced: forced}
}

// Change arms the syntax slot after a buffer change.
func (s *Scheduler) Change(chars int) Timer {
	return s.arm(Syntax, s.DelaysFor(chars).Change, false)
}

// Cursor arms the syntax slot after a cursor move. A pending forced run is
// kept.
func (s *Scheduler) Cursor(chars int) Timer {
	if s.armed[Syntax] && s.forced[Syntax] {
		return Timer{Slot: Syntax, Gen: s.gens[Syntax], Forced: true}
	}
	return s.arm(Syntax, s.DelaysFor(chars).Cursor, false)
}

// Force arms an immediate syntax run that bypasses the idle guard: on blur,
// on fence or rule edits and on checkbox toggles.
func (s *Scheduler) Force() Timer {
	return s.arm(Syntax, 0, true)
}

// Image arms the image slot.
func (s *Scheduler) Image(chars int) Timer {
	return s.arm(Image, s.DelaysFor(chars).Image, false)
}

// Fence arms the fence cache rebuild.
func (s *Scheduler) Fence(chars int) Timer {
	return s.arm(Fence, s.DelaysFor(chars).Change, false)
}

func (s *Scheduler) Autosave() Timer {
	return s.arm(Autosave, s.opt.Autosave, false)
}

// Cancel disarms slot; its pending timer will be dropped when it fires.
func (s *Scheduler) Cancel(slot Slot) {
	s.gens[slot]++
	s.armed[slot] = false
	s.forced[slot] = false
}

func (s *Scheduler) Pending(slot Slot) bool { return s.armed[slot] }

// Firing is the outcome of a fired timer.
type Firing struct {
	Run    bool
	Forced bool
}

// Fire reports whether the timer (slot, gen) is still current. A current
// timer disarms its slot.
func (s *Scheduler) Fire(slot Slot, gen uint64) Firing {
	if slot >= slotCount || !s.armed[slot] || s.gens[slot] != gen {
		return Firing{}
	}
	f := Firing{Run: true, Forced: s.forced[slot]}
	s.armed[slot] = false
	s.forced[slot] = false
	return f
}

// Defer applies the minimum idle guard to an unforced syntax run. When the
// user typed less than the tier's MinIdle ago it re-arms the syntax slot for
// the remaining time and returns that timer.
func (s *Scheduler) Defer(idle time.Duration, chars int) (Timer, bool) {
	minIdle := s.DelaysFor(chars).MinIdle
	if idle >= minIdle {
		return Timer{}, false
	}
	return s.arm(Syntax, minIdle-idle, false), true
}
