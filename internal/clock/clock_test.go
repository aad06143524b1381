package clock

import (
	"testing"
	"time"
)

func TestTest_FastForward(t *testing.T) {
	start := time.Date(2023, time.May, 4, 10, 0, 0, 0, time.UTC)
	c := NewTestAt(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("now=%v, want %v", got, start)
	}
	got := c.FastForward(1500 * time.Millisecond)
	if want := start.Add(1500 * time.Millisecond); !got.Equal(want) || !c.Now().Equal(want) {
		t.Fatalf("now=%v, want %v", got, want)
	}
}

func TestOrSystem(t *testing.T) {
	if _, ok := OrSystem(nil).(System); !ok {
		t.Fatalf("OrSystem(nil) must fall back to System")
	}
	c := NewTest()
	if OrSystem(c) != Clock(c) {
		t.Fatalf("OrSystem must keep a non-nil clock")
	}
}
