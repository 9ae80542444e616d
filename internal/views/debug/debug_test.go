package debug

import (
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Millisecond)
		return at
	}
}

func filled(n int) Model {
	m := New()
	m.now = fixedClock()
	for i := 0; i < n; i++ {
		m.Addf(KindSend, "move %d", i)
	}
	return m
}

func TestAddEntry(t *testing.T) {
	m := New()
	m.Add(KindSession, "connecting")
	entries := m.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Kind != KindSession || entries[0].Repeat != 1 {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestRepeatsCollapse(t *testing.T) {
	m := New()
	m.now = fixedClock()
	m.Add(KindSend, "click left")
	m.Add(KindSend, "click left")
	m.Add(KindSend, "click left")
	m.Add(KindSend, "click right")
	m.Add(KindSend, "click left")

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Repeat != 3 || entries[1].Repeat != 1 || entries[2].Repeat != 1 {
		t.Errorf("repeats = %d %d %d", entries[0].Repeat, entries[1].Repeat, entries[2].Repeat)
	}
	if !strings.Contains(m.View(80, 20), "×3") {
		t.Error("view should show the repeat count")
	}
}

func TestCapacity(t *testing.T) {
	m := filled(capacity + 50)
	entries := m.Entries()
	if len(entries) != capacity {
		t.Fatalf("expected %d entries, got %d", capacity, len(entries))
	}
	if entries[0].Text != "move 50" {
		t.Errorf("oldest entry = %q, want move 50", entries[0].Text)
	}
}

func TestScrollUpDown(t *testing.T) {
	m := filled(20)
	if m.Hidden() != 0 {
		t.Fatal("expected no hidden entries after adds")
	}

	m.ScrollUp(5)
	if m.Hidden() != 5 {
		t.Errorf("expected 5 hidden, got %d", m.Hidden())
	}
	m.ScrollDown(3)
	if m.Hidden() != 2 {
		t.Errorf("expected 2 hidden, got %d", m.Hidden())
	}
	m.ScrollDown(10)
	if m.Hidden() != 0 {
		t.Errorf("expected 0 hidden, got %d", m.Hidden())
	}

	m.ScrollUp(100)
	if m.Hidden() != 19 {
		t.Errorf("expected scroll capped at 19, got %d", m.Hidden())
	}
}

func TestScrollOnEmptyLog(t *testing.T) {
	m := New()
	m.ScrollUp(3)
	if m.Hidden() != 0 {
		t.Errorf("expected 0 hidden on an empty log, got %d", m.Hidden())
	}
	if got := m.window(5); len(got) != 0 {
		t.Errorf("window = %v, want empty", got)
	}
}

func TestWindow(t *testing.T) {
	m := filled(10)
	got := m.window(3)
	if len(got) != 3 || got[0].Text != "move 7" || got[2].Text != "move 9" {
		t.Fatalf("window = %+v", got)
	}

	m.ScrollUp(8)
	got = m.window(3)
	if len(got) != 2 || got[0].Text != "move 0" || got[1].Text != "move 1" {
		t.Fatalf("scrolled window = %+v", got)
	}
}

func TestViewEmpty(t *testing.T) {
	var m Model
	if v := m.View(80, 20); !strings.Contains(v, "No events") {
		t.Error("empty view should show 'No events' message")
	}
}

func TestViewWithEntries(t *testing.T) {
	m := New()
	m.Add(KindSession, "connected(192.168.1.5)")
	m.Addf(KindError, "dial %s: %s", "192.168.1.9:8080", "i/o timeout")
	v := m.View(80, 20)
	if !strings.Contains(v, "connected(192.168.1.5)") {
		t.Error("view should contain the session entry")
	}
	if !strings.Contains(v, "dial 192.168.1.9:8080: i/o timeout") {
		t.Error("view should contain the formatted error entry")
	}
}

func TestViewShowsNewerCount(t *testing.T) {
	m := filled(10)
	m.ScrollUp(4)
	if v := m.View(80, 20); !strings.Contains(v, "4 newer") {
		t.Error("scrolled view should say how many newer entries are hidden")
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := filled(10)
	m.ScrollUp(5)
	m.Add(KindGyro, "on")
	if m.Hidden() != 0 {
		t.Error("adding an entry should scroll back to the newest")
	}
}
