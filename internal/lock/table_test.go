package lock

import (
	"testing"

	"github.com/esnya/ResoBotGW/internal/intent"
)

func TestTable_AcquireAndGet(t *testing.T) {
	tbl := NewTable()
	tbl.Acquire(intent.Speech, "dlg", intent.Reflex, 1050)

	l, ok := tbl.Get(intent.Speech)
	if !ok {
		t.Fatal("expected a lock on speech")
	}
	if l.Holder != "dlg" || l.Tier != intent.Reflex || l.UntilMs != 1050 {
		t.Errorf("Get(speech) = %+v", l)
	}
	if _, ok := tbl.Get(intent.Head); ok {
		t.Error("head should be unlocked")
	}
}

func TestTable_AcquireReplaces(t *testing.T) {
	tbl := NewTable()
	tbl.Acquire(intent.Speech, "plan", intent.Planner, 1500)
	tbl.Acquire(intent.Speech, "dlg", intent.Reflex, 1050)

	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	l, _ := tbl.Get(intent.Speech)
	if l.Holder != "dlg" {
		t.Errorf("holder = %q, want dlg", l.Holder)
	}
}

func TestTable_LiveBoundary(t *testing.T) {
	tbl := NewTable()
	tbl.Acquire(intent.Head, "gaze", intent.Reflex, 1001)

	if _, ok := tbl.Live(intent.Head, 1000); !ok {
		t.Error("lock should be live one millisecond before its expiry")
	}
	if _, ok := tbl.Live(intent.Head, 1001); ok {
		t.Error("lock must not be live at its expiry instant")
	}
}

func TestTable_Expire(t *testing.T) {
	tbl := NewTable()
	tbl.Acquire(intent.Sensors, "a", intent.Activity, 900)
	tbl.Acquire(intent.Speech, "b", intent.Activity, 1000)
	tbl.Acquire(intent.Head, "c", intent.Activity, 1001)

	expired := tbl.Expire(1000)
	if len(expired) != 2 {
		t.Fatalf("Expire() removed %d locks, want 2", len(expired))
	}
	// Canonical order: speech before sensors.
	if expired[0].Resource != intent.Speech || expired[1].Resource != intent.Sensors {
		t.Errorf("Expire() order = %v", expired)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() after expire = %d, want 1", tbl.Len())
	}
	if _, ok := tbl.Get(intent.Head); !ok {
		t.Error("head lock should survive")
	}
}

func TestTable_Release(t *testing.T) {
	tbl := NewTable()
	tbl.Acquire(intent.UI, "hud", intent.Safety, 2000)

	l, ok := tbl.Release(intent.UI)
	if !ok || l.Holder != "hud" {
		t.Errorf("Release(ui) = %+v, %v", l, ok)
	}
	if _, ok := tbl.Release(intent.UI); ok {
		t.Error("second Release should report no lock")
	}
}

func TestTable_HeldByAndSnapshot(t *testing.T) {
	tbl := NewTable()
	tbl.Acquire(intent.HandRight, "mani", intent.Activity, 2000)
	tbl.Acquire(intent.HandLeft, "mani", intent.Activity, 2000)
	tbl.Acquire(intent.Speech, "dlg", intent.Reflex, 1100)

	held := tbl.HeldBy("mani")
	if len(held) != 2 || held[0] != intent.HandLeft || held[1] != intent.HandRight {
		t.Errorf("HeldBy(mani) = %v", held)
	}
	if len(tbl.HeldBy("nobody")) != 0 {
		t.Error("HeldBy(nobody) should be empty")
	}

	snap := tbl.Snapshot()
	if len(snap) != 3 || snap[0].Resource != intent.Speech {
		t.Errorf("Snapshot() = %v", snap)
	}
	snap[0].Holder = "mutated"
	if l, _ := tbl.Get(intent.Speech); l.Holder != "dlg" {
		t.Error("Snapshot must not alias the table")
	}
}
