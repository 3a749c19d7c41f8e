package lookup

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_TrailingDebounce(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	var got atomic.Value

	// Three rapid keystrokes: only the last should fire.
	d.Trigger("1", func(in string) { fired.Add(1); got.Store(in) })
	d.Trigger("12", func(in string) { fired.Add(1); got.Store(in) })
	d.Trigger("123", func(in string) { fired.Add(1); got.Store(in) })

	time.Sleep(100 * time.Millisecond)

	if fired.Load() != 1 {
		t.Fatalf("expected exactly 1 firing, got %d", fired.Load())
	}
	if got.Load() != "123" {
		t.Errorf("expected the latest input to fire, got %v", got.Load())
	}
}

func TestDebouncer_EachSettleFires(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	d.Trigger("a", func(string) { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	d.Trigger("b", func(string) { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)

	if fired.Load() != 2 {
		t.Errorf("expected 2 firings for 2 settled inputs, got %d", fired.Load())
	}
}

func TestDebouncer_StaleGuard(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	d.Trigger("abc", func(string) {})
	if d.Stale("abc") {
		t.Errorf("latest input should not be stale")
	}
	if !d.Stale("ab") {
		t.Errorf("superseded input should be stale")
	}

	d.Trigger("abcd", func(string) {})
	if !d.Stale("abc") {
		t.Errorf("previous input should become stale after a new trigger")
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger("x", func(string) { fired.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("expected no firing after Stop, got %d", fired.Load())
	}

	// Triggers after Stop are ignored.
	d.Trigger("y", func(string) { fired.Add(1) })
	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("expected trigger after Stop to be ignored, got %d", fired.Load())
	}
}
