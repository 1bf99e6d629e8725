package main

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerNeverOverlapsRuns(t *testing.T) {
	t.Parallel()

	var active, maxActive, calls int32
	d := newDebouncer(time.Millisecond, func() {
		now := atomic.AddInt32(&active, 1)
		for {
			prev := atomic.LoadInt32(&maxActive)
			if now <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, now) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&calls, 1)
		atomic.AddInt32(&active, -1)
	})

	for i := 0; i < 5; i++ {
		d.trigger()
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	d.stop()

	if got := atomic.LoadInt32(&maxActive); got != 1 {
		t.Fatalf("expected runs to be serialised, saw %d at once", got)
	}
	if got := atomic.LoadInt32(&calls); got < 2 {
		t.Fatalf("expected spaced triggers to fire more than once, got %d", got)
	}
	if got := atomic.LoadInt32(&active); got != 0 {
		t.Fatalf("stop must wait for the running call, %d still active", got)
	}
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	t.Parallel()

	var calls int32
	d := newDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	for i := 0; i < 10; i++ {
		d.trigger()
	}
	time.Sleep(100 * time.Millisecond)
	d.stop()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one call for a burst, got %d", got)
	}
}
