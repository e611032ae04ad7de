package terrain

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFrameQueueCancel(t *testing.T) {
	q := &FrameQueue{}
	ran := 0
	h1 := q.ScheduleNext(func() { ran++ })
	q.ScheduleNext(func() { ran += 10 })

	q.Cancel(h1)
	q.Cancel(FrameHandle(999))

	if n := q.Fire(); n != 1 || ran != 10 {
		t.Errorf("Fire ran %d callbacks, ran=%d; want 1 and 10", n, ran)
	}
}

func TestFrameQueueDefersRescheduled(t *testing.T) {
	q := &FrameQueue{}
	count := 0
	var tick func()
	tick = func() {
		count++
		q.ScheduleNext(tick)
	}
	q.ScheduleNext(tick)

	q.Fire()
	q.Fire()
	if count != 2 || q.Pending() != 1 {
		t.Errorf("count=%d pending=%d, want 2 and 1", count, q.Pending())
	}
}

func TestTickerLoopRunsOnOneGoroutine(t *testing.T) {
	loop := NewTickerLoop(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	// Unsynchronised counter: the race detector flags it if callbacks and
	// posted tasks ever run concurrently.
	counter := 0
	steps := make(chan int, 1)
	var step func()
	step = func() {
		counter++
		if counter == 5 {
			steps <- counter
			return
		}
		loop.ScheduleNext(step)
	}
	loop.ScheduleNext(step)

	posted := make(chan struct{})
	if !loop.Post(func() { counter += 0; close(posted) }) {
		t.Fatal("Post refused while running")
	}

	select {
	case n := <-steps:
		if n != 5 {
			t.Errorf("counter = %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not tick")
	}
	<-posted

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
	if loop.Post(func() {}) {
		t.Error("Post accepted after the loop stopped")
	}
}

func TestTickerLoopCancel(t *testing.T) {
	loop := NewTickerLoop(time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	ran := false
	h := loop.ScheduleNext(func() { ran = true })
	loop.Cancel(h)

	_ = loop.Run(ctx)
	if ran {
		t.Error("cancelled callback ran")
	}
}

func TestFPSInterval(t *testing.T) {
	if got := FPSInterval(30); got != time.Second/30 {
		t.Errorf("FPSInterval(30) = %v", got)
	}
	if got := FPSInterval(0); got != time.Second/60 {
		t.Errorf("FPSInterval(0) = %v", got)
	}
}
