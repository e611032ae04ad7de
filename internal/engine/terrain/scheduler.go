package terrain

import (
	"context"
	"sync"
	"time"
)

// FrameHandle identifies a scheduled step so it can be cancelled.
type FrameHandle uint64

// Scheduler runs a callback at the next display refresh.
type Scheduler interface {
	ScheduleNext(cb func()) FrameHandle
	Cancel(h FrameHandle)
}

type scheduled struct {
	handle FrameHandle
	cb     func()
}

// FrameQueue is a scheduler driven by explicit Fire calls, one per
// refresh. The window host fires it after every buffer swap and tests
// fire it by hand.
type FrameQueue struct {
	next    FrameHandle
	pending []scheduled
}

// ScheduleNext queues cb for the next Fire.
func (q *FrameQueue) ScheduleNext(cb func()) FrameHandle {
	q.next++
	q.pending = append(q.pending, scheduled{handle: q.next, cb: cb})
	return q.next
}

// Cancel drops a queued callback. Unknown handles are ignored.
func (q *FrameQueue) Cancel(h FrameHandle) {
	q.pending = removeHandle(q.pending, h)
}

// Fire runs the callbacks that were pending when it was called. Callbacks
// they schedule wait for the following Fire. It returns how many ran.
func (q *FrameQueue) Fire() int {
	batch := q.pending
	q.pending = nil
	for _, s := range batch {
		s.cb()
	}
	return len(batch)
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// TickerLoop is a real-time scheduler. Scheduled callbacks run on each tick
// and posted tasks run as they arrive, all on the goroutine that called Run,
// so state touched only from callbacks and tasks needs no locking.
type TickerLoop struct {
	interval time.Duration

	mu      sync.Mutex
	next    FrameHandle
	pending []scheduled

	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewTickerLoop creates a loop that ticks every interval.
func NewTickerLoop(interval time.Duration) *TickerLoop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerLoop{
		interval: interval,
		tasks:    make(chan func(), 16),
		done:     make(chan struct{}),
	}
}

// FPSInterval converts a frame rate to a tick interval.
func FPSInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// ScheduleNext queues cb for the next tick.
func (l *TickerLoop) ScheduleNext(cb func()) FrameHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.pending = append(l.pending, scheduled{handle: l.next, cb: cb})
	return l.next
}

// Cancel drops a queued callback.
func (l *TickerLoop) Cancel(h FrameHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = removeHandle(l.pending, h)
}

// Post runs fn on the loop goroutine. It returns false once the loop has
// stopped.
func (l *TickerLoop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run processes ticks and tasks until ctx is cancelled.
func (l *TickerLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.mu.Lock()
			batch := l.pending
			l.pending = nil
			l.mu.Unlock()
			for _, s := range batch {
				s.cb()
			}
		}
	}
}

func removeHandle(list []scheduled, h FrameHandle) []scheduled {
	for i, s := range list {
		if s.handle == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
