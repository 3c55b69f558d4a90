package board

import (
	"sync"
	"time"
)

// Scheduler runs fn on the UI goroutine before the next frame is shown.
type Scheduler interface {
	Schedule(fn func())
}

// FrameRequester coalesces redraw requests: while one frame is pending,
// further requests are dropped.
type FrameRequester struct {
	sched   Scheduler
	draw    func()
	pending bool
}

func NewFrameRequester(s Scheduler, draw func()) *FrameRequester {
	return &FrameRequester{sched: s, draw: draw}
}

// Request schedules a frame unless one is already pending.
func (f *FrameRequester) Request() {
	if f.pending {
		return
	}
	f.pending = true
	f.sched.Schedule(func() {
		f.pending = false
		f.draw()
	})
}

// Pending reports whether a frame is queued.
func (f *FrameRequester) Pending() bool { return f.pending }

// QueueScheduler collects scheduled work until Flush runs it. The desktop
// app flushes it once per display tick; tests and the CLI flush it by hand.
type QueueScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (q *QueueScheduler) Schedule(fn func()) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

// Flush runs everything queued so far and returns how many callbacks ran.
func (q *QueueScheduler) Flush() int {
	q.mu.Lock()
	work := q.queue
	q.queue = nil
	q.mu.Unlock()
	for _, fn := range work {
		fn()
	}
	return len(work)
}

// Len is the number of queued callbacks.
func (q *QueueScheduler) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// FPSCounter counts frames per wall-clock second.
type FPSCounter struct {
	frames int
	last   time.Time
	fps    int
}

// Tick records a frame at now and reports the rate once a second has passed.
func (c *FPSCounter) Tick(now time.Time) (int, bool) {
	c.frames++
	if c.last.IsZero() {
		c.last = now
		return c.fps, false
	}
	if now.Sub(c.last) < time.Second {
		return c.fps, false
	}
	c.fps = c.frames
	c.frames = 0
	c.last = now
	return c.fps, true
}

// FPS is the last measured rate.
func (c *FPSCounter) FPS() int { return c.fps }
