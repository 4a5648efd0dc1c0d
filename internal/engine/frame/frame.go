// Package frame provides cooperative next-frame scheduling.
//
// A Queue plays the role of the platform's animation-frame callback list:
// callbacks are requested with RequestFrame and run when the owning context
// calls Run, once per iteration of its main loop. Callbacks requested while
// Run is executing are deferred to the following Run.
package frame

// Handle identifies a pending frame callback. The zero Handle means absent.
type Handle uint64

// Scheduler schedules a callback for the next frame.
type Scheduler interface {
	RequestFrame(fn func()) Handle
	CancelFrame(h Handle)
}

type pending struct {
	handle Handle
	fn     func()
}

// Queue is a manually pumped Scheduler. It is not safe for concurrent use;
// it belongs to exactly one execution context.
type Queue struct {
	next    Handle
	pending []pending
}

// NewQueue creates an empty frame queue.
func NewQueue() *Queue {
	return &Queue{}
}

// RequestFrame queues fn for the next Run and returns its handle.
func (q *Queue) RequestFrame(fn func()) Handle {
	q.next++
	q.pending = append(q.pending, pending{handle: q.next, fn: fn})
	return q.next
}

// CancelFrame removes the callback with the given handle.
// Unknown or zero handles are ignored.
func (q *Queue) CancelFrame(h Handle) {
	if h == 0 {
		return
	}
	for i, p := range q.pending {
		if p.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the number of outstanding callbacks.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Run executes every callback queued before the call and returns how many ran.
func (q *Queue) Run() int {
	if len(q.pending) == 0 {
		return 0
	}
	batch := q.pending
	q.pending = nil
	for _, p := range batch {
		p.fn()
	}
	return len(batch)
}
