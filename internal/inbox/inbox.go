// Package inbox implements the bounded, FIFO, single-consumer message queue
// that is the sole entry point into a core kernel agent. It is the smallest
// component in the system: one mutex, one condition variable, and a slice of
// pending messages, in the same spirit as internal/ratelimit's single
// mutex-guarded counter in the teacher codebase.
package inbox

import (
	"sync"
	"time"

	"github.com/ssd-technologies/multikernel/internal/message"
)

// PushResult is the outcome of a Push call.
type PushResult int

const (
	Accepted PushResult = iota
	RejectedFull
)

func (r PushResult) String() string {
	if r == Accepted {
		return "Accepted"
	}
	return "Rejected(Full)"
}

// Inbox is a bounded FIFO queue with blocking and non-blocking receive.
// Senders never block: Push either accepts the message or reports the queue
// full. Exactly one goroutine should call the Pop* methods at a time — the
// owning Agent's worker — though Push, Len and Capacity are safe to call
// from anywhere.
type Inbox struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	queue    []message.Message
	running  bool
}

// New creates an Inbox with the given capacity. A zero or negative capacity
// is replaced with 1 so the queue can never silently accept everything.
func New(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = 1
	}
	ib := &Inbox{
		capacity: capacity,
		running:  true,
	}
	ib.cond = sync.NewCond(&ib.mu)
	return ib
}

// Push enqueues msg, returning Accepted or RejectedFull. It never blocks.
func (ib *Inbox) Push(msg message.Message) PushResult {
	ib.mu.Lock()
	if len(ib.queue) >= ib.capacity {
		ib.mu.Unlock()
		return RejectedFull
	}
	ib.queue = append(ib.queue, msg)
	ib.mu.Unlock()
	ib.cond.Signal()
	return Accepted
}

// PopBlocking waits up to timeout for a message, returning it and true, or
// the zero Message and false on timeout or if the inbox has been told to
// stop running. timeout <= 0 behaves as PopNonblocking.
func (ib *Inbox) PopBlocking(timeout time.Duration) (message.Message, bool) {
	if timeout <= 0 {
		return ib.PopNonblocking()
	}

	deadline := time.Now().Add(timeout)

	// sync.Cond has no timed wait, so a helper goroutine turns the deadline
	// into a broadcast; this mirrors the wake-on-timeout shape the teacher's
	// transport read loop achieves with a channel select instead.
	done := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		ib.mu.Lock()
		ib.cond.Broadcast()
		ib.mu.Unlock()
		close(done)
	})
	defer timer.Stop()

	ib.mu.Lock()
	defer ib.mu.Unlock()
	for len(ib.queue) == 0 && ib.running {
		if time.Now().After(deadline) {
			return message.Message{}, false
		}
		ib.cond.Wait()
	}
	if !ib.running && len(ib.queue) == 0 {
		return message.Message{}, false
	}
	if len(ib.queue) == 0 {
		return message.Message{}, false
	}
	msg := ib.queue[0]
	ib.queue = ib.queue[1:]
	return msg, true
}

// PopNonblocking returns the head message if one is available without
// waiting. This is the form the worker loop uses to drain the inbox each
// cycle.
func (ib *Inbox) PopNonblocking() (message.Message, bool) {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	if len(ib.queue) == 0 {
		return message.Message{}, false
	}
	msg := ib.queue[0]
	ib.queue = ib.queue[1:]
	return msg, true
}

// WakeAll releases any goroutine blocked in PopBlocking, used at shutdown so
// a worker parked on an empty inbox notices running has been cleared.
func (ib *Inbox) WakeAll() {
	ib.mu.Lock()
	ib.running = false
	ib.mu.Unlock()
	ib.cond.Broadcast()
}

// Reopen marks the inbox running again after WakeAll, so the same Inbox can
// be reused across start/stop cycles. Nothing in this repository calls it.
func (ib *Inbox) Reopen() {
	ib.mu.Lock()
	ib.running = true
	ib.mu.Unlock()
}

// Len reports current occupancy.
func (ib *Inbox) Len() int {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return len(ib.queue)
}

// Capacity reports MESSAGE_QUEUE_SIZE for this inbox.
func (ib *Inbox) Capacity() int {
	return ib.capacity
}
