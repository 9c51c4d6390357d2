package audio

import (
	"sync"
	"time"
)

// FrameQueue is the hand-off point between the capture device's delivery
// goroutine and the detection loop. Push never blocks and never drops: the
// queue grows without bound so a slow consumer costs memory, not frames.
// Pop blocks with a caller-supplied timeout so the consumer stays responsive
// to shutdown.
//
// The queue preserves push order. It is safe for concurrent use, though the
// engine only ever runs it single-producer/single-consumer.
type FrameQueue struct {
	mu     sync.Mutex
	frames []*Frame
	closed bool

	// notify carries at most one pending wakeup; Pop re-checks the queue
	// after every receive, so a coalesced signal is sufficient.
	notify chan struct{}
}

// NewFrameQueue creates an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{
		notify: make(chan struct{}, 1),
	}
}

// Push appends a frame to the queue and wakes a blocked Pop.
// Pushing to a closed queue discards the frame.
func (q *FrameQueue) Push(f *Frame) {
	if f == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.frames = append(q.frames, f)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest frame. If the queue is empty it waits
// up to timeout for one to arrive; on timeout or on a closed, drained queue
// it returns (nil, false). A timeout is not an error, just "no frame this
// cycle".
func (q *FrameQueue) Pop(timeout time.Duration) (*Frame, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.frames) > 0 {
			f := q.frames[0]
			q.frames[0] = nil
			q.frames = q.frames[1:]
			q.mu.Unlock()
			return f, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, false
		}

		select {
		case <-q.notify:
		case <-timer.C:
			return nil, false
		}
	}
}

// Len returns the number of queued frames.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Clear discards all queued frames.
func (q *FrameQueue) Clear() {
	q.mu.Lock()
	q.frames = nil
	q.mu.Unlock()
}

// Close marks the queue closed and wakes any blocked Pop. Frames already
// queued can still be drained; further pushes are discarded. Closing twice
// is a no-op.
func (q *FrameQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}
