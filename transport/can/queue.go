package can

import "github.com/samsamfire/gocyphal/clock"

// txFrame is one frame waiting to leave the transmit queue, with the deadline after which it
// is dropped silently rather than sent (spec section 4.4).
type txFrame struct {
	frame    Frame
	deadline clock.Instant
}

// Queue orders outgoing frames by CAN identifier ascending, which implements
// priority-then-FIFO by construction: a lower identifier always wins CAN bus arbitration, and
// the Cyphal id layout puts priority in the top bits, so sorting by id sorts by priority first
// and (for equal priority/kind/port) naturally preserves submission order because the
// transfer id — submitted in increasing order — does not affect arbitration but insertion
// order into the queue does, since this implementation is a stable insertion sort keyed only
// on identifier (spec section 4.4/8: "frames leave the queue in priority then FIFO order").
type Queue struct {
	items []txFrame
}

// NewQueue returns an empty transmit queue.
func NewQueue() *Queue { return &Queue{} }

// Push inserts a frame, keeping the queue sorted by identifier ascending with ties broken by
// insertion order (a stable insert: scan from the back, which is where equal or higher ids
// cluster for a queue fed mostly in priority order already).
func (q *Queue) Push(frame Frame, deadline clock.Instant) {
	item := txFrame{frame: frame, deadline: deadline}
	i := len(q.items)
	for i > 0 && q.items[i-1].frame.ID > frame.ID {
		i--
	}
	q.items = append(q.items, txFrame{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = item
}

// Len reports the number of queued frames.
func (q *Queue) Len() int { return len(q.items) }

// Peek returns the head frame without removing it.
func (q *Queue) Peek() (Frame, clock.Instant, bool) {
	if len(q.items) == 0 {
		return Frame{}, clock.Instant{}, false
	}
	return q.items[0].frame, q.items[0].deadline, true
}

// Pop removes and returns the head frame.
func (q *Queue) Pop() (Frame, clock.Instant, bool) {
	f, d, ok := q.Peek()
	if ok {
		q.items = q.items[1:]
	}
	return f, d, ok
}
