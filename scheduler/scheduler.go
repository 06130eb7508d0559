// Package scheduler implements the cycle-ordered event queue devices use to
// schedule work relative to CPU timing. Single-threaded and cooperative:
// events fire from the same execution context as the CPU, between
// instructions, and may themselves schedule further events.
package scheduler

import "container/heap"

// Callback is invoked when a scheduled event's deadline is reached.
type Callback func()

// Token cancels a scheduled event. The zero Token is never valid.
type Token uint64

type event struct {
	deadline uint64
	seq      uint64 // insertion order, breaks deadline ties (FIFO)
	token    Token
	callback Callback
	canceled bool
	index    int
}

// eventHeap implements container/heap.Interface ordered by (deadline, seq).
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *eventHeap) Push(x any) {
	e := x.(*event)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler is a min-heap of cycle-stamped events.
type Scheduler struct {
	heap    eventHeap
	byToken map[Token]*event
	nextSeq uint64
	nextTok Token
	now     uint64
}

// New constructs an empty scheduler.
func New() *Scheduler {
	return &Scheduler{byToken: make(map[Token]*event)}
}

// ScheduleAt schedules callback to fire when the scheduler's cycle reaches
// or passes deadline. Returns a token that can be used to cancel it.
func (s *Scheduler) ScheduleAt(deadline uint64, callback Callback) Token {
	s.nextTok++
	s.nextSeq++
	e := &event{deadline: deadline, seq: s.nextSeq, token: s.nextTok, callback: callback}
	s.byToken[e.token] = e
	heap.Push(&s.heap, e)
	return e.token
}

// Cancel cancels a previously scheduled event. Canceling an already-fired or
// unknown token is a no-op.
func (s *Scheduler) Cancel(token Token) {
	e, ok := s.byToken[token]
	if !ok {
		return
	}
	e.canceled = true
	delete(s.byToken, token)
}

// PeekNextDue returns the deadline of the next pending (non-canceled)
// event, and whether one exists.
func (s *Scheduler) PeekNextDue() (uint64, bool) {
	for len(s.heap) > 0 {
		top := s.heap[0]
		if top.canceled {
			heap.Pop(&s.heap)
			continue
		}
		return top.deadline, true
	}
	return 0, false
}

// Now returns the scheduler's current cycle, last set by AdvanceTo.
func (s *Scheduler) Now() uint64 { return s.now }

// AdvanceTo fires every pending event whose deadline is <= cycle, in
// deadline then insertion order, and advances the scheduler's clock to
// cycle. Callbacks may schedule further events: one whose deadline is
// <= cycle fires within this same call, later ones wait for a later
// AdvanceTo call.
func (s *Scheduler) AdvanceTo(cycle uint64) {
	s.now = cycle
	for len(s.heap) > 0 {
		top := s.heap[0]
		if top.canceled {
			heap.Pop(&s.heap)
			continue
		}
		if top.deadline > cycle {
			break
		}
		heap.Pop(&s.heap)
		delete(s.byToken, top.token)
		top.callback()
	}
}

// Pending returns the number of non-canceled events awaiting their
// deadline.
func (s *Scheduler) Pending() int {
	n := 0
	for _, e := range s.heap {
		if !e.canceled {
			n++
		}
	}
	return n
}
