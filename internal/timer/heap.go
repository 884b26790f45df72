package timer

import (
	"container/heap"
	"time"
)

// Deadline is a named point in time the scheduler loop must act on
type Deadline struct {
	ID    string
	At    time.Time
	seq   uint64
	index int // index in the heap (for heap.Interface)
}

// deadlineHeap is a min-heap of deadlines ordered by At, then by insertion order
type deadlineHeap []*Deadline

func (h deadlineHeap) Len() int { return len(h) }

func (h deadlineHeap) Less(i, j int) bool {
	if h[i].At.Equal(h[j].At) {
		return h[i].seq < h[j].seq
	}
	return h[i].At.Before(h[j].At)
}

func (h deadlineHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *deadlineHeap) Push(x interface{}) {
	d := x.(*Deadline)
	d.index = len(*h)
	*h = append(*h, d)
}

func (h *deadlineHeap) Pop() interface{} {
	old := *h
	n := len(old)
	d := old[n-1]
	old[n-1] = nil
	d.index = -1
	*h = old[0 : n-1]
	return d
}

// Queue is a cooperative deadline queue. It owns no goroutines and is not
// safe for concurrent use; the scheduler loop polls it once per pass.
type Queue struct {
	heap    deadlineHeap
	byID    map[string]*Deadline
	nextSeq uint64
}

// NewQueue creates an empty deadline queue
func NewQueue() *Queue {
	q := &Queue{
		heap: make(deadlineHeap, 0),
		byID: make(map[string]*Deadline),
	}
	heap.Init(&q.heap)
	return q
}

// Schedule sets the deadline for id, replacing any existing one
func (q *Queue) Schedule(id string, at time.Time) {
	if existing, ok := q.byID[id]; ok {
		existing.At = at
		existing.seq = q.nextSeq
		q.nextSeq++
		heap.Fix(&q.heap, existing.index)
		return
	}

	d := &Deadline{ID: id, At: at, seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.heap, d)
	q.byID[id] = d
}

// Cancel removes a pending deadline
func (q *Queue) Cancel(id string) bool {
	d, ok := q.byID[id]
	if !ok {
		return false
	}

	heap.Remove(&q.heap, d.index)
	delete(q.byID, id)
	return true
}

// Pending reports whether id has a deadline scheduled
func (q *Queue) Pending(id string) bool {
	_, ok := q.byID[id]
	return ok
}

// Due pops every deadline at or before now, earliest first
func (q *Queue) Due(now time.Time) []string {
	var ids []string
	for q.heap.Len() > 0 && !q.heap[0].At.After(now) {
		d := heap.Pop(&q.heap).(*Deadline)
		delete(q.byID, d.ID)
		ids = append(ids, d.ID)
	}
	return ids
}

// Next returns the earliest pending deadline
func (q *Queue) Next() (time.Time, bool) {
	if q.heap.Len() == 0 {
		return time.Time{}, false
	}
	return q.heap[0].At, true
}

// Stats returns statistics about the queue
func (q *Queue) Stats() QueueStats {
	stats := QueueStats{Scheduled: len(q.byID)}
	if next, ok := q.Next(); ok {
		stats.NextAt = next
	}
	return stats
}

// QueueStats contains statistics about the deadline queue
type QueueStats struct {
	Scheduled int
	NextAt    time.Time
}
