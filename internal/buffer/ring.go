package buffer

import (
	"sync"

	"go.uber.org/zap"
)

// Ring is a thread-safe circular buffer that keeps the most recent items.
// When full, each Add overwrites the oldest entry.
type Ring[T any] struct {
	mu       sync.RWMutex
	data     []T
	capacity int
	size     int
	head     int
	wrapped  bool
	logger   *zap.Logger
}

// New creates a ring holding at most capacity items
func New[T any](capacity int, logger *zap.Logger) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		data:     make([]T, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Add appends item, evicting the oldest when full
func (r *Ring[T]) Add(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == r.capacity && !r.wrapped {
		r.wrapped = true
		r.logger.Debug("history full, oldest entries are now overwritten",
			zap.Int("capacity", r.capacity))
	}

	r.data[r.head] = item
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Snapshot returns a copy of the contents, oldest first, without clearing
func (r *Ring[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered()
}

// Drain returns the contents oldest first and empties the ring
func (r *Ring[T]) Drain() []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.ordered()
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.size = 0
	r.head = 0
	return items
}

// Latest returns the newest item
func (r *Ring[T]) Latest() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.data[(r.head-1+r.capacity)%r.capacity], true
}

// Stats returns the current size and capacity
func (r *Ring[T]) Stats() (size, capacity int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size, r.capacity
}

func (r *Ring[T]) ordered() []T {
	if r.size == 0 {
		return nil
	}

	items := make([]T, r.size)
	start := (r.head - r.size + r.capacity) % r.capacity
	for i := 0; i < r.size; i++ {
		items[i] = r.data[(start+i)%r.capacity]
	}
	return items
}
