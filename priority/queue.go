package priority

import (
	"github.com/pkg/errors"
)

// ErrEmptyContainer is returned by Peek and Dequeue on a queue without entries.
var ErrEmptyContainer = errors.New("priority queue is empty")

// Comparator orders two entries. A negative result means a has a higher
// priority than b, a positive result means a has a lower priority than b and
// zero means both are equal. It must be a pure function.
type Comparator[T any] func(a, b T) int

// Queue is a binary heap ordered by a Comparator. The entry with the highest
// priority is always at the root. Queue is not safe for concurrent use.
type Queue[T any] struct {
	entries []T
	cmp     Comparator[T]
}

func NewQueue[T any](cmp Comparator[T]) *Queue[T] {
	return &Queue[T]{
		entries: make([]T, 0),
		cmp:     cmp,
	}
}

// Enqueue adds entry to the queue in O(log n).
func (q *Queue[T]) Enqueue(entry T) {
	q.entries = append(q.entries, entry)
	q.up(len(q.entries) - 1)
}

// Peek returns the entry with the highest priority without removing it.
func (q *Queue[T]) Peek() (T, error) {
	if len(q.entries) == 0 {
		var zero T
		return zero, ErrEmptyContainer
	}

	return q.entries[0], nil
}

// Dequeue removes and returns the entry with the highest priority in O(log n).
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T

	if len(q.entries) == 0 {
		return zero, ErrEmptyContainer
	}

	top := q.entries[0]
	last := len(q.entries) - 1

	q.entries[0] = q.entries[last]
	q.entries[last] = zero
	q.entries = q.entries[:last]

	if len(q.entries) > 0 {
		q.down(0)
	}

	return top, nil
}

// Filter keeps the entries for which keep returns true and drops the others.
// The heap is rebuilt afterwards, so the cost is O(n).
func (q *Queue[T]) Filter(keep func(T) bool) {
	var zero T

	n := 0
	for _, entry := range q.entries {
		if keep(entry) {
			q.entries[n] = entry
			n++
		}
	}

	for i := n; i < len(q.entries); i++ {
		q.entries[i] = zero
	}

	q.entries = q.entries[:n]

	for i := n/2 - 1; i >= 0; i-- {
		q.down(i)
	}
}

func (q *Queue[T]) Size() int {
	return len(q.entries)
}

// Entries returns a copy of the queue contents in heap order.
func (q *Queue[T]) Entries() []T {
	entries := make([]T, len(q.entries))
	copy(entries, q.entries)
	return entries
}

// higher reports whether the entry at i has a higher priority than the one at j.
func (q *Queue[T]) higher(i, j int) bool {
	return q.cmp(q.entries[i], q.entries[j]) < 0
}

func (q *Queue[T]) swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
}

func (q *Queue[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.higher(i, parent) {
			break
		}

		q.swap(i, parent)
		i = parent
	}
}

func (q *Queue[T]) down(i int) {
	n := len(q.entries)

	for {
		best := i
		left := 2*i + 1
		right := left + 1

		if left < n && q.higher(left, best) {
			best = left
		}
		if right < n && q.higher(right, best) {
			best = right
		}

		if best == i {
			return
		}

		q.swap(i, best)
		i = best
	}
}
