// Package priority implements a generic priority queue backed by a binary heap
// stored in a slice. The parent of the entry at index i lives at (i-1)/2.
//
// Ordering is supplied by the caller as a three-way Comparator: a negative
// result means the left argument has the higher priority, a positive result
// means it has the lower priority. A min-heap over ints is therefore:
//
//	q := priority.NewQueue(func(a, b int) int {
//	    return a - b
//	})
//
//	q.Enqueue(5)
//	q.Enqueue(1)
//
//	top, err := q.Dequeue() // 1, nil
//
// Peek and Dequeue return ErrEmptyContainer when the queue holds no entries.
// Filter removes arbitrary entries and rebuilds the heap in linear time.
//
// A Queue does no locking. Confine it to one goroutine or guard it with a
// mutex owned by the caller.
package priority
