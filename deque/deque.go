// Package deque provides a bounded double ended queue backed by one array.
// The server keeps the most recent simulation frames in it.
package deque

type Deque[T any] interface {
	// number of elements
	Size() int

	// element at index i, counted from the front
	Get(i int) T

	// replace element i
	Set(i int, v T)

	// front to back
	Traverse(f func(i int, item T))

	AddLast(v T)

	RemoveLast() (T, bool)

	AddFirst(v T)

	RemoveFirst() (T, bool)

	IsFull() bool

	IsEmpty() bool
}
