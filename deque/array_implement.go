package deque

// capacity granularity
const base = 8

// ArrDeque is a ring buffer with a fixed capacity.
// Adding to a full deque evicts the element at the opposite end.
type ArrDeque[T any] struct {
	arr      []T
	start    int
	size     int
	capacity int
}

// NewArrDeque rounds the capacity up to a multiple of base.
func NewArrDeque[T any](capacity int) *ArrDeque[T] {
	if capacity < 1 {
		capacity = 1
	}
	if r := capacity % base; r != 0 {
		capacity = capacity - r + base
	}
	return &ArrDeque[T]{
		arr:      make([]T, capacity),
		capacity: capacity,
	}
}

func (ad *ArrDeque[T]) Size() int { return ad.size }

func (ad *ArrDeque[T]) Capacity() int { return ad.capacity }

func (ad *ArrDeque[T]) IsFull() bool { return ad.size == ad.capacity }

func (ad *ArrDeque[T]) IsEmpty() bool { return ad.size == 0 }

func (ad *ArrDeque[T]) index(i int) int {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return (ad.start + i) % ad.capacity
}

func (ad *ArrDeque[T]) Get(i int) T {
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque[T]) Set(i int, v T) {
	ad.arr[ad.index(i)] = v
}

func (ad *ArrDeque[T]) Traverse(f func(i int, item T)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[(ad.start+i)%ad.capacity])
	}
}

// Items copies the elements front to back.
func (ad *ArrDeque[T]) Items() []T {
	items := make([]T, 0, ad.size)
	ad.Traverse(func(_ int, item T) {
		items = append(items, item)
	})
	return items
}

func (ad *ArrDeque[T]) AddLast(v T) {
	if ad.IsFull() {
		ad.RemoveFirst()
	}
	ad.arr[(ad.start+ad.size)%ad.capacity] = v
	ad.size++
}

func (ad *ArrDeque[T]) AddFirst(v T) {
	if ad.IsFull() {
		ad.RemoveLast()
	}
	ad.start = (ad.start - 1 + ad.capacity) % ad.capacity
	ad.arr[ad.start] = v
	ad.size++
}

func (ad *ArrDeque[T]) RemoveFirst() (T, bool) {
	var zero T
	if ad.IsEmpty() {
		return zero, false
	}
	v := ad.arr[ad.start]
	ad.arr[ad.start] = zero
	ad.start = (ad.start + 1) % ad.capacity
	ad.size--
	return v, true
}

func (ad *ArrDeque[T]) RemoveLast() (T, bool) {
	var zero T
	if ad.IsEmpty() {
		return zero, false
	}
	last := (ad.start + ad.size - 1) % ad.capacity
	v := ad.arr[last]
	ad.arr[last] = zero
	ad.size--
	return v, true
}

// Clear empties the deque without releasing its storage.
func (ad *ArrDeque[T]) Clear() {
	var zero T
	for i := range ad.arr {
		ad.arr[i] = zero
	}
	ad.start, ad.size = 0, 0
}

var _ Deque[int] = (*ArrDeque[int])(nil)
