package deque

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrDeque_Capacity(t *testing.T) {
	assert.Equal(t, 8, NewArrDeque[int](3).Capacity())
	assert.Equal(t, 16, NewArrDeque[int](16).Capacity())
	assert.Equal(t, 8, NewArrDeque[int](0).Capacity())
}

func TestArrDeque_AddRemove(t *testing.T) {
	d := NewArrDeque[int](8)
	assert.True(t, d.IsEmpty())
	d.AddLast(2)
	d.AddLast(3)
	d.AddFirst(1)
	d.AddFirst(0)
	assert.Equal(t, []int{0, 1, 2, 3}, d.Items())
	assert.Equal(t, 2, d.Get(2))

	v, ok := d.RemoveFirst()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	v, ok = d.RemoveLast()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{1, 2}, d.Items())

	d.Set(1, 20)
	assert.Equal(t, 20, d.Get(1))

	d.Clear()
	_, ok = d.RemoveLast()
	assert.False(t, ok)
	_, ok = d.RemoveFirst()
	assert.False(t, ok)
}

func TestArrDeque_EvictsWhenFull(t *testing.T) {
	d := NewArrDeque[int](8)
	for i := 0; i < 20; i++ {
		d.AddLast(i)
	}
	assert.True(t, d.IsFull())
	assert.Equal(t, []int{12, 13, 14, 15, 16, 17, 18, 19}, d.Items())

	d.AddFirst(-1)
	assert.Equal(t, 8, d.Size())
	assert.Equal(t, -1, d.Get(0))
	assert.Equal(t, 18, d.Get(7))
}

func TestArrDeque_GetOutOfRange(t *testing.T) {
	d := NewArrDeque[string](8)
	d.AddLast("a")
	assert.Panics(t, func() { d.Get(1) })
	assert.Panics(t, func() { d.Get(-1) })
}

func TestArrDeque_Traverse(t *testing.T) {
	d := NewArrDeque[int](8)
	for i := 0; i < 5; i++ {
		d.AddFirst(i)
	}
	sum := 0
	d.Traverse(func(i int, item int) {
		sum += item
		assert.Equal(t, 4-i, item)
	})
	assert.Equal(t, 10, sum)
}

func BenchmarkArrDeque_AddFirst(b *testing.B) {
	d := NewArrDeque[int](4000)
	for i := 0; i < b.N; i++ {
		d.AddFirst(1000)
		d.RemoveFirst()
	}
}

func BenchmarkArrDeque_RemoveLast(b *testing.B) {
	d := NewArrDeque[int](4000)
	for i := 0; i < b.N; i++ {
		d.AddLast(1000)
		d.RemoveLast()
	}
}
