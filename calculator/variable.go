package calculator

import (
	"fmt"
	"math"
	"sort"
)

// ProcessedVariable is a solution variable on a tensor grid. Axes[0] holds
// the times, the following axes the spatial coordinates (x, then r).
// Data is stored in row-major order over the axes.
type ProcessedVariable struct {
	Name string
	Axes [][]float64
	Data []float64
}

// Dims is the number of spatial dimensions.
func (v *ProcessedVariable) Dims() int {
	return len(v.Axes) - 1
}

func (v *ProcessedVariable) Shape() []int {
	shape := make([]int, len(v.Axes))
	for i, a := range v.Axes {
		shape[i] = len(a)
	}
	return shape
}

// Evaluate interpolates the variable at every combination of the given
// times and coordinates. Queries outside the grid are clamped to its edges.
// The result is ordered like Data: times outermost.
func (v *ProcessedVariable) Evaluate(t []float64, coords ...[]float64) ([]float64, error) {
	if len(coords) != v.Dims() {
		return nil, fmt.Errorf("%w: %s has %d spatial dimensions, got %d", ErrDimensionMismatch, v.Name, v.Dims(), len(coords))
	}
	queries := append([][]float64{t}, coords...)
	ndim := len(queries)

	lo := make([][]int, ndim)
	w := make([][]float64, ndim)
	size := 1
	for d, q := range queries {
		lo[d] = make([]int, len(q))
		w[d] = make([]float64, len(q))
		for i, val := range q {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return nil, fmt.Errorf("%w: %s axis %d value %g", ErrInvalidQuery, v.Name, d, val)
			}
			lo[d][i], w[d][i] = bracket(v.Axes[d], val)
		}
		size *= len(q)
	}

	strides := make([]int, ndim)
	stride := 1
	for d := ndim - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= len(v.Axes[d])
	}

	out := make([]float64, size)
	idx := make([]int, ndim)
	for p := range out {
		rem := p
		for d := ndim - 1; d >= 0; d-- {
			idx[d] = rem % len(queries[d])
			rem /= len(queries[d])
		}
		sum := 0.0
		for corner := 0; corner < 1<<ndim; corner++ {
			weight := 1.0
			flat := 0
			for d := 0; d < ndim; d++ {
				i, wd := lo[d][idx[d]], w[d][idx[d]]
				if corner&(1<<d) != 0 {
					if wd == 0 {
						weight = 0
						break
					}
					weight *= wd
					i++
				} else {
					weight *= 1 - wd
				}
				flat += i * strides[d]
			}
			if weight != 0 {
				sum += weight * v.Data[flat]
			}
		}
		out[p] = sum
	}
	return out, nil
}

// At evaluates the variable at a single point.
func (v *ProcessedVariable) At(t float64, coords ...float64) (float64, error) {
	cs := make([][]float64, len(coords))
	for i, c := range coords {
		cs[i] = []float64{c}
	}
	out, err := v.Evaluate([]float64{t}, cs...)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// bracket returns the lower grid index and the weight of the upper one.
func bracket(axis []float64, val float64) (int, float64) {
	n := len(axis)
	if n == 1 || val <= axis[0] {
		return 0, 0
	}
	if val >= axis[n-1] {
		return n - 2, 1
	}
	i := sort.SearchFloat64s(axis, val)
	if axis[i] == val {
		return i, 0
	}
	lo := i - 1
	return lo, (val - axis[lo]) / (axis[i] - axis[lo])
}
