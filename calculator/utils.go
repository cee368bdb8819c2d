package calculator

import (
	"math"

	"pcm/model"
)

// harmonic mean conductivity of two neighbouring cells of equal width
func faceConductivity(k1, k2 float64) float64 {
	if k1+k2 == 0 {
		return 0
	}
	return 2 * k1 * k2 / (k1 + k2)
}

func celsius(t float64) float64 {
	return t - model.ZeroCelsius
}

func maxAbsDiff(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

// steps splits an interval into the fewest steps no longer than dt.
func steps(interval, dt float64) (int, float64) {
	n := int(math.Ceil(interval/dt - 1e-9))
	if n < 1 {
		n = 1
	}
	return n, interval / float64(n)
}
