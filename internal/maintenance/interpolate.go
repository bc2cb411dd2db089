package maintenance

import "math"

// Interpolate returns the value of the piecewise-linear curve through points at x.
//
// An exact key match returns that point's value unchanged. Below the first key the first
// value is held; past the last key the last value is held. An empty curve is 0.
func Interpolate(points []Point, x float64) float64 {
	if len(points) == 0 || math.IsNaN(x) {
		return 0
	}

	for _, p := range points {
		if p.Key == x {
			return p.Value
		}
	}

	first, last := points[0], points[len(points)-1]
	if x < first.Key {
		return first.Value
	}
	if x > last.Key {
		return last.Value
	}

	for i := 1; i < len(points); i++ {
		lo, hi := points[i-1], points[i]
		if x >= hi.Key {
			continue
		}
		span := hi.Key - lo.Key
		if span <= 0 {
			return lo.Value
		}
		return lo.Value + (x-lo.Key)/span*(hi.Value-lo.Value)
	}

	return last.Value
}
