// Package metric defines the normalized metric vector shared by every engine.
package metric

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Neutral is the value read for a metric a vector does not carry.
const Neutral = 0.5

// Vector maps metric names to values in [0,1].
type Vector map[string]float64

// Clamp bounds v into [0,1]. NaN reads as Neutral.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return Neutral
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Get returns the clamped value for key, or Neutral when absent.
func (v Vector) Get(key string) float64 {
	x, ok := v[key]
	if !ok {
		return Neutral
	}
	return Clamp(x)
}

// Lookup returns the clamped value for key and whether it was present.
func (v Vector) Lookup(key string) (float64, bool) {
	x, ok := v[key]
	if !ok {
		return 0, false
	}
	return Clamp(x), true
}

// Keys returns the metric names in ascending order.
func (v Vector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clamped returns a copy with every value clamped into [0,1].
func (v Vector) Clamped() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = Clamp(x)
	}
	return out
}

// Average is the mean of the clamped values. An empty vector averages to 0.
func (v Vector) Average() float64 {
	if len(v) == 0 {
		return 0
	}
	xs := make([]float64, 0, len(v))
	for _, k := range v.Keys() {
		xs = append(xs, Clamp(v[k]))
	}
	return stat.Mean(xs, nil)
}

// Validate rejects empty metric names and non-finite values.
func (v Vector) Validate() error {
	for k, x := range v {
		if k == "" {
			return fmt.Errorf("%w: empty metric name", ErrMalformed)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrMalformed, k)
		}
	}
	return nil
}
