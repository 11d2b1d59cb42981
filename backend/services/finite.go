// ABOUTME: Guards for intermediate quantities before money and count conversion
// ABOUTME: Rejects overflowed or non-finite values as invalid input

package services

import (
	"fmt"
	"math"
)

// MaxCount caps integer counts derived from continuous quantities
const MaxCount = math.MaxInt32

// finite reports whether every value is a real number
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// checkFinite returns ErrInvalidInput naming what when any value has overflowed
func checkFinite(what string, values ...float64) error {
	if !finite(values...) {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidInput, what)
	}
	return nil
}

// ceilCount rounds x up to a count, rejecting values no installation could need
func ceilCount(what string, x float64) (int, error) {
	return toCount(what, math.Ceil(x))
}

// floorCount rounds x down to a count
func floorCount(what string, x float64) (int, error) {
	return toCount(what, math.Floor(x))
}

func toCount(what string, x float64) (int, error) {
	if !finite(x) || x < 0 || x > MaxCount {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidInput, what)
	}
	return int(x), nil
}
