package election

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidQuota is returned when a quota cannot be computed, typically
// because the number of seats is not positive.
var ErrInvalidQuota = errors.New("invalid quota")

// Quota computes the vote threshold a candidate must reach to be elected in
// a round, from the profile's current total weight and the seats still to
// fill. Implementations must return a positive threshold whenever the total
// weight is positive and at least one seat remains.
type Quota interface {
	Threshold(totalWeight float64, seats int) (float64, error)
}

// Droop is the quota floor(total / (seats + 1)) + 1, the smallest threshold
// that at most `seats` candidates can reach simultaneously.
type Droop struct{}

func (Droop) Threshold(totalWeight float64, seats int) (float64, error) {
	if seats < 1 {
		return 0, fmt.Errorf("%w: seats must be positive, got %d", ErrInvalidQuota, seats)
	}
	return math.Floor(totalWeight/float64(seats+1)) + 1, nil
}

// Hare is the quota total / seats, with no flooring or increment.
type Hare struct{}

func (Hare) Threshold(totalWeight float64, seats int) (float64, error) {
	if seats < 1 {
		return 0, fmt.Errorf("%w: seats must be positive, got %d", ErrInvalidQuota, seats)
	}
	return totalWeight / float64(seats), nil
}
