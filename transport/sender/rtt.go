package sender

import (
	"time"
)

const (
	// rttSmoothing is the weight given to the previous estimate when a new
	// round-trip sample is folded in
	rttSmoothing = 0.85

	// baseRttFloor guards the base round-trip minimum against clock noise;
	// samples at or below it never become the new base
	baseRttFloor = 100 * time.Microsecond
)

// rttEstimator derives the smoothed and base round-trip times from the
// samples taken on each advancing acknowledgement
type rttEstimator struct {
	estimated time.Duration

	base      time.Duration
	baseValid bool
}

// Observe folds a new round-trip sample into the smoothed estimate
func (r *rttEstimator) Observe(sample time.Duration) {
	r.estimated = time.Duration(rttSmoothing*float64(r.estimated) + (1-rttSmoothing)*float64(sample))
}

// Estimated returns the smoothed round-trip time
func (r *rttEstimator) Estimated() time.Duration {
	return r.estimated
}

// ObserveBase tracks the minimum observed round-trip time. Samples at or
// below the noise floor are ignored; above it, only a smaller sample may take
// the place of the base, so the base is monotonically non-increasing once
// valid
func (r *rttEstimator) ObserveBase(sample time.Duration) {
	if sample <= baseRttFloor {
		return
	}
	if !r.baseValid || sample < r.base {
		r.base = sample
		r.baseValid = true
	}
}

// Base returns the minimum observed round-trip time and whether one has been
// recorded yet
func (r *rttEstimator) Base() (time.Duration, bool) {
	return r.base, r.baseValid
}
