package control

// PIRegulator is an integral regulator with target feed-through: the
// proportional path is the target itself, not the error.
//
// One regulator per control axis. The accumulator is never reset
// implicitly; call Reset when the axis is re-armed.
type PIRegulator struct {
	accumulatedError float64
}

// Feedback accumulates target-measured and returns target plus the running sum.
func (pi *PIRegulator) Feedback(target, measured float64) float64 {
	pi.accumulatedError += target - measured
	return target + pi.accumulatedError
}

// Reset clears the accumulator
func (pi *PIRegulator) Reset() {
	pi.accumulatedError = 0.0
}

// AccumulatedError returns the running error sum
func (pi *PIRegulator) AccumulatedError() float64 {
	return pi.accumulatedError
}
