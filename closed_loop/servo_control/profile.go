package control

import (
	"math"

	"github.com/pkg/errors"
)

// ============================================================================
// POINT-TO-POINT PROFILE
// ============================================================================
// Shapes speed over time as a trapezoid [/‾‾‾\] without storing a plan.
// The remaining time-to-go X is estimated from the remaining distance by
// treating deceleration as speed = X * dec, so the area under the ramp is
//
//	(X+1) * X * dec / 2 = rest   =>   X ≈ sqrt(2 * rest / dec)
//
// Every tick picks one branch from the current position and speed:
//
//	X > v_max/dec + 1   accelerate toward v_max, bounded by acc
//	rest > dec          brake onto the ramp speed (X-1) * dec
//	otherwise           settle with rest/D - speed
// ============================================================================

// ProfileCommand is the acceleration requested for one tick
type ProfileCommand struct {
	Acceleration float64
	Phase        Phase
	X            float64 // estimated ticks to go
}

// ComputeTargetAcceleration returns the acceleration that keeps the axis
// on the trapezoid toward goal. A goal equal to position requests -speed,
// an active brake to standstill.
func ComputeTargetAcceleration(position, speed, goal float64, cfg ProfileConfig) (ProfileCommand, error) {
	restPosition := goal - position
	if !isFinite(restPosition) || !isFinite(speed) {
		return ProfileCommand{}, errors.Wrapf(ErrNumericDomain,
			"profile input not finite: position=%v speed=%v goal=%v", position, speed, goal)
	}

	rest := math.Abs(restPosition)
	dir := direction(restPosition)

	radicand := 2 * rest / cfg.TargetDec
	if radicand < 0 || math.IsNaN(radicand) {
		return ProfileCommand{}, errors.Wrapf(ErrNumericDomain,
			"negative profile radicand %v (target_dec=%v)", radicand, cfg.TargetDec)
	}
	x := math.Sqrt(radicand)

	switch {
	case cfg.decelBreakpoint()+1 < x:
		// Speed-limited ramp, the accel curve is bounded by target_acc
		acc := dir * math.Min(cfg.TargetAcc, cfg.TargetSpeed-math.Abs(speed))
		return ProfileCommand{Acceleration: acc, Phase: PhaseAccelerate, X: x}, nil

	case cfg.TargetDec < rest:
		// Brake onto the ramp in one tick
		rampSpeed := dir * (x - 1.0) * cfg.TargetDec
		return ProfileCommand{Acceleration: rampSpeed - speed, Phase: PhaseDecelerate, X: x}, nil

	default:
		settleSpeed := restPosition / cfg.DerivativeGain
		return ProfileCommand{Acceleration: settleSpeed - speed, Phase: PhaseSettle, X: x}, nil
	}
}
