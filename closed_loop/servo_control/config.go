package control

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned for a ProfileConfig that cannot drive the loop.
var ErrInvalidConfig = errors.New("invalid servo config")

// ErrNumericDomain is returned when a tick would produce a non-finite value.
var ErrNumericDomain = errors.New("numeric domain error")

// ProfileConfig holds the gains and limits of one servo axis
type ProfileConfig struct {
	// Limits
	LimitTorque float64 `json:"limit_torque"` // power saturation, symmetric

	// Trapezoid shape (units per tick, units per tick²)
	TargetSpeed float64 `json:"target_speed"`
	TargetAcc   float64 `json:"target_acc"`
	TargetDec   float64 `json:"target_dec"`

	// Gains
	IntegralGain   float64 `json:"integral_gain"`   // divisor of the acceleration error
	DerivativeGain float64 `json:"derivative_gain"` // divisor of the settle-phase rest distance

	// Plant characteristic
	MotorGain float64 `json:"motor_gain"` // position delta per unit power

	// Optional anti-windup clamp on the acceleration error accumulator.
	// Zero leaves the accumulator unbounded.
	IntegralLimit float64 `json:"integral_limit,omitempty"`
}

// DefaultProfileConfig returns the reference tuning: torque limit 50,
// cruise 3, accel 1, decel 1.3, I 2, D 3, motor gain 1.2.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		LimitTorque:    50.0,
		TargetSpeed:    3.0,
		TargetAcc:      1.0,
		TargetDec:      1.3,
		IntegralGain:   2.0,
		DerivativeGain: 3.0,
		MotorGain:      1.2,
	}
}

// Validate rejects non-finite or negative values and the zero divisors
// (target_dec, integral_gain, derivative_gain) and a zero torque limit.
func (c ProfileConfig) Validate() error {
	fields := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"limit_torque", c.LimitTorque, true},
		{"target_speed", c.TargetSpeed, false},
		{"target_acc", c.TargetAcc, false},
		{"target_dec", c.TargetDec, true},
		{"integral_gain", c.IntegralGain, true},
		{"derivative_gain", c.DerivativeGain, true},
		{"motor_gain", c.MotorGain, false},
		{"integral_limit", c.IntegralLimit, false},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Wrapf(ErrInvalidConfig, "%s must be finite, got %v", f.name, f.value)
		}
		if f.value < 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be non-negative, got %v", f.name, f.value)
		}
		if f.positive && f.value == 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must be positive", f.name)
		}
	}
	return nil
}

// decelBreakpoint is the profile X coordinate at which deceleration from
// full cruise speed has to begin.
func (c ProfileConfig) decelBreakpoint() float64 {
	return c.TargetSpeed / c.TargetDec
}
