package control

import "math"

// Phase identifies the profile branch chosen for one tick. It is derived
// from position and speed on every call and never carried across ticks.
type Phase int

const (
	PhaseAccelerate Phase = iota
	PhaseDecelerate
	PhaseSettle
)

func (p Phase) String() string {
	switch p {
	case PhaseAccelerate:
		return "ACCEL"
	case PhaseDecelerate:
		return "DECEL"
	case PhaseSettle:
		return "SETTLE"
	default:
		return "UNKNOWN"
	}
}

// ClampFloat clamps value between min and max
func ClampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// direction returns +1 for non-negative v and -1 otherwise
func direction(v float64) float64 {
	if 0 <= v {
		return +1.0
	}
	return -1.0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// BoolToFloat converts bool to float64 (for CAN encoding)
func BoolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
