package control

// Step advances the simulated rotor by one tick: power moves it by
// power*MotorGain plus the environment disturbance, speed and observed
// acceleration are the first and second differences, and the gap between
// commanded and observed acceleration is integrated into IntegralDiff.
func Step(state ServoState, disturbance float64, cfg ProfileConfig) ServoState {
	nextPosition := state.Position + state.Power*cfg.MotorGain + disturbance

	speed := nextPosition - state.Position
	acc := speed - state.Speed
	diff := state.CommandedAcc - acc

	state.Position = nextPosition
	state.Speed = speed
	state.ObservedAcc = acc
	state.IntegralDiff += diff / cfg.IntegralGain

	if cfg.IntegralLimit > 0 {
		state.IntegralDiff = ClampFloat(state.IntegralDiff, -cfg.IntegralLimit, cfg.IntegralLimit)
	}
	return state
}
