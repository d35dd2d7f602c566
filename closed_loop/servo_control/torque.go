package control

// ApplyTorque records accCommand as the commanded acceleration and adds
// it, together with the accumulated acceleration error, to the power
// output. Power is hard-saturated at ±LimitTorque; saturation is not an
// error and does not stop IntegralDiff from growing.
func ApplyTorque(state ServoState, accCommand float64, cfg ProfileConfig) ServoState {
	state.CommandedAcc = accCommand
	state.Power += accCommand + state.IntegralDiff
	state.Power = ClampFloat(state.Power, -cfg.LimitTorque, cfg.LimitTorque)
	return state
}

// Saturated reports whether power sits on the torque limit
func Saturated(state ServoState, cfg ProfileConfig) bool {
	return state.Power >= cfg.LimitTorque || state.Power <= -cfg.LimitTorque
}

// AccelerationRatio returns observed/commanded acceleration, 1.0 when
// nothing was commanded.
func AccelerationRatio(state ServoState) float64 {
	if state.CommandedAcc == 0 {
		return 1.0
	}
	return state.ObservedAcc / state.CommandedAcc
}
