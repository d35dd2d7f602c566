package control

import (
	"github.com/pkg/errors"
)

// ServoState is the mutable state of one axis
type ServoState struct {
	Position     float64 // controller ticks
	Speed        float64 // position delta over the last tick
	Power        float64 // actuator command, within ±LimitTorque
	IntegralDiff float64 // accumulated acceleration error / IntegralGain
	CommandedAcc float64 // acceleration requested this tick
	ObservedAcc  float64 // acceleration measured by the last Step
}

// Snapshot is the read-only view of one completed tick
type Snapshot struct {
	Tick         uint64
	Position     float64
	Speed        float64
	Power        float64
	ObservedAcc  float64
	CommandedAcc float64
	IntegralDiff float64
	Phase        Phase
	Saturated    bool
}

// Environment returns the position offset the surroundings add during one
// tick, given the position and speed at the start of that tick.
type Environment func(position, speed float64) float64

// NoDisturbance is the Environment of an unloaded axis
func NoDisturbance(position, speed float64) float64 {
	return 0
}

// Tick runs profile, torque and plant feedback once. The returned state
// replaces the input; on error the input is left as it was.
func Tick(state ServoState, goal, disturbance float64, cfg ProfileConfig) (ServoState, ProfileCommand, error) {
	cmd, err := ComputeTargetAcceleration(state.Position, state.Speed, goal, cfg)
	if err != nil {
		return state, ProfileCommand{}, err
	}

	next := ApplyTorque(state, cmd.Acceleration, cfg)
	next = Step(next, disturbance, cfg)

	if !isFinite(next.Position) || !isFinite(next.IntegralDiff) {
		return state, ProfileCommand{}, errors.Wrapf(ErrNumericDomain,
			"tick produced non-finite state: position=%v integral=%v disturbance=%v",
			next.Position, next.IntegralDiff, disturbance)
	}
	return next, cmd, nil
}

// Servo owns the state of a single axis. It is not safe for concurrent
// use; independent axes each get their own Servo.
type Servo struct {
	cfg   ProfileConfig
	env   Environment
	state ServoState
	ticks uint64
}

// NewServo validates cfg and returns a Servo at rest at position 0. A nil
// env means no disturbance.
func NewServo(cfg ProfileConfig, env Environment) (*Servo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env == nil {
		env = NoDisturbance
	}
	return &Servo{cfg: cfg, env: env}, nil
}

// Advance drives the axis one tick toward goal
func (s *Servo) Advance(goal float64) (Snapshot, error) {
	disturbance := s.env(s.state.Position, s.state.Speed)

	next, cmd, err := Tick(s.state, goal, disturbance, s.cfg)
	if err != nil {
		return Snapshot{}, errors.WithMessagef(err, "tick %d", s.ticks)
	}
	s.state = next
	s.ticks++

	return Snapshot{
		Tick:         s.ticks,
		Position:     next.Position,
		Speed:        next.Speed,
		Power:        next.Power,
		ObservedAcc:  next.ObservedAcc,
		CommandedAcc: next.CommandedAcc,
		IntegralDiff: next.IntegralDiff,
		Phase:        cmd.Phase,
		Saturated:    Saturated(next, s.cfg),
	}, nil
}

// State returns a copy of the current axis state
func (s *Servo) State() ServoState {
	return s.state
}

// Config returns the validated configuration
func (s *Servo) Config() ProfileConfig {
	return s.cfg
}

// Ticks returns the number of completed ticks
func (s *Servo) Ticks() uint64 {
	return s.ticks
}

// Reset puts the axis back at rest at position, clearing the integral term.
func (s *Servo) Reset(position float64) {
	s.state = ServoState{Position: position}
	s.ticks = 0
}
