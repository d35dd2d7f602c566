package control

import "math"

// ============================================================================
// FIELD ORIENTED COMMUTATION
// ============================================================================
// Sampled phase currents -> Clarke (stationary alpha/beta) -> Park (rotor
// D/Q at rotor angle rm) -> PI on D and Q -> inverse Park at the advance
// angle re -> inverse Clarke -> U/V/W drive.
//
// Only U and V are sampled; the currents of a balanced winding sum to
// zero, so W is implied. D carries flux and Q carries torque, which lets
// the two loops be tuned independently. Leading re ahead of rm advances
// commutation without touching the D/Q regulators.
// ============================================================================

var sqrt3 = math.Sqrt(3)

// PhaseVector holds per-phase drive or current values
type PhaseVector struct {
	U, V, W float64
}

// Balance returns U+V+W, zero for a balanced three-phase set
func (p PhaseVector) Balance() float64 {
	return p.U + p.V + p.W
}

// AlphaBeta is a two-axis stationary-frame vector
type AlphaBeta struct {
	Alpha, Beta float64
}

// DQVector is a rotor-frame vector: D is flux, Q is torque
type DQVector struct {
	D, Q float64
}

// Clarke projects U and V into the stationary frame. W is not read.
func Clarke(p PhaseVector) AlphaBeta {
	return AlphaBeta{
		Alpha: p.U,
		Beta:  (p.U + 2*p.V) / sqrt3,
	}
}

// Park rotates a stationary vector into the frame at angle theta (radians)
func Park(ab AlphaBeta, theta float64) DQVector {
	sin, cos := math.Sincos(theta)
	return DQVector{
		D: ab.Alpha*cos + ab.Beta*sin,
		Q: -ab.Alpha*sin + ab.Beta*cos,
	}
}

// InversePark rotates a rotor-frame vector at angle theta back to the stationary frame
func InversePark(dq DQVector, theta float64) AlphaBeta {
	sin, cos := math.Sincos(theta)
	return AlphaBeta{
		Alpha: dq.D*cos - dq.Q*sin,
		Beta:  dq.D*sin + dq.Q*cos,
	}
}

// InverseClarke reconstructs three balanced phases, W = -(U+V)
func InverseClarke(ab AlphaBeta) PhaseVector {
	u := ab.Alpha
	v := (sqrt3*ab.Beta - ab.Alpha) / 2
	return PhaseVector{U: u, V: v, W: -(u + v)}
}

// TorqueRequest returns the D/Q target for a power command: all of it on
// the torque axis, none on flux.
func TorqueRequest(power float64) DQVector {
	return DQVector{D: 0, Q: power}
}

// CommutationResult carries the intermediate frames of one commutation step
type CommutationResult struct {
	Measured  DQVector
	Regulated DQVector
	Drive     PhaseVector
}

// Commutator runs the D and Q current loops of one motor. Each axis has
// its own regulator; neither is reset between calls.
type Commutator struct {
	d PIRegulator
	q PIRegulator
}

// NewCommutator returns a Commutator with empty regulators
func NewCommutator() *Commutator {
	return &Commutator{}
}

// Commutate converts sampled phase currents and a D/Q target into phase
// drive. rm is the rotor electrical angle used to measure D/Q and re the
// advance angle used to drive, both in radians.
func (c *Commutator) Commutate(sampled PhaseVector, target DQVector, rm, re float64) CommutationResult {
	measured := Park(Clarke(sampled), rm)

	regulated := DQVector{
		D: c.d.Feedback(target.D, measured.D),
		Q: c.q.Feedback(target.Q, measured.Q),
	}

	return CommutationResult{
		Measured:  measured,
		Regulated: regulated,
		Drive:     InverseClarke(InversePark(regulated, re)),
	}
}

// Accumulated returns the integral state of both regulators
func (c *Commutator) Accumulated() DQVector {
	return DQVector{D: c.d.AccumulatedError(), Q: c.q.AccumulatedError()}
}

// Reset clears both regulators
func (c *Commutator) Reset() {
	c.d.Reset()
	c.q.Reset()
}
