package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const focTolerance = 1e-9

func balanced(u, v float64) PhaseVector {
	return PhaseVector{U: u, V: v, W: -(u + v)}
}

func assertPhaseInDelta(t *testing.T, want, got PhaseVector, delta float64) {
	t.Helper()
	assert.InDelta(t, want.U, got.U, delta, "U")
	assert.InDelta(t, want.V, got.V, delta, "V")
	assert.InDelta(t, want.W, got.W, delta, "W")
}

func TestClarkeOfBalancedSine(t *testing.T) {
	for _, theta := range []float64{0, 0.4, math.Pi / 2, 2.5, -1.1} {
		in := PhaseVector{
			U: math.Cos(theta),
			V: math.Cos(theta - 2*math.Pi/3),
			W: math.Cos(theta + 2*math.Pi/3),
		}

		ab := Clarke(in)
		assert.InDelta(t, math.Cos(theta), ab.Alpha, focTolerance)
		assert.InDelta(t, math.Sin(theta), ab.Beta, focTolerance)

		// Aligned with the rotor, the whole vector is on D
		dq := Park(ab, theta)
		assert.InDelta(t, 1.0, dq.D, focTolerance)
		assert.InDelta(t, 0.0, dq.Q, focTolerance)
	}
}

func TestParkInverse(t *testing.T) {
	ab := AlphaBeta{Alpha: 0.3, Beta: -1.7}
	for _, theta := range []float64{0, 1, math.Pi, -2.2, 7.5} {
		back := InversePark(Park(ab, theta), theta)
		assert.InDelta(t, ab.Alpha, back.Alpha, focTolerance)
		assert.InDelta(t, ab.Beta, back.Beta, focTolerance)
	}
}

func TestClarkeInverse(t *testing.T) {
	in := balanced(1.25, -0.5)
	assertPhaseInDelta(t, in, InverseClarke(Clarke(in)), focTolerance)
}

func TestCommutateRoundTrip(t *testing.T) {
	inputs := []PhaseVector{
		balanced(1, 0),
		balanced(0.3, 0.9),
		balanced(-2, 0.75),
		balanced(0, 0),
	}
	angles := []float64{0, 0.5, math.Pi / 3, math.Pi, -2.9, 12.0}

	for _, in := range inputs {
		for _, rm := range angles {
			c := NewCommutator()

			// Targets equal to the measured frame mean zero correction
			measured := Park(Clarke(in), rm)
			res := c.Commutate(in, measured, rm, rm)

			assertPhaseInDelta(t, in, res.Drive, focTolerance)
			assert.InDelta(t, 0, c.Accumulated().D, focTolerance)
			assert.InDelta(t, 0, c.Accumulated().Q, focTolerance)
		}
	}
}

func TestCommutateRegulates(t *testing.T) {
	c := NewCommutator()
	target := TorqueRequest(2)
	sampled := balanced(0, 0)

	for n := 1; n <= 5; n++ {
		res := c.Commutate(sampled, target, 0, 0)
		assert.InDelta(t, 0, res.Regulated.D, focTolerance)
		assert.InDelta(t, 2+float64(n)*2, res.Regulated.Q, focTolerance)
		assert.InDelta(t, 0, res.Drive.Balance(), focTolerance)
	}
	assert.InDelta(t, 10, c.Accumulated().Q, focTolerance)

	c.Reset()
	assert.Equal(t, DQVector{}, c.Accumulated())
}

func TestCommutateAdvanceAngle(t *testing.T) {
	c := NewCommutator()

	// Pure Q at zero advance lands on beta; leading by 90° moves it to -alpha
	res := c.Commutate(balanced(0, 0), DQVector{Q: 1}, 0, 0)
	ab := Clarke(res.Drive)
	assert.InDelta(t, 0, ab.Alpha, focTolerance)

	c.Reset()
	res = c.Commutate(balanced(0, 0), DQVector{Q: 1}, 0, math.Pi/2)
	ab = Clarke(res.Drive)
	assert.InDelta(t, -2, ab.Alpha, focTolerance)
	assert.InDelta(t, 0, ab.Beta, focTolerance)
}

func TestTorqueRequest(t *testing.T) {
	assert.Equal(t, DQVector{D: 0, Q: -3.5}, TorqueRequest(-3.5))
}
