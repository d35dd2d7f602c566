package control

import "math"

// CountsPerElectricalRev is the resolution of the electrical circle used
// by QuadratureDrive.
const CountsPerElectricalRev = 4096

// Phase offsets in counts. Clockwise leads the rotor by 90°, with V and W
// following at 120° steps; counter-clockwise lags by 90°.
var (
	cwOffsets  = [3]int{1024, 2389, 3755} // +90, +210, +330
	ccwOffsets = [3]int{3072, 341, 1707}  // +270, +30, +150
)

// QuadratureDrive returns sine commutation for an encoder count: while the
// servo is on, the field always sits 90 electrical degrees from the rotor
// on the side of the power sign, with amplitude |power|. A zero power
// falls back to the sign of integralDiff.
func QuadratureDrive(count int, power, integralDiff float64) PhaseVector {
	cw := 0 < power || (power == 0 && 0 < integralDiff)

	offsets := ccwOffsets
	if cw {
		offsets = cwOffsets
	}

	amplitude := math.Abs(power)
	return PhaseVector{
		U: amplitude * math.Cos(countToRadians(count+offsets[0])),
		V: amplitude * math.Cos(countToRadians(count+offsets[1])),
		W: amplitude * math.Cos(countToRadians(count+offsets[2])),
	}
}

func countToRadians(count int) float64 {
	c := count % CountsPerElectricalRev
	if c < 0 {
		c += CountsPerElectricalRev
	}
	return 2 * math.Pi * float64(c) / CountsPerElectricalRev
}
