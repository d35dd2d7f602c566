package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuadratureDriveBalance(t *testing.T) {
	for _, count := range []int{0, 17, 1024, 2048, 4095, 9000, -300} {
		for _, power := range []float64{2.5, -2.5, 0.1} {
			drive := QuadratureDrive(count, power, 0)
			// Offsets are rounded to whole counts, so the set is balanced to ~1e-3
			assert.InDelta(t, 0, drive.Balance(), 2e-3*math.Abs(power), "count %d power %v", count, power)
		}
	}
}

func TestQuadratureDriveDirection(t *testing.T) {
	cw := QuadratureDrive(0, 2, 0)
	ccw := QuadratureDrive(0, -2, 0)

	// U sits 90° off the rotor either way
	assert.InDelta(t, 0, cw.U, 1e-12)
	assert.InDelta(t, 0, ccw.U, 1e-12)

	assert.InDelta(t, -math.Sqrt(3), cw.V, 2e-3)
	assert.InDelta(t, math.Sqrt(3), ccw.V, 2e-3)

	// Rotor at 90 electrical degrees: U is fully reversed
	assert.InDelta(t, -2, QuadratureDrive(1024, 2, 0).U, 1e-12)
}

func TestQuadratureDriveZeroPower(t *testing.T) {
	assert.Equal(t, 0.0, QuadratureDrive(100, 0, 1).Balance())
	assert.Equal(t, 0.0, QuadratureDrive(100, 0, -1).U)
}

func TestQuadratureDriveWrapsCount(t *testing.T) {
	assert.Equal(t, QuadratureDrive(3072, 1, 0), QuadratureDrive(-1024, 1, 0))
	assert.Equal(t, QuadratureDrive(5, 1, 0), QuadratureDrive(5+2*CountsPerElectricalRev, 1, 0))
}
