package main

import (
	"math"

	control "servo-foc-core/closed_loop/servo_control"
)

// phaseLoop turns each mechanical snapshot into phase drive. In FOC mode
// it runs the D/Q current loop ElectricalTicksPerTick times against a
// winding whose current lags the drive; in quadrature mode it produces
// the sine drive once per tick.
type phaseLoop struct {
	cfg      CommutationConfig
	foc      *control.Commutator
	currents control.PhaseVector
	last     control.CommutationResult
}

func newPhaseLoop(cfg CommutationConfig) *phaseLoop {
	return &phaseLoop{
		cfg: cfg,
		foc: control.NewCommutator(),
	}
}

// rotorAngle is the electrical angle of position, radians
func (p *phaseLoop) rotorAngle(position float64) float64 {
	return 2 * math.Pi * float64(p.cfg.PolePairs) * position / p.cfg.CountsPerRev
}

// encoderCount maps position onto the 4096-count electrical circle
func (p *phaseLoop) encoderCount(position float64) int {
	electrical := float64(p.cfg.PolePairs) * position / p.cfg.CountsPerRev
	return int(math.Round(electrical * control.CountsPerElectricalRev))
}

func (p *phaseLoop) step(snap control.Snapshot) control.PhaseVector {
	if p.cfg.Mode == CommutationQuadrature {
		drive := control.QuadratureDrive(p.encoderCount(snap.Position), snap.Power, snap.IntegralDiff)
		p.last = control.CommutationResult{Drive: drive}
		return drive
	}

	rm := p.rotorAngle(snap.Position)
	re := rm + p.cfg.AdvanceGain*snap.Speed
	target := control.TorqueRequest(snap.Power)

	for i := 0; i < p.cfg.ElectricalTicksPerTick; i++ {
		p.last = p.foc.Commutate(p.currents, target, rm, re)
		p.currents = p.follow(p.last.Drive)
	}
	return p.last.Drive
}

// follow moves the winding current toward drive by CurrentResponse,
// keeping the set balanced.
func (p *phaseLoop) follow(drive control.PhaseVector) control.PhaseVector {
	r := p.cfg.CurrentResponse
	u := p.currents.U + (drive.U-p.currents.U)*r
	v := p.currents.V + (drive.V-p.currents.V)*r
	return control.PhaseVector{U: u, V: v, W: -(u + v)}
}
