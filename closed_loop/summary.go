package main

import (
	"math"

	"gonum.org/v1/gonum/stat"

	control "servo-foc-core/closed_loop/servo_control"
)

// Summary describes a completed (or cancelled) run
type Summary struct {
	Ticks          int
	FinalGoal      float64
	FinalPosition  float64
	FinalSpeed     float64
	FinalPower     float64
	FirstDecelTick int // 0 when the profile never decelerated
	SaturatedTicks int
	MaxAbsPower    float64
	FramesSent     uint64

	// Position error over the trailing settle window
	SettleMeanError float64
	SettleStdDev    float64
}

type summaryBuilder struct {
	window int
	errs   []float64 // ring of the last window errors
	next   int
	sum    Summary
}

func newSummaryBuilder(window int) *summaryBuilder {
	if window < 1 {
		window = 1
	}
	return &summaryBuilder{window: window, errs: make([]float64, 0, window)}
}

func (b *summaryBuilder) add(snap control.Snapshot, goal float64) {
	b.sum.Ticks = int(snap.Tick)
	b.sum.FinalGoal = goal
	b.sum.FinalPosition = snap.Position
	b.sum.FinalSpeed = snap.Speed
	b.sum.FinalPower = snap.Power
	b.sum.MaxAbsPower = math.Max(b.sum.MaxAbsPower, math.Abs(snap.Power))

	if snap.Saturated {
		b.sum.SaturatedTicks++
	}
	if b.sum.FirstDecelTick == 0 && snap.Phase == control.PhaseDecelerate {
		b.sum.FirstDecelTick = int(snap.Tick)
	}

	e := snap.Position - goal
	if len(b.errs) < b.window {
		b.errs = append(b.errs, e)
		return
	}
	b.errs[b.next] = e
	b.next = (b.next + 1) % b.window
}

func (b *summaryBuilder) finish(framesSent uint64) Summary {
	s := b.sum
	s.FramesSent = framesSent

	switch len(b.errs) {
	case 0:
	case 1:
		s.SettleMeanError = b.errs[0]
	default:
		s.SettleMeanError, s.SettleStdDev = stat.MeanStdDev(b.errs, nil)
	}
	return s
}
