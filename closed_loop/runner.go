package main

import (
	"context"
	"fmt"
	"time"

	control "servo-foc-core/closed_loop/servo_control"
	"servo-foc-core/utils"
)

type RunnerConfig struct {
	ScenarioPath string // empty runs DefaultScenario
	MapPath      string // empty uses the built-in status map
	TracePath    string // empty discards frames
	Interface    string // interface name written into trace lines

	// Overrides applied on top of the scenario
	Goal  *float64
	Ticks int
}

type Runner struct {
	log    *utils.Logger
	cmap   *utils.CANMap
	scen   Scenario
	writer utils.CANWriter
	servo  *control.Servo
	phase  *phaseLoop // nil without commutation

	epoch time.Time // simulated time of tick 0
	tick  int
}

func NewRunner(cfg RunnerConfig, log *utils.Logger) (*Runner, error) {
	scen := DefaultScenario()
	if cfg.ScenarioPath != "" {
		var err error
		scen, err = LoadScenario(cfg.ScenarioPath)
		if err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
	}
	if cfg.Goal != nil {
		scen.Goal = *cfg.Goal
		scen.Segments = nil
	}
	if cfg.Ticks > 0 {
		scen.Timing.Ticks = cfg.Ticks
	}

	cmap := utils.DefaultCANMap()
	if cfg.MapPath != "" {
		var err error
		cmap, err = utils.LoadCANMap(cfg.MapPath)
		if err != nil {
			return nil, fmt.Errorf("load can map: %w", err)
		}
	}

	var writer utils.CANWriter = utils.DiscardWriter{}
	if cfg.TracePath != "" {
		iface := cfg.Interface
		if iface == "" {
			iface = "servo0"
		}
		tw, err := utils.NewTraceFileWriter(cfg.TracePath, iface)
		if err != nil {
			return nil, err
		}
		writer = tw
	}

	r, err := newRunner(scen, cmap, writer, log)
	if err != nil {
		_ = writer.Close()
		return nil, err
	}
	return r, nil
}

func newRunner(scen Scenario, cmap *utils.CANMap, writer utils.CANWriter, log *utils.Logger) (*Runner, error) {
	if err := scen.Validate(); err != nil {
		return nil, err
	}

	for _, name := range []string{utils.FrameServoStatus1, utils.FrameServoStatus2} {
		if _, err := cmap.FrameByName(name); err != nil {
			return nil, fmt.Errorf("frame: %w", err)
		}
	}

	servo, err := control.NewServo(scen.Servo, NewFieldLoad(scen.Environment))
	if err != nil {
		return nil, fmt.Errorf("servo: %w", err)
	}
	servo.Reset(scen.InitialPosition)

	r := &Runner{
		log:    log,
		cmap:   cmap,
		scen:   scen,
		writer: writer,
		servo:  servo,
		epoch:  time.Unix(0, 0),
	}

	if scen.Commutation != nil {
		if _, err := cmap.FrameByName(utils.FramePhaseDrive); err != nil {
			return nil, fmt.Errorf("frame: %w", err)
		}
		r.phase = newPhaseLoop(*scen.Commutation)
		log.Info("Commutation enabled: mode=%s electrical_ticks=%d pole_pairs=%d advance_gain=%.3f",
			scen.Commutation.Mode, scen.Commutation.ElectricalTicksPerTick,
			scen.Commutation.PolePairs, scen.Commutation.AdvanceGain)
	}

	// Trace timestamps follow simulated time, not the wall clock
	if tw, ok := writer.(*utils.TraceWriter); ok {
		tw.SetClock(r.simTime)
	}

	return r, nil
}

func (r *Runner) Close() {
	if r.writer != nil {
		_ = r.writer.Close()
	}
}

func (r *Runner) simTime() time.Time {
	period := time.Duration(r.scen.Timing.TickMS) * time.Millisecond
	if period == 0 {
		period = time.Millisecond
	}
	return r.epoch.Add(time.Duration(r.tick) * period)
}

func (r *Runner) Run(ctx context.Context) (Summary, error) {
	timing := r.scen.Timing
	commutation := "off"
	if r.phase != nil {
		commutation = r.phase.cfg.Mode
	}

	r.log.Info("Starting servo: scenario=%s ticks=%d tick_ms=%d goal=%.3f segments=%d real_time=%v commutation=%s",
		r.scen.Meta.Name, timing.Ticks, timing.TickMS, r.scen.Goal, len(r.scen.Segments),
		timing.RealTimeMode, commutation)

	var pace <-chan time.Time
	if timing.RealTimeMode {
		ticker := time.NewTicker(time.Duration(timing.TickMS) * time.Millisecond)
		defer ticker.Stop()
		pace = ticker.C
	}

	cfg := r.servo.Config()
	sb := newSummaryBuilder(timing.SettleWindow)
	var sent uint64
	saturated := false

	for r.tick = 0; r.tick < timing.Ticks; r.tick++ {
		select {
		case <-ctx.Done():
			r.log.Warn("Context canceled; stopping at tick %d", r.tick)
			return sb.finish(sent), ctx.Err()
		default:
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				r.log.Warn("Context canceled; stopping at tick %d", r.tick)
				return sb.finish(sent), ctx.Err()
			case <-pace:
			}
		}

		goal := EvalGoal(&r.scen, r.tick)
		snap, err := r.servo.Advance(goal)
		if err != nil {
			r.log.Error("Advance failed at tick %d: %v", r.tick, err)
			return sb.finish(sent), err
		}
		sb.add(snap, goal)

		if snap.Saturated != saturated {
			saturated = snap.Saturated
			r.log.Debug("tick=%d saturated=%v power=%.3f limit=%.3f integral=%.3f",
				snap.Tick, saturated, snap.Power, cfg.LimitTorque, snap.IntegralDiff)
		}

		n, err := r.emitStatus(ctx, snap)
		sent += n
		if err != nil {
			r.log.Critical("Trace write failed at tick %d: %v", r.tick, err)
			return sb.finish(sent), err
		}

		if timing.LogEvery > 0 && (r.tick%timing.LogEvery == 0 || r.tick == timing.Ticks-1) {
			r.log.Info("Pos=%v, Spd=%v, Pwr=%v, Acc=%v", snap.Position, snap.Speed, snap.Power, snap.ObservedAcc)
		}
		r.log.Trace("tick=%d goal=%.3f phase=%s cmd_acc=%.4f ratio=%.4f", snap.Tick, goal, snap.Phase,
			snap.CommandedAcc, control.AccelerationRatio(r.servo.State()))
	}

	sum := sb.finish(sent)
	r.log.Info("Completed: ticks=%d pos=%.6f spd=%.6f first_decel=%d saturated_ticks=%d settle_err=%.6f±%.6f frames_sent=%d",
		sum.Ticks, sum.FinalPosition, sum.FinalSpeed, sum.FirstDecelTick, sum.SaturatedTicks,
		sum.SettleMeanError, sum.SettleStdDev, sum.FramesSent)
	return sum, nil
}

type statusFrame struct {
	name   string
	values map[string]float64
}

// emitStatus encodes and writes the frames for one tick
func (r *Runner) emitStatus(ctx context.Context, snap control.Snapshot) (uint64, error) {
	frames := []statusFrame{
		{utils.FrameServoStatus1, map[string]float64{
			"position": snap.Position,
			"speed":    snap.Speed,
			"power":    snap.Power,
		}},
		{utils.FrameServoStatus2, map[string]float64{
			"observed_acc":  snap.ObservedAcc,
			"integral_diff": snap.IntegralDiff,
			"phase":         float64(snap.Phase),
			"saturated":     control.BoolToFloat(snap.Saturated),
		}},
	}

	if r.phase != nil {
		drive := r.phase.step(snap)
		frames = append(frames, statusFrame{utils.FramePhaseDrive, map[string]float64{
			"drive_u": drive.U,
			"drive_v": drive.V,
			"drive_w": drive.W,
		}})
		r.log.Trace("tick=%d U=%.4f V=%.4f W=%.4f d=%.4f q=%.4f", snap.Tick, drive.U, drive.V, drive.W,
			r.phase.last.Measured.D, r.phase.last.Measured.Q)
	}

	var sent uint64
	for _, f := range frames {
		frame, err := r.cmap.EncodeEinrideFrame(f.name, f.values)
		if err != nil {
			return sent, fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := r.writer.WriteFrame(ctx, frame); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
