package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"

	control "servo-foc-core/closed_loop/servo_control"
)

// Scenario defines a complete servo run
type Scenario struct {
	Meta            ScenarioMeta          `json:"meta"`
	Timing          ScenarioTiming        `json:"timing"`
	Servo           control.ProfileConfig `json:"servo"`
	InitialPosition float64               `json:"initial_position"`
	Goal            float64               `json:"goal"`
	Segments        []GoalSegment         `json:"segments,omitempty"`
	Environment     EnvironmentConfig     `json:"environment"`
	Commutation     *CommutationConfig    `json:"commutation,omitempty"` // Optional phase drive loop
}

// ScenarioMeta contains scenario metadata
type ScenarioMeta struct {
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Description string `json:"description"`
}

// ScenarioTiming defines timing parameters
type ScenarioTiming struct {
	Ticks        int  `json:"ticks"`
	TickMS       int  `json:"tick_ms"`        // simulated tick period, also the real-time pace
	RealTimeMode bool `json:"real_time_mode"` // pace ticks on a wall-clock ticker
	LogEvery     int  `json:"log_every"`      // status line cadence in ticks, 0 disables
	SettleWindow int  `json:"settle_window"`  // trailing ticks used for the settle statistics
}

// GoalSegment overrides the goal for ticks [T0, T1). T1 < 0 runs to the end.
type GoalSegment struct {
	T0      int     `json:"t0"`
	T1      int     `json:"t1"`
	Goal    float64 `json:"goal"`
	Comment string  `json:"comment,omitempty"`
}

// Commutation modes
const (
	CommutationFOC        = "foc"
	CommutationQuadrature = "quadrature"
)

// CommutationConfig drives the phase loop under the mechanical tick
type CommutationConfig struct {
	Mode                   string  `json:"mode"`                      // "foc" or "quadrature"
	ElectricalTicksPerTick int     `json:"electrical_ticks_per_tick"` // FOC sub-steps per mechanical tick
	PolePairs              int     `json:"pole_pairs"`
	CountsPerRev           float64 `json:"counts_per_rev"`   // position units per mechanical revolution
	AdvanceGain            float64 `json:"advance_gain"`     // radians of advance per unit speed
	CurrentResponse        float64 `json:"current_response"` // first-order lag of phase current, (0, 1]
}

// DefaultScenario is the reference move: goal 100 over 1300 ticks with no
// disturbance and a status line every tick.
func DefaultScenario() Scenario {
	return Scenario{
		Meta: ScenarioMeta{
			Name:        "ptp_100",
			Version:     1,
			Description: "point-to-point move to 100, unloaded",
		},
		Timing: ScenarioTiming{
			Ticks:        1300,
			TickMS:       1,
			LogEvery:     1,
			SettleWindow: 100,
		},
		Servo: control.DefaultProfileConfig(),
		Goal:  100,
	}
}

// DefaultCommutation returns the FOC loop settings applied under a bare
// "commutation": {} block.
func DefaultCommutation() CommutationConfig {
	return CommutationConfig{
		Mode:                   CommutationFOC,
		ElectricalTicksPerTick: 8,
		PolePairs:              4,
		CountsPerRev:           4096,
		CurrentResponse:        0.5,
	}
}

// LoadScenario loads a scenario from JSON file. Omitted fields keep the
// values of DefaultScenario.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario JSON
func ParseScenario(data []byte) (Scenario, error) {
	scen := DefaultScenario()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&scen); err != nil {
		return Scenario{}, fmt.Errorf("unmarshal: %w", err)
	}

	if scen.Commutation != nil {
		applyCommutationDefaults(scen.Commutation)
	}

	if err := scen.Validate(); err != nil {
		return Scenario{}, err
	}
	return scen, nil
}

func applyCommutationDefaults(c *CommutationConfig) {
	def := DefaultCommutation()
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.ElectricalTicksPerTick == 0 {
		c.ElectricalTicksPerTick = def.ElectricalTicksPerTick
	}
	if c.PolePairs == 0 {
		c.PolePairs = def.PolePairs
	}
	if c.CountsPerRev == 0 {
		c.CountsPerRev = def.CountsPerRev
	}
	if c.CurrentResponse == 0 {
		c.CurrentResponse = def.CurrentResponse
	}
}

// Validate checks timing, segments, environment and the servo config
func (s *Scenario) Validate() error {
	if s.Timing.Ticks <= 0 {
		return fmt.Errorf("invalid ticks: %d", s.Timing.Ticks)
	}
	if s.Timing.TickMS < 0 {
		return fmt.Errorf("invalid tick_ms: %d", s.Timing.TickMS)
	}
	if s.Timing.RealTimeMode && s.Timing.TickMS == 0 {
		return fmt.Errorf("real_time_mode requires tick_ms > 0")
	}
	if s.Timing.LogEvery < 0 {
		return fmt.Errorf("invalid log_every: %d", s.Timing.LogEvery)
	}
	if s.Timing.SettleWindow < 0 {
		return fmt.Errorf("invalid settle_window: %d", s.Timing.SettleWindow)
	}

	if err := s.Servo.Validate(); err != nil {
		return fmt.Errorf("servo: %w", err)
	}

	if !finite(s.Goal) || !finite(s.InitialPosition) {
		return fmt.Errorf("goal and initial_position must be finite")
	}
	for i, seg := range s.Segments {
		if !finite(seg.Goal) {
			return fmt.Errorf("segment %d: goal must be finite", i)
		}
		if seg.T0 < 0 {
			return fmt.Errorf("segment %d: invalid t0 %d", i, seg.T0)
		}
		if seg.T1 >= 0 && seg.T1 <= seg.T0 {
			return fmt.Errorf("segment %d: t1 %d must be after t0 %d", i, seg.T1, seg.T0)
		}
	}

	if err := s.Environment.Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if c := s.Commutation; c != nil {
		switch c.Mode {
		case CommutationFOC, CommutationQuadrature:
		default:
			return fmt.Errorf("commutation: unknown mode %q", c.Mode)
		}
		if c.ElectricalTicksPerTick < 1 {
			return fmt.Errorf("commutation: invalid electrical_ticks_per_tick %d", c.ElectricalTicksPerTick)
		}
		if c.PolePairs < 1 {
			return fmt.Errorf("commutation: invalid pole_pairs %d", c.PolePairs)
		}
		if c.CountsPerRev <= 0 {
			return fmt.Errorf("commutation: invalid counts_per_rev %f", c.CountsPerRev)
		}
		if c.CurrentResponse <= 0 || c.CurrentResponse > 1 {
			return fmt.Errorf("commutation: current_response %f outside (0, 1]", c.CurrentResponse)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// EvalGoal returns the goal position for a tick
func EvalGoal(scen *Scenario, tick int) float64 {
	for _, seg := range scen.Segments {
		t1 := seg.T1
		if t1 < 0 {
			t1 = scen.Timing.Ticks
		}
		if tick >= seg.T0 && tick < t1 {
			return seg.Goal
		}
	}
	return scen.Goal
}
