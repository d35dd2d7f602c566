package main

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	control "servo-foc-core/closed_loop/servo_control"
)

// EnvironmentConfig describes the load around the axis: a spring pulling
// toward Center, viscous damping, and uniform encoder noise. The zero
// value is an unloaded axis.
type EnvironmentConfig struct {
	Center         float64 `json:"center"`
	Stiffness      float64 `json:"stiffness"`       // offset per unit distance from Center
	Damping        float64 `json:"damping"`         // offset per unit speed, opposing motion
	NoiseAmplitude float64 `json:"noise_amplitude"` // uniform noise in ±amplitude
	Seed           uint64  `json:"seed"`
}

// FieldLoadConfig is the bench load of the reference rig: spring toward 50
// and damping of one tenth each, encoder noise of 1/100 tick.
func FieldLoadConfig() EnvironmentConfig {
	return EnvironmentConfig{
		Center:         50,
		Stiffness:      0.1,
		Damping:        0.1,
		NoiseAmplitude: 0.01,
		Seed:           1,
	}
}

func (c EnvironmentConfig) Validate() error {
	for name, v := range map[string]float64{
		"center":          c.Center,
		"stiffness":       c.Stiffness,
		"damping":         c.Damping,
		"noise_amplitude": c.NoiseAmplitude,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v", name, v)
		}
	}
	if c.NoiseAmplitude < 0 {
		return fmt.Errorf("noise_amplitude must be non-negative, got %v", c.NoiseAmplitude)
	}
	return nil
}

// NewFieldLoad builds the disturbance function for cfg. The noise stream
// is seeded, so equal configs give equal runs.
func NewFieldLoad(cfg EnvironmentConfig) control.Environment {
	if cfg.Stiffness == 0 && cfg.Damping == 0 && cfg.NoiseAmplitude == 0 {
		return control.NoDisturbance
	}

	var noise *distuv.Uniform
	if cfg.NoiseAmplitude > 0 {
		noise = &distuv.Uniform{
			Min: -cfg.NoiseAmplitude,
			Max: cfg.NoiseAmplitude,
			Src: rand.NewPCG(cfg.Seed, cfg.Seed^0x9E3779B97F4A7C15),
		}
	}

	return func(position, speed float64) float64 {
		load := (cfg.Center-position)*cfg.Stiffness - speed*cfg.Damping
		if noise != nil {
			load += noise.Rand()
		}
		return load
	}
}
