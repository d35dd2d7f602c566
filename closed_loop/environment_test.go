package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldLoadUnloaded(t *testing.T) {
	env := NewFieldLoad(EnvironmentConfig{})
	assert.Equal(t, 0.0, env(123, 4))
}

func TestFieldLoadSpringAndDamping(t *testing.T) {
	cfg := FieldLoadConfig()
	cfg.NoiseAmplitude = 0
	env := NewFieldLoad(cfg)

	assert.InDelta(t, 5.0, env(0, 0), 1e-12)
	assert.InDelta(t, -1.2, env(60, 2), 1e-12)
	assert.InDelta(t, 0.3, env(50, -3), 1e-12)
}

func TestFieldLoadNoise(t *testing.T) {
	cfg := EnvironmentConfig{NoiseAmplitude: 0.01, Seed: 7}
	a := NewFieldLoad(cfg)
	b := NewFieldLoad(cfg)

	distinct := map[float64]bool{}
	for i := 0; i < 500; i++ {
		na, nb := a(0, 0), b(0, 0)
		assert.Equal(t, na, nb, "same seed, same stream")
		assert.LessOrEqual(t, math.Abs(na), cfg.NoiseAmplitude)
		distinct[na] = true
	}
	assert.Greater(t, len(distinct), 400)

	other := NewFieldLoad(EnvironmentConfig{NoiseAmplitude: 0.01, Seed: 8})
	assert.NotEqual(t, NewFieldLoad(cfg)(0, 0), other(0, 0))
}

func TestEnvironmentValidate(t *testing.T) {
	assert.NoError(t, FieldLoadConfig().Validate())
	assert.Error(t, EnvironmentConfig{Stiffness: math.NaN()}.Validate())
	assert.Error(t, EnvironmentConfig{Center: math.Inf(-1)}.Validate())
	assert.Error(t, EnvironmentConfig{NoiseAmplitude: -0.1}.Validate())
}
