package control

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ProfileConfig)
		wantErr bool
		field   string
	}{
		{name: "defaults", mutate: func(c *ProfileConfig) {}},
		{name: "zero target speed is allowed", mutate: func(c *ProfileConfig) { c.TargetSpeed = 0 }},
		{name: "anti-windup limit", mutate: func(c *ProfileConfig) { c.IntegralLimit = 4 }},
		{name: "zero torque limit", mutate: func(c *ProfileConfig) { c.LimitTorque = 0 }, wantErr: true, field: "limit_torque"},
		{name: "negative torque limit", mutate: func(c *ProfileConfig) { c.LimitTorque = -1 }, wantErr: true, field: "limit_torque"},
		{name: "zero decel", mutate: func(c *ProfileConfig) { c.TargetDec = 0 }, wantErr: true, field: "target_dec"},
		{name: "negative accel", mutate: func(c *ProfileConfig) { c.TargetAcc = -0.5 }, wantErr: true, field: "target_acc"},
		{name: "NaN motor gain", mutate: func(c *ProfileConfig) { c.MotorGain = math.NaN() }, wantErr: true, field: "motor_gain"},
		{name: "infinite speed", mutate: func(c *ProfileConfig) { c.TargetSpeed = math.Inf(1) }, wantErr: true, field: "target_speed"},
		{name: "zero integral gain", mutate: func(c *ProfileConfig) { c.IntegralGain = 0 }, wantErr: true, field: "integral_gain"},
		{name: "zero derivative gain", mutate: func(c *ProfileConfig) { c.DerivativeGain = 0 }, wantErr: true, field: "derivative_gain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultProfileConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNewServoRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultProfileConfig()
	cfg.TargetDec = -1.3

	servo, err := NewServo(cfg, nil)
	assert.Nil(t, servo)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
