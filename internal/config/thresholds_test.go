package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultThresholds_Valid(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
}

func TestThresholds_ValidateRejectsBrokenBands(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"zero volume window", func(c *Thresholds) { c.VolumeWindow = 0 }},
		{"min samples above window", func(c *Thresholds) { c.MinVolumeSamples = 30 }},
		{"non-monotonic spike bands", func(c *Thresholds) { c.SpikeStealthHigh = 1.0 }},
		{"bid-ask strong at 1.0", func(c *Thresholds) { c.BidAskStrong = 1.0 }},
		{"streak order inverted", func(c *Thresholds) { c.StreakWeak = 9 }},
		{"dry-up decay above 1", func(c *Thresholds) { c.DryUpDecay = 1.2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultThresholds()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestThresholds_BrokerSets(t *testing.T) {
	cfg := DefaultThresholds()

	assert.True(t, cfg.IsForeign("YU"))
	assert.False(t, cfg.IsForeign("PD"))
	assert.True(t, cfg.IsWatched("PD"))
	assert.False(t, cfg.IsWatched("CS"))
}
