package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, ValidateConfig(GetDefaultConfig()))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"critical below high", func(c *Config) { c.Analysis.Thresholds.MemoryCritical = 70 }},
		{"threshold above 100", func(c *Config) { c.Analysis.Thresholds.DiskHigh = 120 }},
		{"leak window larger than min samples", func(c *Config) { c.Analysis.Leak.WindowSize = 20 }},
		{"growing ratio above one", func(c *Config) { c.Analysis.Leak.GrowingRatio = 1.5 }},
		{"interval too short", func(c *Config) { c.Collector.Interval = time.Millisecond }},
		{"bad port", func(c *Config) { c.Web.Port = 70000 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"sqlite without path", func(c *Config) { c.Storage.Enabled = true; c.Storage.SQLitePath = "" }},
		{"unknown notifier", func(c *Config) {
			c.Alerts.Notifiers = map[string]NotifierConfig{"x": {Type: "carrier-pigeon"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(&config)
			assert.ErrorIs(t, ValidateConfig(config), ErrInvalidConfig)
		})
	}
}
