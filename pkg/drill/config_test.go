package drill

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero jitter", func(c *Config) { c.Jitter = 0 }, false},
		{"no targets", func(c *Config) { c.Targets = 0 }, true},
		{"too many targets", func(c *Config) { c.Targets = 101 }, true},
		{"zero tau", func(c *Config) { c.TauX = 0 }, true},
		{"wide tau", func(c *Config) { c.TauY = 2.5 }, true},
		{"zero hold", func(c *Config) { c.Hold = 0 }, true},
		{"negative jitter", func(c *Config) { c.Jitter = -time.Millisecond }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.3, 0.3},
		{7, 1},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Smoothing = tt.in
		if got := cfg.Normalize().Smoothing; got != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigPipeline(t *testing.T) {
	cfg := RelaxedConfig()
	pc := cfg.Pipeline()
	if pc.Thresholds.TauX != 0.7 || pc.Thresholds.TauY != 0.55 {
		t.Errorf("thresholds = %+v", pc.Thresholds)
	}
	if pc.Thresholds.EyeOpen != 0.18 {
		t.Errorf("EyeOpen = %v, want 0.18", pc.Thresholds.EyeOpen)
	}
}
