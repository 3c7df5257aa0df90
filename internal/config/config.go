// Package config provides configuration helpers for go-gaze commands.
package config

import (
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/teslashibe/go-gaze/pkg/drill"
)

// Defaults for the command-line tools.
const (
	DefaultServerPort = "8080"
	DefaultServerURL  = "ws://localhost:8080/ws/landmarks"
	DefaultLogLevel   = "info"
)

// LoadDotEnv loads a .env file if present. Existing variables win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// ServerPort returns the dashboard port from GAZE_PORT or the default.
func ServerPort() string {
	if port := os.Getenv("GAZE_PORT"); port != "" {
		return port
	}
	return DefaultServerPort
}

// ServerURL returns the landmark ingest URL from GAZE_SERVER_URL or the default.
func ServerURL() string {
	if u := os.Getenv("GAZE_SERVER_URL"); u != "" {
		return u
	}
	return DefaultServerURL
}

// LogLevel returns the log level from GAZE_LOG_LEVEL or the default.
func LogLevel() string {
	if lvl := os.Getenv("GAZE_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}

// DrillFromEnv overlays GAZE_* variables on base. Unparseable values are ignored.
//
//	GAZE_TARGETS   int
//	GAZE_TAU_X     float
//	GAZE_TAU_Y     float
//	GAZE_HOLD      duration ("3s") or seconds ("3.0")
//	GAZE_JITTER    duration or seconds
//	GAZE_EMA       float
func DrillFromEnv(base drill.Config) drill.Config {
	cfg := base
	if v, ok := envInt("GAZE_TARGETS"); ok {
		cfg.Targets = v
	}
	if v, ok := envFloat("GAZE_TAU_X"); ok {
		cfg.TauX = v
	}
	if v, ok := envFloat("GAZE_TAU_Y"); ok {
		cfg.TauY = v
	}
	if v, ok := envDuration("GAZE_HOLD"); ok {
		cfg.Hold = v
	}
	if v, ok := envDuration("GAZE_JITTER"); ok {
		cfg.Jitter = v
	}
	if v, ok := envFloat("GAZE_EMA"); ok {
		cfg.Smoothing = v
	}
	return cfg
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

func envFloat(key string) (float64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// ParseSeconds accepts either a Go duration ("150ms") or plain seconds ("0.15").
func ParseSeconds(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(math.Round(f * float64(time.Second))), nil
}

func envDuration(key string) (time.Duration, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	d, err := ParseSeconds(s)
	return d, err == nil
}
