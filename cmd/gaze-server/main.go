// Gaze server - hosts gaze drills for remote landmark clients and streams
// progress to dashboards over websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/debug"
	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/web"
)

func main() {
	config.LoadDotEnv()

	port := flag.String("port", config.ServerPort(), "HTTP port")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	relaxed := flag.Bool("relaxed", false, "Use wide thresholds by default")
	flag.Parse()

	level := *logLevel
	if *debugFlag {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = *debugFlag

	base := drill.DefaultConfig()
	if *relaxed {
		base = drill.RelaxedConfig()
	}
	base = config.DrillFromEnv(base)
	if err := base.Normalize().Validate(); err != nil {
		log.Error("invalid drill defaults", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := web.NewServer(*port, base)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}
	if err := server.Shutdown(); err != nil {
		log.Warn("shutdown", "err", err)
	}
}
