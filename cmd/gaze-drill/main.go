// Gaze drill - prompts a sequence of gaze targets and confirms each one after
// a steady hold. Frames come from a landmark recording or a synthetic feed.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/debug"
	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/preview"
	"github.com/teslashibe/go-gaze/pkg/replay"
)

type options struct {
	cfg       drill.Config
	replay    string
	synthetic bool
	sequence  []gaze.Direction
	seed      uint64
	preview   bool
	realtime  bool
}

func main() {
	config.LoadDotEnv()
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cancel, opts); err != nil {
		log.Error("drill failed", "err", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags over the environment defaults.
func parseFlags() (options, error) {
	cfg := config.DrillFromEnv(drill.DefaultConfig())

	replayPath := flag.String("replay", "", "Landmark recording (JSONL) to drive the drill")
	synthetic := flag.Bool("synthetic", false, "Drive the drill with a synthetic subject that follows every target")
	k := flag.Int("k", cfg.Targets, "Number of targets")
	tauX := flag.Float64("tau-x", cfg.TauX, "Horizontal center threshold")
	tauY := flag.Float64("tau-y", cfg.TauY, "Vertical center threshold")
	hold := flag.Duration("hold", cfg.Hold, "Hold time required per target")
	jitter := flag.Duration("jitter", cfg.Jitter, "Max off-target time tolerated during a hold")
	ema := flag.Float64("ema", cfg.Smoothing, "Smoothing factor in [0,1]")
	relaxed := flag.Bool("relaxed", false, "Use wide thresholds for practice")
	sequence := flag.String("sequence", "", "Fixed target order, e.g. LEFT,UP,RIGHT")
	seed := flag.Uint64("seed", 0, "Seed for target selection (0 = random)")
	show := flag.Bool("preview", false, "Show an OpenCV preview window (c calibrate, r reset, q quit)")
	realtime := flag.Bool("realtime", false, "Pace recordings by their timestamps")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	debugTracking := flag.Bool("debug-tracking", false, "Log every processed frame")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Parse()

	if *relaxed {
		r := drill.RelaxedConfig()
		cfg.TauX, cfg.TauY = r.TauX, r.TauY
	}
	cfg.Targets, cfg.Hold, cfg.Jitter, cfg.Smoothing = *k, *hold, *jitter, *ema
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tau-x":
			cfg.TauX = *tauX
		case "tau-y":
			cfg.TauY = *tauY
		}
	})

	level := *logLevel
	if *debugFlag || *debugTracking {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = *debugFlag || *debugTracking
	debug.Tracking = *debugTracking

	opts := options{
		cfg:       cfg,
		replay:    *replayPath,
		synthetic: *synthetic,
		seed:      *seed,
		preview:   *show,
		realtime:  *realtime,
	}
	if *sequence != "" {
		for _, name := range strings.Split(*sequence, ",") {
			d, err := gaze.ParseDirection(name)
			if err != nil {
				return opts, err
			}
			if !d.IsTarget() {
				return opts, fmt.Errorf("not a drill target: %s", d)
			}
			opts.sequence = append(opts.sequence, d)
		}
		opts.cfg.Targets = len(opts.sequence)
	}
	if opts.replay == "" && !opts.synthetic {
		return opts, fmt.Errorf("one of -replay or -synthetic is required")
	}
	return opts, nil
}

func run(ctx context.Context, cancel context.CancelFunc, opts options) error {
	var sessionOpts []drill.Option
	switch {
	case len(opts.sequence) > 0:
		sessionOpts = append(sessionOpts, drill.WithRandomSource(drill.FixedTargets(opts.sequence...)))
	case opts.seed != 0:
		sessionOpts = append(sessionOpts, drill.WithRandomSource(drill.SeededRandom(opts.seed)))
	}

	var win *preview.Window
	if opts.preview {
		win = preview.New("Gaze Drill", 640, 480)
		defer win.Close()
		sessionOpts = append(sessionOpts, drill.WithObserver(func(p drill.Progress, r gaze.Reading) {
			win.Render(p, r)
		}))
	}

	// The synthetic recording is written once the targets are known; the
	// reader does not touch the buffer until the first frame is pulled.
	var (
		reader    *replay.Reader
		synthetic bytes.Buffer
	)
	if opts.synthetic {
		reader = replay.NewReader(&synthetic)
	} else {
		f, err := replay.Open(opts.replay)
		if err != nil {
			return err
		}
		defer f.Close()
		reader = f.Reader
	}
	reader.Realtime(opts.realtime)

	var src drill.FrameSource = reader
	if win != nil {
		src = &previewSource{FrameSource: reader, win: win, cancel: cancel}
	}

	session, err := drill.NewSession(opts.cfg, src, sessionOpts...)
	if err != nil {
		return err
	}
	if win != nil {
		src.(*previewSource).session = session
	}

	if opts.synthetic {
		if err := synthesize(&synthetic, session); err != nil {
			return err
		}
	}

	fmt.Printf("🎯 Drill %s: %d targets\n", session.ID(), len(session.Targets()))
	for i := 0; ; i++ {
		target, ok, err := session.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		fmt.Printf("👉 [%d/%d] Look %s and hold\n", i+1, len(session.Targets()), target)
	}

	summary := session.Summary()
	fmt.Printf("✅ Done %d/%d in %d frames (offset %.3f, %.3f)\n",
		summary.Confirmed, len(summary.Targets), summary.Frames, summary.Offset.X, summary.Offset.Y)
	return nil
}

// synthesize writes a recording of a subject who looks at each target for
// longer than the hold, returning to center in between.
func synthesize(buf *bytes.Buffer, session *drill.Session) error {
	cfg := session.Config()
	segments := []replay.Segment{{Look: gaze.Center, Duration: 500 * time.Millisecond}}
	for _, t := range session.Targets() {
		segments = append(segments,
			replay.Segment{Look: t, Duration: cfg.Hold + 500*time.Millisecond},
			replay.Segment{Look: gaze.Center, Duration: 300 * time.Millisecond},
		)
	}
	return replay.Synthesize(replay.NewWriter(buf), 30, segments...)
}

// previewSource polls the preview window for keys before each frame.
type previewSource struct {
	drill.FrameSource
	win     *preview.Window
	session *drill.Session
	cancel  context.CancelFunc
}

func (p *previewSource) Next(ctx context.Context) (drill.Frame, error) {
	switch p.win.Poll(1) {
	case preview.ActionCalibrate:
		p.session.Calibrate()
	case preview.ActionReset:
		p.session.Reset()
	case preview.ActionQuit:
		p.cancel()
	}
	return p.FrameSource.Next(ctx)
}
