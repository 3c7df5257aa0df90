// Gaze feed - streams a landmark recording (or a synthetic subject) to a
// gaze server and prints the drill events it sends back.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/teslashibe/go-gaze/internal/config"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/feed"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/protocol"
	"github.com/teslashibe/go-gaze/pkg/replay"
)

func main() {
	config.LoadDotEnv()

	serverURL := flag.String("url", config.ServerURL(), "Landmark websocket URL")
	replayPath := flag.String("replay", "", "Landmark recording (JSONL) to stream")
	start := flag.Bool("start", true, "Start a drill before streaming")
	sequence := flag.String("sequence", "", "Fixed target order for the started drill, e.g. LEFT,UP")
	k := flag.Int("k", 0, "Number of targets for the started drill (0 = server default)")
	hold := flag.Duration("hold", 0, "Hold time for the started drill (0 = server default)")
	realtime := flag.Bool("realtime", true, "Pace frames by their timestamps")
	calibrate := flag.Bool("calibrate", false, "Send a calibrate event after the first second")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Parse()
	log.Init(*logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiBase, statusURL, err := endpoints(*serverURL)
	if err != nil {
		log.Error("bad server url", "err", err)
		os.Exit(2)
	}

	var targets []gaze.Direction
	holdTime := drill.DefaultConfig().Hold
	if *start {
		req := protocol.StartDrillRequest{}
		if *sequence != "" {
			req.Sequence = strings.Split(*sequence, ",")
		}
		if *k > 0 {
			req.Targets = k
		}
		if *hold > 0 {
			sec := hold.Seconds()
			req.HoldSec = &sec
			holdTime = *hold
		}
		res, err := feed.StartDrill(ctx, apiBase, req)
		if err != nil {
			log.Error("start drill", "err", err)
			os.Exit(1)
		}
		fmt.Printf("🎯 Drill %s: %s\n", res.Session, strings.Join(res.Targets, " "))
		for _, t := range res.Targets {
			d, err := gaze.ParseDirection(t)
			if err == nil {
				targets = append(targets, d)
			}
		}
	}

	go func() {
		err := feed.Watch(ctx, statusURL, printEvent(cancel))
		if err != nil && ctx.Err() == nil {
			log.Warn("status stream closed", "err", err)
		}
	}()

	reader, closeFn, err := openSource(*replayPath, targets, holdTime)
	if err != nil {
		log.Error("open recording", "err", err)
		os.Exit(1)
	}
	defer closeFn()
	reader.Realtime(*realtime)

	client, err := feed.Dial(ctx, *serverURL)
	if err != nil {
		log.Error("connect", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	if *calibrate {
		time.AfterFunc(time.Second, func() {
			if err := client.Calibrate(); err != nil {
				log.Warn("calibrate", "err", err)
			}
		})
	}

	sent, err := client.Stream(ctx, reader)
	if err != nil && ctx.Err() == nil {
		log.Error("stream", "err", err, "sent", sent)
		os.Exit(1)
	}

	// Give the server a moment to report the final events.
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
	}
}

// openSource opens the recording at path, or synthesizes one that follows
// targets when path is empty.
func openSource(path string, targets []gaze.Direction, hold time.Duration) (*replay.Reader, func() error, error) {
	if path != "" {
		f, err := replay.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return f.Reader, f.Close, nil
	}
	if len(targets) == 0 {
		return nil, nil, fmt.Errorf("no recording and no targets to synthesize")
	}
	segments := []replay.Segment{{Look: gaze.Center, Duration: time.Second}}
	for _, t := range targets {
		segments = append(segments,
			replay.Segment{Look: t, Duration: hold + 500*time.Millisecond},
			replay.Segment{Look: gaze.Center, Duration: 300 * time.Millisecond},
		)
	}
	var buf bytes.Buffer
	if err := replay.Synthesize(replay.NewWriter(&buf), 30, segments...); err != nil {
		return nil, nil, err
	}
	return replay.NewReader(&buf), func() error { return nil }, nil
}

// printEvent prints drill events and stops the feed once the drill ends.
func printEvent(stop context.CancelFunc) feed.EventHandler {
	return func(msg *protocol.Message) {
		switch msg.Type {
		case protocol.TypeTarget:
			if t, err := msg.GetTargetData(); err == nil {
				fmt.Printf("👉 [%d/%d] Look %s\n", t.Index+1, t.Total, t.Target)
			}
		case protocol.TypeProgress:
			if p, err := msg.GetProgressData(); err == nil && p.Success {
				fmt.Printf("✅ %s confirmed\n", p.Target)
			}
		case protocol.TypeComplete:
			var c protocol.CompleteData
			if err := msg.ParseData(&c); err == nil {
				fmt.Printf("🏁 Done %d targets in %d frames\n", len(c.Targets), c.Frames)
			}
			stop()
		case protocol.TypeError:
			var e protocol.ErrorData
			if err := msg.ParseData(&e); err == nil {
				fmt.Printf("❌ %s\n", e.Message)
			}
			stop()
		}
	}
}

// endpoints derives the REST base and status websocket URL from the
// landmark websocket URL.
func endpoints(landmarks string) (apiBase, status string, err error) {
	u, err := url.Parse(landmarks)
	if err != nil {
		return "", "", err
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	apiBase = scheme + "://" + u.Host
	st := *u
	st.Path = strings.TrimSuffix(u.Path, "/landmarks") + "/status"
	return apiBase, st.String(), nil
}
