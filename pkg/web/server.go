// Package web serves the gaze drill dashboard: a landmark ingest websocket,
// a status websocket and a small REST API for starting drills and sending
// calibrate/reset events.
package web

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/hub"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

const (
	// frameBuffer bounds landmark frames waiting for the drill goroutine.
	frameBuffer = 64

	// maxHistory bounds the finished-run summaries kept in memory.
	maxHistory = 50
)

// ErrNoActiveDrill is returned when a control arrives with no drill running.
var ErrNoActiveDrill = errors.New("web: no active drill")

// DrillState is the dashboard view of the active run.
type DrillState struct {
	Active    bool     `json:"active"`
	Session   string   `json:"session,omitempty"`
	Targets   []string `json:"targets,omitempty"`
	Target    string   `json:"target,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Remaining float64  `json:"remaining"` // seconds
	Index     int      `json:"index"`
	Total     int      `json:"total"`
	Done      bool     `json:"done"`
	Error     string   `json:"error,omitempty"`
	Frames    int      `json:"frames"`
	Dropped   uint64   `json:"dropped_frames"`
}

// run is one drill in progress.
type run struct {
	session *drill.Session
	source  *drill.ChanSource
	cancel  context.CancelFunc
	done    chan struct{}
}

// Server is the dashboard server.
type Server struct {
	app    *fiber.App
	port   string
	base   drill.Config
	logger *slog.Logger

	statusHub *hub.Hub
	hubCancel context.CancelFunc

	mu      sync.RWMutex
	current *run
	state   DrillState
	history []drill.Summary
	dropped uint64
}

// NewServer creates a dashboard server. base supplies the defaults for
// drills started without overrides.
func NewServer(port string, base drill.Config) *Server {
	s := &Server{
		port:      port,
		base:      base,
		logger:    log.With("component", "web"),
		statusHub: hub.New("status"),
		history:   make([]drill.Summary, 0, maxHistory),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gaze Drill",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/drills", s.handleStartDrill)
	api.Get("/drills", s.handleListDrills)
	api.Get("/drills/:id", s.handleGetDrill)
	api.Delete("/drills/current", s.handleStopDrill)
	api.Post("/calibrate", s.handleCalibrate)
	api.Post("/reset", s.handleReset)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/landmarks", websocket.New(s.handleLandmarksWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// StartHub starts the status broadcast hub. Start calls it; tests that use
// App directly call it themselves.
func (s *Server) StartHub(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.hubCancel = cancel
	go s.statusHub.Run(ctx)
}

// Start starts the web server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("dashboard listening", "url", "http://localhost:"+s.port)
	s.StartHub(ctx)
	return s.app.Listen(":" + s.port)
}

// Shutdown stops the active drill and the web server.
func (s *Server) Shutdown() error {
	s.StopDrill()
	if s.hubCancel != nil {
		s.hubCancel()
	}
	return s.app.Shutdown()
}

// StartDrill starts a new drill and stops the one it replaces.
func (s *Server) StartDrill(cfg drill.Config, opts ...drill.Option) (*drill.Session, error) {
	src := drill.NewChanSource(frameBuffer)

	r := &run{source: src, done: make(chan struct{})}
	opts = append(opts, drill.WithObserver(s.observer(r)))
	session, err := drill.NewSession(cfg, src, opts...)
	if err != nil {
		return nil, err
	}
	r.session = session

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	// Swap under one lock so concurrent starts each stop exactly the run
	// they replaced.
	targets := session.Targets()
	s.mu.Lock()
	old := s.current
	s.current = r
	s.dropped = 0
	s.state = DrillState{
		Active:    true,
		Session:   session.ID(),
		Targets:   directionStrings(targets),
		Target:    string(targets[0]),
		Remaining: session.Config().Hold.Seconds(),
		Total:     len(targets),
	}
	s.mu.Unlock()

	go s.drive(ctx, r)
	stopRun(old)
	return session, nil
}

// StopDrill cancels the active drill, if any, and waits for it to finish.
func (s *Server) StopDrill() {
	s.mu.Lock()
	r := s.current
	s.current = nil
	s.mu.Unlock()
	stopRun(r)
}

// stopRun cancels r and waits for its drive loop to record the summary.
func stopRun(r *run) {
	if r == nil {
		return
	}
	r.cancel()
	r.source.Close()
	<-r.done
}

// Control forwards a calibrate or reset action to the active drill.
func (s *Server) Control(action string) error {
	s.mu.RLock()
	r := s.current
	s.mu.RUnlock()
	if r == nil {
		return ErrNoActiveDrill
	}

	switch action {
	case protocol.ActionCalibrate:
		r.session.Calibrate()
	case protocol.ActionReset:
		r.session.Reset()
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown action: "+action)
	}
	return nil
}

// PushFrame hands a frame to the active drill. Frames are dropped when the
// drill goroutine falls behind.
func (s *Server) PushFrame(f drill.Frame) error {
	s.mu.RLock()
	r := s.current
	s.mu.RUnlock()
	if r == nil {
		return ErrNoActiveDrill
	}
	if !r.source.TryPush(f) {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
	return nil
}

// State returns a copy of the dashboard state.
func (s *Server) State() DrillState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Dropped = s.dropped
	st.Targets = append([]string(nil), s.state.Targets...)
	return st
}

// drive pulls targets from the session until it completes or fails.
func (s *Server) drive(ctx context.Context, r *run) {
	defer close(r.done)
	id := r.session.ID()
	total := len(r.session.Targets())
	index := 0

	for {
		target, ok, err := r.session.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("drill stopped", "session", id, "err", err)
				s.broadcast(protocol.NewErrorMessage(id, err))
			}
			s.finish(r, err)
			return
		}
		if !ok {
			s.broadcast(protocol.NewCompleteMessage(r.session.Summary()))
			s.finish(r, nil)
			return
		}
		s.broadcast(protocol.NewTargetMessage(id, target, index, total))
		index++
	}
}

// observer returns the per-frame hook for r.
func (s *Server) observer(r *run) drill.Observer {
	return func(p drill.Progress, reading gaze.Reading) {
		id := r.session.ID()
		s.mu.Lock()
		if s.current == r {
			s.state.Direction = string(reading.Direction)
			s.state.Remaining = p.Remaining.Seconds()
			s.state.Frames++
			s.state.Index = p.Index
			if p.Success {
				s.state.Index = p.Index + 1
			}
			s.state.Done = p.Done
			if p.Next != "" {
				s.state.Target = string(p.Next)
				s.state.Remaining = r.session.Config().Hold.Seconds()
			}
		}
		s.mu.Unlock()
		s.broadcast(protocol.NewProgressMessage(id, p, reading))
	}
}

// finish records the run summary and clears it if still current.
func (s *Server) finish(r *run, err error) {
	summary := r.session.Summary()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, summary)
	if len(s.history) > maxHistory {
		s.history = s.history[1:]
	}
	if s.state.Session == summary.ID {
		s.state.Active = false
		s.state.Done = summary.Done
		if err != nil {
			s.state.Error = err.Error()
		}
	}
	if s.current == r {
		s.current = nil
	}
	r.source.Close()
	r.cancel()
}

// Summary finds a finished run by id.
func (s *Server) Summary(id string) (drill.Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID == id {
			return s.history[i], true
		}
	}
	return drill.Summary{}, false
}

func (s *Server) broadcast(msg *protocol.Message, err error) {
	if err == nil {
		err = s.statusHub.Publish(msg)
	}
	if err != nil {
		s.logger.Error("encode message", "err", err)
	}
}

// StatusHub returns the status hub for external use.
func (s *Server) StatusHub() *hub.Hub {
	return s.statusHub
}

func directionStrings(ds []gaze.Direction) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

// secondsToDuration converts a seconds value from a request body.
func secondsToDuration(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}
