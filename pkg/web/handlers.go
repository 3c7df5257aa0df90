package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-gaze/pkg/debug"
	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/gaze"
	"github.com/teslashibe/go-gaze/pkg/hub"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// applyRequest overlays the request on base.
func applyRequest(r protocol.StartDrillRequest, base drill.Config) (drill.Config, []drill.Option, error) {
	cfg := base
	if r.Targets != nil {
		cfg.Targets = *r.Targets
	}
	if r.TauX != nil {
		cfg.TauX = *r.TauX
	}
	if r.TauY != nil {
		cfg.TauY = *r.TauY
	}
	if r.HoldSec != nil {
		cfg.Hold = secondsToDuration(*r.HoldSec)
	}
	if r.JitterSec != nil {
		cfg.Jitter = secondsToDuration(*r.JitterSec)
	}
	if r.EMA != nil {
		cfg.Smoothing = *r.EMA
	}

	var opts []drill.Option
	if len(r.Sequence) > 0 {
		dirs := make([]gaze.Direction, len(r.Sequence))
		for i, s := range r.Sequence {
			d, err := gaze.ParseDirection(s)
			if err != nil {
				return cfg, nil, err
			}
			if !d.IsTarget() {
				return cfg, nil, fiber.NewError(fiber.StatusBadRequest, "not a drill target: "+s)
			}
			dirs[i] = d
		}
		cfg.Targets = len(dirs)
		opts = append(opts, drill.WithRandomSource(drill.FixedTargets(dirs...)))
	}
	return cfg, opts, nil
}

// handleStatus returns the active drill state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := s.State()
	return c.JSON(fiber.Map{
		"drill":   st,
		"clients": s.statusHub.ClientCount(),
	})
}

// handleStartDrill starts a new drill, replacing any active one.
func (s *Server) handleStartDrill(c *fiber.Ctx) error {
	var req protocol.StartDrillRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	cfg, opts, err := applyRequest(req, s.base)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, err := s.StartDrill(cfg, opts...)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, drill.ErrInvalidConfig) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(protocol.StartDrillResponse{
		Session: session.ID(),
		Targets: directionStrings(session.Targets()),
	})
}

// handleListDrills returns finished drill summaries, newest last.
func (s *Server) handleListDrills(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.history)
}

// handleGetDrill returns one finished drill, or the active one's state.
func (s *Server) handleGetDrill(c *fiber.Ctx) error {
	id := c.Params("id")
	if summary, ok := s.Summary(id); ok {
		return c.JSON(summary)
	}
	if st := s.State(); st.Active && st.Session == id {
		return c.JSON(st)
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "drill not found"})
}

// handleStopDrill cancels the active drill.
func (s *Server) handleStopDrill(c *fiber.Ctx) error {
	s.StopDrill()
	return c.SendStatus(fiber.StatusNoContent)
}

// handleCalibrate queues a calibration on the active drill.
func (s *Server) handleCalibrate(c *fiber.Ctx) error {
	return s.respondControl(c, protocol.ActionCalibrate)
}

// handleReset queues a calibration reset on the active drill.
func (s *Server) handleReset(c *fiber.Ctx) error {
	return s.respondControl(c, protocol.ActionReset)
}

func (s *Server) respondControl(c *fiber.Ctx, action string) error {
	if err := s.Control(action); err != nil {
		if errors.Is(err, ErrNoActiveDrill) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}
	return c.JSON(fiber.Map{"action": action, "queued": true})
}

// handleStatusWS streams drill events to a dashboard client. The optional
// types query (e.g. "?types=target,complete") limits which events it gets.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	filter := hub.ParseFilter(c.Query("types"))

	// Send current state first
	if filter.Accepts(protocol.TypeProgress) {
		if msg, err := protocol.NewMessage(protocol.TypeProgress, s.State()); err == nil {
			if data, err := msg.Bytes(); err == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}
		}
	}
	hub.NewClient(s.statusHub, c, filter).Run()
}

// handleLandmarksWS reads frames and controls from a landmark client.
func (s *Server) handleLandmarksWS(c *websocket.Conn) {
	logger := s.logger.With("remote", c.RemoteAddr().String())
	logger.Info("landmark client connected")
	defer logger.Info("landmark client disconnected")

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			logger.Debug("parse error", "err", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeLandmarks:
			lm, err := msg.GetLandmarksData()
			if err != nil {
				logger.Debug("bad landmarks", "err", err)
				continue
			}
			frame, err := lm.Frame()
			if err != nil {
				logger.Debug("bad landmarks", "err", err)
				continue
			}
			if err := s.PushFrame(frame); err != nil {
				debug.Log("frame ignored", "err", err)
			}

		case protocol.TypeControl:
			ctl, err := msg.GetControlData()
			if err != nil {
				continue
			}
			if err := s.Control(ctl.Action); err != nil {
				logger.Warn("control rejected", "action", ctl.Action, "err", err)
			}

		case protocol.TypePing:
			var ping protocol.PingData
			if err := msg.ParseData(&ping); err != nil {
				continue
			}
			if pong, err := protocol.NewPongMessage(ping); err == nil {
				if out, err := pong.Bytes(); err == nil {
					c.WriteMessage(websocket.TextMessage, out)
				}
			}
		}
	}
}
