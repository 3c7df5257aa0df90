// Package feed streams landmark recordings to a gaze drill server over a
// websocket, standing in for the camera client.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-gaze/internal/httpc"
	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// RecordSource yields landmark records; replay.Reader satisfies it.
type RecordSource interface {
	Record(ctx context.Context) (*protocol.LandmarksData, error)
}

// EventHandler receives server messages (target, progress, complete, error).
type EventHandler func(*protocol.Message)

// Client is a landmark feed connection.
type Client struct {
	url    string
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
}

// Dial connects to the server's landmark websocket.
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("feed: dial %s: %w", url, err)
	}
	return &Client{
		url:    url,
		conn:   conn,
		logger: log.With("component", "feed", "url", url),
	}, nil
}

// Send writes one protocol message.
func (c *Client) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Calibrate asks the server to calibrate the active drill.
func (c *Client) Calibrate() error {
	msg, err := protocol.NewControlMessage(protocol.ActionCalibrate)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// Reset asks the server to reset calibration on the active drill.
func (c *Client) Reset() error {
	msg, err := protocol.NewControlMessage(protocol.ActionReset)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// Stream sends every record from src until it is exhausted or ctx ends.
// It returns the number of records sent.
func (c *Client) Stream(ctx context.Context, src RecordSource) (int, error) {
	sent := 0
	for {
		rec, err := src.Record(ctx)
		if errors.Is(err, io.EOF) {
			c.logger.Info("recording finished", "records", sent)
			return sent, nil
		}
		if err != nil {
			return sent, err
		}
		msg, err := protocol.NewMessage(protocol.TypeLandmarks, rec)
		if err != nil {
			return sent, err
		}
		if err := c.Send(msg); err != nil {
			return sent, fmt.Errorf("feed: send: %w", err)
		}
		sent++
	}
}

// Watch connects to the server's status websocket and passes every message
// to h until the connection closes or ctx ends.
func Watch(ctx context.Context, url string, h EventHandler) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		return fmt.Errorf("feed: dial %s: %w", url, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			continue
		}
		h(msg)
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// StartDrill asks the server at apiBase (e.g. "http://localhost:8080") to
// start a drill with the given overrides.
func StartDrill(ctx context.Context, apiBase string, req protocol.StartDrillRequest) (*protocol.StartDrillResponse, error) {
	var res protocol.StartDrillResponse
	if err := httpc.PostJSON(ctx, apiBase+"/api/drills", req, &res); err != nil {
		return nil, fmt.Errorf("feed: start drill: %w", err)
	}
	return &res, nil
}
