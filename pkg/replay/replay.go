// Package replay reads and writes landmark recordings: JSON lines, one
// protocol.LandmarksData record per frame.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/teslashibe/go-gaze/pkg/drill"
	"github.com/teslashibe/go-gaze/pkg/protocol"
)

// ErrMalformedRecord is returned for a line that is not a landmarks record.
var ErrMalformedRecord = errors.New("replay: malformed record")

// maxLineSize fits a full 478-point mesh with room to spare.
const maxLineSize = 1 << 20

// Reader decodes a recording. It implements drill.FrameSource.
type Reader struct {
	sc   *bufio.Scanner
	line int

	// Pacing
	realtime bool
	origin   time.Time
	first    float64
	started  bool
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

// Realtime makes Next wait until each record's timestamp has elapsed,
// relative to the first record.
func (r *Reader) Realtime(on bool) *Reader {
	r.realtime = on
	return r
}

// Record returns the next raw record, or io.EOF at the end.
func (r *Reader) Record(ctx context.Context) (*protocol.LandmarksData, error) {
	for r.sc.Scan() {
		r.line++
		b := r.sc.Bytes()
		if len(b) == 0 || b[0] == '#' {
			continue
		}

		var rec protocol.LandmarksData
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, r.line, err)
		}
		if err := r.pace(ctx, rec.T); err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("replay: read: %w", err)
	}
	return nil, io.EOF
}

// Next returns the next frame, or io.EOF at the end of the recording.
func (r *Reader) Next(ctx context.Context) (drill.Frame, error) {
	rec, err := r.Record(ctx)
	if err != nil {
		return drill.Frame{}, err
	}
	f, err := rec.Frame()
	if err != nil {
		return drill.Frame{}, fmt.Errorf("%w: line %d: %v", ErrMalformedRecord, r.line, err)
	}
	return f, nil
}

func (r *Reader) pace(ctx context.Context, t float64) error {
	if !r.realtime {
		return nil
	}
	if !r.started {
		r.started = true
		r.origin = time.Now()
		r.first = t
		return nil
	}
	due := r.origin.Add(time.Duration((t - r.first) * float64(time.Second)))
	wait := time.Until(due)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// File is a Reader over an opened recording.
type File struct {
	*Reader
	f *os.File
}

// Open opens a recording file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open: %w", err)
	}
	return &File{Reader: NewReader(f), f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Writer encodes a recording.
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter creates a writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, enc: json.NewEncoder(bw)}
}

// Write appends one record.
func (w *Writer) Write(rec protocol.LandmarksData) error {
	return w.enc.Encode(rec)
}

// Flush writes buffered records.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
