// Package landmark connects the scene to an external hand-tracking bridge.
//
// The bridge owns the camera and runs landmark extraction (for example a
// browser page running MediaPipe Hands). It streams one JSON message per
// processed video frame over a WebSocket:
//
//	{"t": 1712345678901, "hands": [[{"x":0.51,"y":0.62,"z":-0.01}, ...21 points]]}
//
// [Stream] implements both evergreen.Capture and evergreen.Detector, so a
// session can use it as its only gesture input.
package landmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phanxgames/evergreen"
)

// ErrNotOpen is returned by Init when the stream has not been opened.
var ErrNotOpen = errors.New("landmark: stream not open")

// message is one frame from the bridge.
type message struct {
	TimestampMs int64                  `json:"t"`
	Hands       [][]evergreen.Landmark `json:"hands"`
}

// Stream reads landmark frames from a WebSocket bridge. Only the most
// recent frame is kept; the frame loop reads at its own cadence.
type Stream struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	latest evergreen.Frame
	fresh  bool
	err    error // terminal read error, if any

	wg sync.WaitGroup
}

// Option configures a Stream.
type Option func(*Stream)

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(s *Stream) { s.dialer = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) { s.logger = logger }
}

// NewStream creates a stream for the bridge at url (ws:// or wss://).
func NewStream(url string, opts ...Option) *Stream {
	s := &Stream{
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Open dials the bridge and starts the reader goroutine.
func (s *Stream) Open(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("landmark: dial %s: %w", s.url, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.err = nil
	s.mu.Unlock()

	s.wg.Add(1)
	go s.readLoop(conn)
	return nil
}

// Init checks that the stream is connected. The bridge loads its model
// before it starts streaming, so there is nothing else to wait for.
func (s *Stream) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotOpen
	}
	return ctx.Err()
}

// Read returns the latest frame if it has not been returned before.
func (s *Stream) Read() (evergreen.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh {
		return evergreen.Frame{}, false
	}
	s.fresh = false
	return s.latest, true
}

// Detect returns the first complete hand in f. Frames from the bridge are
// already processed, so timestampMs is only used for ordering upstream.
// A stream whose connection dropped reports the read error once.
func (s *Stream) Detect(f evergreen.Frame, timestampMs int64) (*evergreen.HandSample, error) {
	s.mu.Lock()
	err := s.err
	s.err = nil
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(f.Hands) == 0 {
		return nil, nil
	}
	h := f.Hands[0]
	return &h, nil
}

// Close stops the reader and closes the connection. Safe to call more
// than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := conn.Close()
	s.wg.Wait()
	return err
}

func (s *Stream) readLoop(conn *websocket.Conn) {
	defer s.wg.Done()
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.logger.Warn("landmark: skipping malformed frame", "err", err)
				continue
			}
			s.finish(conn, err)
			return
		}
		s.store(msg)
	}
}

// finish records a terminal read error unless the stream was closed on
// purpose.
func (s *Stream) finish(conn *websocket.Conn, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Info("landmark: bridge closed the stream")
	} else {
		s.logger.Warn("landmark: stream read failed", "err", err)
	}
	s.err = fmt.Errorf("landmark: stream ended: %w", err)
	// Hand the loop an empty frame so the error reaches Detect.
	s.latest = evergreen.Frame{Timestamp: time.Now()}
	s.fresh = true
}

func (s *Stream) store(msg message) {
	f := evergreen.Frame{Timestamp: time.UnixMilli(msg.TimestampMs)}
	for _, pts := range msg.Hands {
		if len(pts) != evergreen.LandmarkCount {
			continue
		}
		var h evergreen.HandSample
		copy(h[:], pts)
		f.Hands = append(f.Hands, h)
	}
	s.mu.Lock()
	s.latest = f
	s.fresh = true
	s.mu.Unlock()
}
