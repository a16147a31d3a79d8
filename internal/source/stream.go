package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bidtest/internal/model"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 16 * time.Second
)

// StreamSource collects observations for both groups from a WebSocket feed.
// Each message is a JSON object carrying a "group" field ("control" or
// "test") and the four metric fields.
type StreamSource struct {
	logger       *slog.Logger
	url          string
	rowsPerGroup int
	timeout      time.Duration
	backoff      time.Duration
	dialer       *websocket.Dialer
}

// NewStreamSource creates a new StreamSource.
func NewStreamSource(logger *slog.Logger, url string, rowsPerGroup int, timeout time.Duration) *StreamSource {
	return &StreamSource{
		logger:       logger,
		url:          url,
		rowsPerGroup: rowsPerGroup,
		timeout:      timeout,
		backoff:      initialBackoff,
		dialer:       websocket.DefaultDialer,
	}
}

func (s *StreamSource) Name() string {
	return "stream:" + s.url
}

// Load connects to the feed and returns once each group holds rowsPerGroup
// observations. Dropped connections are retried with exponential backoff.
func (s *StreamSource) Load(ctx context.Context) (control, test model.Group, err error) {
	if s.rowsPerGroup <= 0 {
		return control, test, fmt.Errorf("stream: rows per group must be positive")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	control = model.Group{Name: ControlGroup}
	test = model.Group{Name: TestGroup}
	full := func() bool {
		return len(control.Rows) >= s.rowsPerGroup && len(test.Rows) >= s.rowsPerGroup
	}

	backoff := s.backoff
	for !full() {
		if ctx.Err() != nil {
			return control, test, fmt.Errorf("stream: collected %d control and %d test rows: %w",
				len(control.Rows), len(test.Rows), ctx.Err())
		}

		s.logger.Info("StreamSource: connecting to WebSocket", "url", s.url, "backoff", backoff)
		c, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			s.logger.Error("StreamSource: WebSocket connection failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
				backoff = min(backoff*2, maxBackoff)
			}
			continue
		}

		s.logger.Info("StreamSource: connected successfully")

		stop := context.AfterFunc(ctx, func() { c.Close() })
		received := s.consume(c, &control, &test, full)
		stop()
		c.Close()

		// Reset backoff only once the feed has delivered data.
		if received > 0 {
			backoff = s.backoff
		}
		if !full() {
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
				if received == 0 {
					backoff = min(backoff*2, maxBackoff)
				}
			}
		}
	}
	return control, test, nil
}

// consume reads messages until both groups are full or the connection fails.
// It returns the number of messages read.
func (s *StreamSource) consume(c *websocket.Conn, control, test *model.Group, full func() bool) int {
	var received int
	for !full() {
		_, message, err := c.ReadMessage()
		if err != nil {
			s.logger.Error("StreamSource: failed to read message", "error", err)
			return received
		}
		received++

		group, obs, err := decodeMessage(message)
		if err != nil {
			s.logger.Warn("StreamSource: failed to parse message", "error", err)
			continue
		}

		switch group {
		case ControlGroup:
			if len(control.Rows) < s.rowsPerGroup {
				control.Rows = append(control.Rows, obs)
			}
		case TestGroup:
			if len(test.Rows) < s.rowsPerGroup {
				test.Rows = append(test.Rows, obs)
			}
		}
		s.logger.Debug("StreamSource: received observation", "group", group,
			"control", len(control.Rows), "test", len(test.Rows))
	}
	return received
}

func decodeMessage(message []byte) (string, model.Observation, error) {
	var envelope struct {
		Group string `json:"group"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil {
		return "", model.Observation{}, err
	}
	group := strings.ToLower(strings.TrimSpace(envelope.Group))
	if group != ControlGroup && group != TestGroup {
		return "", model.Observation{}, fmt.Errorf("unknown group %q", envelope.Group)
	}

	var obs model.Observation
	if err := json.Unmarshal(message, &obs); err != nil {
		return "", model.Observation{}, err
	}
	return group, obs, nil
}
