package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	socketInitialBackoff = time.Second
	socketMaxBackoff     = time.Minute
	socketReadLimit      = 1 << 20 // 1 MiB per frame is generous for events.
)

// socketEnvelope is one frame on a socket-mode connection.
type socketEnvelope struct {
	EnvelopeID string `json:"envelope_id,omitempty"`
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`
	Payload    struct {
		Event Event `json:"event"`
	} `json:"payload"`
}

// socketAck acknowledges receipt of an envelope.
type socketAck struct {
	EnvelopeID string `json:"envelope_id"`
}

// Socket maintains a socket-mode connection to the platform and feeds
// message events to the demultiplexer. Reconnect and backoff live here; the
// demultiplexer below it never retries.
type Socket struct {
	client *Client
	demux  *Demux
	logger *slog.Logger
}

// NewSocket creates a socket-mode event source.
func NewSocket(client *Client, demux *Demux, logger *slog.Logger) *Socket {
	if logger == nil {
		logger = slog.Default()
	}
	return &Socket{client: client, demux: demux, logger: logger}
}

// Run connects and processes events until ctx is cancelled. Connection
// failures trigger reconnection with capped exponential backoff.
func (s *Socket) Run(ctx context.Context) error {
	backoff := socketInitialBackoff

	for {
		err := s.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn("socket: connection ended, reconnecting",
			"error", err,
			"backoff", backoff,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = min(backoff*2, socketMaxBackoff)
	}
}

// runConnection dials one socket-mode connection and reads it until it
// fails, the platform requests a refresh, or ctx is cancelled.
func (s *Socket) runConnection(ctx context.Context) error {
	wssURL, err := s.client.ConnectionsOpen(ctx)
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, wssURL, nil)
	if err != nil {
		return fmt.Errorf("slack: dial socket: %w", err)
	}
	conn.SetReadLimit(socketReadLimit)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()

	s.logger.Info("socket: connected")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("slack: read socket frame: %w", err)
		}

		var env socketEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("socket: undecodable frame skipped", "error", err)
			continue
		}

		// Envelopes must be acked promptly or the platform redelivers them.
		if env.EnvelopeID != "" {
			ack, _ := json.Marshal(socketAck{EnvelopeID: env.EnvelopeID})
			if err := conn.Write(ctx, websocket.MessageText, ack); err != nil {
				return fmt.Errorf("slack: ack envelope: %w", err)
			}
		}

		switch env.Type {
		case "hello":
			s.logger.Debug("socket: hello received")
		case "disconnect":
			return errors.New("slack: server requested disconnect: " + env.Reason)
		case "events_api":
			ev := env.Payload.Event
			if ev.Type != "message" {
				continue
			}
			if err := s.demux.HandleEvent(ev); err != nil {
				// Per-event failure; the stream keeps going.
				s.logger.Error("socket: event rejected", "error", err, "ts", ev.TS)
			}
		default:
			s.logger.Debug("socket: frame ignored", "type", env.Type)
		}
	}
}
