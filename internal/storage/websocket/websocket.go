// Package websocket implements the storage.Backend interface by streaming
// run data to a monitoring server over a WebSocket connection.
package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/skyward/deconflict/internal/logging"
	"github.com/skyward/deconflict/pkg/core"
	"github.com/skyward/deconflict/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams detection run data over WebSocket. It implements
// storage.Backend but not storage.Exportable.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logManager *logging.SlogManager) *Backend {
	return &Backend{
		conn: newConnection(logManager.Logger()),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// BeginRun sends the run parameters and waits for server ack.
func (b *Backend) BeginRun(summary core.RunSummary) error {
	data, err := marshalEnvelope(streaming.TypeBeginRun, streaming.NewBeginRunPayload(summary))
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.setReplay(data)

	return b.conn.sendAndWait(data, streaming.TypeBeginRun, ackTimeout)
}

// EndRun sends end_run with final counts and waits for server ack.
func (b *Backend) EndRun(summary core.RunSummary) error {
	data, err := marshalEnvelope(streaming.TypeEndRun, streaming.NewEndRunPayload(summary))
	if err != nil {
		return err
	}

	err = b.conn.sendAndWait(data, streaming.TypeEndRun, ackTimeout)

	// Clear cached state regardless of error.
	b.conn.setReplay(nil)

	return err
}

// AddMission streams a mission (fire-and-forget).
func (b *Backend) AddMission(m *core.Mission) error {
	return b.sendEnvelope(streaming.TypeMission, m)
}

// RecordConflict streams a conflict (fire-and-forget).
func (b *Backend) RecordConflict(c core.Conflict) error {
	return b.sendEnvelope(streaming.TypeConflict, c)
}
