package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/skyward/deconflict/pkg/streaming"
)

const (
	outboxSize   = 10_000
	ackChSize    = 16
	maxRedials   = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
	initialDelay = time.Second
)

// connection owns the underlying WebSocket. All writes go through a single
// goroutine draining the outbox, so callers never write concurrently.
type connection struct {
	mu       sync.Mutex
	sock     *ws.Conn
	closed   bool
	replay   []byte // run-opening message resent after a redial
	outbox   chan []byte
	acks     chan streaming.AckMessage
	shutdown chan struct{}

	wsURL  string
	secret string

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		outbox:   make(chan []byte, outboxSize),
		acks:     make(chan streaming.AckMessage, ackChSize),
		shutdown: make(chan struct{}),
		logger:   logger,
	}
}

// dial connects to the server and starts the read and write loops.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	sock, err := c.dialOnce()
	if err != nil {
		return err
	}

	c.swapSocket(sock)
	c.startLoops()
	return nil
}

// dialOnce performs a single dial with the shared secret as a query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", c.secret)
	u.RawQuery = q.Encode()

	sock, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return sock, nil
}

func (c *connection) startLoops() {
	go c.writeLoop()
	go c.readLoop()
}

func (c *connection) socket() *ws.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock
}

func (c *connection) swapSocket(sock *ws.Conn) {
	c.mu.Lock()
	c.sock = sock
	c.mu.Unlock()
}

// setReplay caches the run-opening message so it can be resent after a
// redial. Pass nil to clear it once the run ends.
func (c *connection) setReplay(data []byte) {
	c.mu.Lock()
	c.replay = data
	c.mu.Unlock()
}

// writeLoop drains the outbox onto the socket. It exits on shutdown or on
// the first write error, handing off to redial.
func (c *connection) writeLoop() {
	for {
		select {
		case <-c.shutdown:
			return
		case data := <-c.outbox:
			sock := c.socket()
			if sock == nil {
				continue
			}
			if err := writeFrame(sock, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				go c.redial()
				return
			}
		}
	}
}

func writeFrame(sock *ws.Conn, data []byte) error {
	if err := sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return sock.WriteMessage(ws.TextMessage, data)
}

// readLoop routes server acks to the acks channel. Anything that does not
// parse as an ack is logged and dropped.
func (c *connection) readLoop() {
	for {
		sock := c.socket()
		if sock == nil {
			return
		}

		_, message, err := sock.ReadMessage()
		if err != nil {
			select {
			case <-c.shutdown:
				return
			default:
			}
			c.logger.Warn("WebSocket read error", "error", err)
			go c.redial()
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != "ack" {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}

		select {
		case c.acks <- ack:
		default:
			c.logger.Debug("Ack channel full, dropping", "for", ack.For)
		}
	}
}

// redial re-establishes the connection with exponential backoff, resends
// the cached run-opening message, and restarts the loops.
func (c *connection) redial() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.sock != nil {
		_ = c.sock.Close()
		c.sock = nil
	}
	c.mu.Unlock()

	delay := initialDelay
	for attempt := 1; attempt <= maxRedials; attempt++ {
		select {
		case <-c.shutdown:
			return
		default:
		}

		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", delay)
		time.Sleep(delay)
		delay = min(delay*2, maxBackoff)

		sock, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			continue
		}

		c.mu.Lock()
		c.sock = sock
		cached := c.replay
		c.mu.Unlock()

		// The server tracks runs per connection, so the run-opening
		// message must be resent before anything else.
		if cached != nil {
			if err := writeFrame(sock, cached); err != nil {
				c.logger.Warn("Failed to replay run start after reconnect", "error", err)
				_ = sock.Close()
				continue
			}
		}

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		c.startLoops()
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxRedials)
}

// send queues data for the write loop. Non-blocking; drops when the
// outbox is full.
func (c *connection) send(data []byte) {
	select {
	case c.outbox <- data:
	default:
		c.logger.Warn("WebSocket send channel full, dropping message")
	}
}

// sendAndWait queues data and blocks until the server acks it or the
// timeout expires.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.acks:
			if ack.For == ackFor {
				return nil
			}
			// Ack for an earlier message, keep waiting.
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.shutdown:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a close frame and stops all goroutines. Safe to call twice.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.shutdown)

	sock := c.sock
	c.sock = nil
	c.mu.Unlock()

	if sock == nil {
		return nil
	}
	deadline := time.Now().Add(writeWait)
	_ = sock.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""), deadline)
	return sock.Close()
}
