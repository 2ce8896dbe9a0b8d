// Package push maintains the persistent WebSocket channel carrying
// server-initiated position updates. The channel reconnects forever on a
// fixed delay; the backend is expected to come back eventually, so there is
// no give-up state.
package push

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/railops/console/core/metrics"
	"github.com/railops/console/core/model"
	"github.com/railops/console/infra/logger"
)

// envelopePositions is the only envelope type this channel applies; any
// other type is dropped silently.
const envelopePositions = "train_positions"

// Config defines the push channel connection parameters.
type Config struct {
	URL              string `json:"url"`
	ReconnectSeconds int    `json:"reconnect_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ReconnectSeconds <= 0 {
		c.ReconnectSeconds = 3
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Handler receives each decoded position batch.
type Handler func([]model.TrainPosition)

// Channel owns the socket and its reconnect loop. Start and Stop bound its
// lifetime; no package-level state survives a Stop.
type Channel struct {
	cfg     Config
	handler Handler
	sink    metrics.Sink
	log     logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	live bool
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Channel delivering decoded batches to handler.
func New(cfg Config, handler Handler, sink metrics.Sink) *Channel {
	cfg.SetDefaults()
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Channel{
		cfg:     cfg,
		handler: handler,
		sink:    sink,
		log:     logger.New("push-channel"),
	}
}

// Start launches the connect/read loop. It returns immediately; delivery
// happens on the channel's own goroutine.
func (c *Channel) Start() {
	c.mu.Lock()
	if c.done != nil {
		c.mu.Unlock()
		return
	}
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(done)
}

// Stop tears the channel down: the socket is closed and the loop exits. It
// is safe to call more than once.
func (c *Channel) Stop() {
	c.mu.Lock()
	if c.done == nil {
		c.mu.Unlock()
		return
	}
	close(c.done)
	c.done = nil
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Live reports whether the socket is currently connected.
func (c *Channel) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

func (c *Channel) run(done chan struct{}) {
	defer c.wg.Done()
	delay := time.Duration(c.cfg.ReconnectSeconds) * time.Second
	for {
		select {
		case <-done:
			return
		default:
		}
		if err := c.connectAndRead(done); err != nil {
			c.log.Warnf("push channel down: %v", err)
		}
		c.setLive(false, nil)
		select {
		case <-done:
			return
		case <-time.After(delay):
			c.sink.RecordPushReconnect()
		}
	}
}

func (c *Channel) connectAndRead(done chan struct{}) error {
	conn, _, err := websocket.DefaultDialer.Dial(c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	c.setLive(true, conn)
	c.log.Infof("push channel connected to %s", c.cfg.URL)
	for {
		select {
		case <-done:
			_ = conn.Close()
			return nil
		default:
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("read: %w", err)
		}
		c.dispatch(raw)
	}
}

// dispatch decodes one envelope. Unrecognized or malformed envelopes are
// dropped; the previous state is retained.
func (c *Channel) dispatch(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debugf("dropping malformed envelope: %v", err)
		return
	}
	if env.Type != envelopePositions {
		return
	}
	var positions []model.TrainPosition
	if err := json.Unmarshal(env.Data, &positions); err != nil {
		c.log.Debugf("dropping malformed position batch: %v", err)
		return
	}
	c.sink.RecordPushMessage()
	if c.handler != nil {
		c.handler(positions)
	}
}

func (c *Channel) setLive(live bool, conn *websocket.Conn) {
	c.mu.Lock()
	c.live = live
	if conn != nil || !live {
		c.conn = conn
	}
	c.mu.Unlock()
}
