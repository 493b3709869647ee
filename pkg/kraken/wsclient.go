package kraken

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClient handles the WebSocket connection to Kraken and message routing.
type WSClient struct {
	url            string
	pairs          []string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	handler        func([]byte)
	logger         *zap.Logger

	mu   sync.Mutex // guards conn and writes
	conn *websocket.Conn
}

// NewWSClient creates a WebSocket client that subscribes to the ticker
// channel for the given WebSocket pair names.
func NewWSClient(url string, pairs []string, reconnectDelay time.Duration, logger *zap.Logger) *WSClient {
	if url == "" {
		url = DefaultWSURL
	}
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &WSClient{
		url:            url,
		pairs:          append([]string(nil), pairs...),
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
		logger:         logger,
	}
}

// SetMessageHandler sets the function to handle incoming messages.
func (c *WSClient) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// Connect establishes the WebSocket connection and subscribes to the
// ticker channel. It does not start the listener.
func (c *WSClient) Connect(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Error("Failed to connect to WebSocket", zap.String("url", c.url), zap.Error(err))
		return err
	}

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()
	c.logger.Info("WebSocket connected", zap.String("url", c.url))

	if err := c.subscribe(); err != nil {
		c.logger.Error("Failed to send subscription", zap.Error(err))
		return err
	}
	return nil
}

// Listen reads frames until ctx is cancelled, reconnecting and
// resubscribing after read errors. The connection is closed when Listen
// returns.
func (c *WSClient) Listen(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()
	// A reconnect can finish after the AfterFunc has already fired.
	defer c.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return errors.New("websocket not connected")
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("WebSocket read error", zap.Error(err))

			// Retry reconnecting until the context ends
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.reconnectDelay):
				}
				if err := c.Connect(ctx); err != nil {
					c.logger.Warn("Retrying reconnect...", zap.Error(err))
					continue
				}
				c.logger.Info("Reconnected successfully")
				break
			}
			continue
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// Close closes the current connection, if any.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *WSClient) subscribe() error {
	req := SubscribeRequest{
		Event:        EventSubscribe,
		Pair:         c.pairs,
		Subscription: Subscription{Name: ChannelTicker},
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("websocket not connected")
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("websocket subscribe failed: %w", err)
	}
	return nil
}
