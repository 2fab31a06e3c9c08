// Package wsfeed consumes a thread's event feed over a websocket. The
// connection is retried with backoff for as long as the context lives, so a
// flapping server costs nothing but a delay.
package wsfeed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// Options configures the feed client.
type Options struct {
	URL          string
	Logger       *zap.Logger
	Dialer       *websocket.Dialer
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

// Client is a reconnecting websocket feed consumer.
type Client struct {
	url    string
	log    *zap.Logger
	dialer *websocket.Dialer
	min    time.Duration
	max    time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a feed client.
func New(opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("url required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.ReconnectMin == 0 {
		opts.ReconnectMin = time.Second
	}
	if opts.ReconnectMax == 0 {
		opts.ReconnectMax = 30 * time.Second
	}
	return &Client{
		url:    opts.URL,
		log:    opts.Logger,
		dialer: opts.Dialer,
		min:    opts.ReconnectMin,
		max:    opts.ReconnectMax,
	}, nil
}

// Run connects and delivers decoded feed messages to handle until the
// context is cancelled. Undecodable frames are logged and dropped.
func (c *Client) Run(ctx context.Context, handle func(neko.Message)) error {
	backoff := c.min
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.log.Warn("feed dial failed", zap.String("url", c.url), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.max {
				backoff = c.max
			}
			continue
		}

		c.log.Info("feed connected", zap.String("url", c.url))
		backoff = c.min
		c.setConn(conn)
		c.readLoop(ctx, conn, handle)
		c.setConn(nil)
		conn.Close()
	}
}

// Send writes one message on the live connection. It fails when the feed is
// down; callers treat that as a dropped command, not a fatal error.
func (c *Client) Send(msg neko.Message) error {
	payload, err := neko.EncodeMessage(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("feed not connected")
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, handle func(neko.Message)) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("feed read failed", zap.Error(err))
			}
			return
		}
		msg, err := neko.DecodeMessage(payload)
		if err != nil {
			c.log.Warn("dropping bad feed frame", zap.Error(err))
			continue
		}
		handle(msg)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}
