package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sandtimer.dev/mcp/internal/core/ports"
	"sandtimer.dev/mcp/internal/core/tool"
)

const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 61420
	DefaultTimeout = 5 * time.Second
)

// Config holds the bridge endpoint, fixed at startup
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// DefaultConfig returns the default bridge configuration
func DefaultConfig() Config {
	return Config{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
}

// Addr returns host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Dialer opens TCP connections; *net.Dialer satisfies it
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Option configures a Client
type Option func(*Client)

// WithDialer replaces the network dialer
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithLogger sets the logger used for delivery diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client delivers one command per TCP connection. Sends are serialized so at
// most one command is in flight.
type Client struct {
	addr    string
	timeout time.Duration
	dialer  Dialer
	logger  zerolog.Logger

	mu sync.Mutex
}

// NewClient creates a bridge client for the configured endpoint
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		addr:    cfg.Addr(),
		timeout: timeout,
		dialer:  &net.Dialer{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Addr returns the endpoint commands are delivered to
func (c *Client) Addr() string {
	return c.addr
}

// Timeout returns the bound applied to dialing and writing
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Send opens a connection, writes the command as one JSON record and closes the
// connection. Success means the write completed; no acknowledgment is read.
func (c *Client) Send(ctx context.Context, cmd tool.Command) error {
	payload, err := encodeCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to encode bridge command: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return newDeliveryError(OpWrite, c.addr, err)
	}
	if _, err := conn.Write(payload); err != nil {
		return newDeliveryError(OpWrite, c.addr, err)
	}

	c.logger.Debug().
		Str("addr", c.addr).
		Str("cmd", string(cmd.Action)).
		Str("label", cmd.Label).
		Int("bytes", len(payload)).
		Msg("bridge command delivered")

	return nil
}

// Probe dials the endpoint and closes the connection without writing
func (c *Client) Probe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer.DialContext(dialCtx, "tcp", c.addr)
	if err != nil {
		derr := newDeliveryError(OpDial, c.addr, err)
		c.logger.Debug().Err(err).Str("addr", c.addr).Str("reason", derr.Reason).Msg("bridge dial failed")
		return nil, derr
	}
	return conn, nil
}

// encodeCommand renders the command as a newline-terminated JSON record
func encodeCommand(cmd tool.Command) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cmd); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	_ ports.CommandSender = (*Client)(nil)
	_ ports.BridgeProber  = (*Client)(nil)
)
