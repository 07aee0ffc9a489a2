package sockets

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

type Connection interface {
	Dial(ctx context.Context, addr string) error
	Send(msg Msg) error
	io.Closer
}

// Conn is an event-driven TCP connection for delimiter-framed ASCII protocols.
// Inbound data is split on the configured delimiter and handed to the OnMessage
// callback one frame at a time.
type Conn struct {
	mu               sync.Mutex
	tcp              net.Conn
	closed           bool
	delimiter        byte
	dialTimeout      time.Duration
	pingIntervalSecs int
	pingMsg          []byte
	onError          func(err error)
	onMessage        func([]byte, Connection)
	onConnected      func(Connection)
}

func New(opts ...func(*Conn)) Connection {
	c := &Conn{
		delimiter:   ';',
		dialTimeout: 15 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Msg is the message structure. Body is sent as-is; the caller appends the
// delimiter where the protocol requires one.
type Msg struct {
	Body []byte
}

// Close closes the connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.tcp != nil {
		return c.tcp.Close()
	}
	return nil
}

func (c *Conn) Send(msg Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.tcp == nil {
		return errors.New("closed connection")
	}
	if _, err := c.tcp.Write(msg.Body); err != nil {
		c.closeLocked()
		if c.onError != nil {
			go c.onError(err)
		}
		return err
	}
	return nil
}

func (c *Conn) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	if c.tcp != nil {
		_ = c.tcp.Close()
	}
}

func (c *Conn) Dial(ctx context.Context, addr string) error {
	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tcp = conn
	c.closed = false
	c.mu.Unlock()

	if c.onConnected != nil {
		go c.onConnected(c)
	}
	go c.readLoop(conn)
	c.setupPing()
	return nil
}

func (c *Conn) readLoop(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		frame, err := reader.ReadBytes(c.delimiter)
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && c.onError != nil {
				c.onError(err)
			}
			return
		}
		c.onFrame(frame[:len(frame)-1])
	}
}

func (c *Conn) onFrame(frame []byte) {
	if len(frame) == 0 {
		return
	}
	if c.onMessage != nil {
		c.onMessage(frame, c)
	}
}

func (c *Conn) setupPing() {
	if c.pingIntervalSecs > 0 && len(c.pingMsg) > 0 {
		ticker := time.NewTicker(time.Second * time.Duration(c.pingIntervalSecs))
		go func() {
			defer ticker.Stop()
			for {
				<-ticker.C // wait for tick
				if c.Send(Msg{Body: c.pingMsg}) != nil {
					return
				}
			}
		}()
	}
}
