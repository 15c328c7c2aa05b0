package servo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
)

// RegisterReadWriter is the register access used by the motor operations.
type RegisterReadWriter interface {
	ReadRegister(ctx context.Context, id int, r Register) (int, error)
	WriteRegister(ctx context.Context, id int, r Register, value int) error
}

// Conn is one session on a servo bus. It is not safe for concurrent use.
type Conn struct {
	t         Transport
	connected bool
	logger    *log.Logger
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets where warnings such as low input voltage are reported.
func WithLogger(l *log.Logger) Option {
	return func(c *Conn) { c.logger = l }
}

// NewConn returns a disconnected Conn over t.
func NewConn(t Transport, opts ...Option) *Conn {
	c := &Conn{
		t:      t,
		logger: log.New(os.Stderr, "servo: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the transport.
func (c *Conn) Connect() error {
	if c.connected {
		return ErrAlreadyConnected
	}
	if err := c.t.Open(); err != nil {
		return fmt.Errorf("open transport: %w", err)
	}
	c.connected = true
	return nil
}

// Disconnect closes the transport. It does nothing when not connected.
func (c *Conn) Disconnect() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	if err := c.t.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// Connected reports whether the transport is open.
func (c *Conn) Connected() bool {
	return c.connected
}

// ReadRegister reads r from motor id.
func (c *Conn) ReadRegister(ctx context.Context, id int, r Register) (int, error) {
	if !c.connected {
		return 0, ErrNotConnected
	}
	read, err := encodeRead(c.t, id, r)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	v, res, code := read(ctx)
	if _, err := decode(res, code, false); err != nil {
		return 0, fmt.Errorf("read %s from motor %d: %w", r, id, err)
	}
	return v, nil
}

// WriteRegister writes value to r on motor id. A low voltage report from
// the servo is logged and otherwise ignored.
func (c *Conn) WriteRegister(ctx context.Context, id int, r Register, value int) error {
	if !c.connected {
		return ErrNotConnected
	}
	write, err := encodeWrite(c.t, id, r, value)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	res, code := write(ctx)
	out, err := decode(res, code, true)
	if err != nil {
		return fmt.Errorf("write %s to motor %d: %w", r, id, err)
	}
	if out == outcomeLowVoltage {
		c.logger.Printf("warning: motor %d reports low input voltage while writing %s", id, r)
	}
	return nil
}

// Ping checks that motor id answers and returns its model number.
func (c *Conn) Ping(ctx context.Context, id int) (int, error) {
	if !c.connected {
		return 0, ErrNotConnected
	}
	if err := checkID(id); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	model, res, code := c.t.Ping(ctx, byte(id))
	if _, err := decode(res, code, false); err != nil {
		return 0, fmt.Errorf("ping motor %d: %w", id, err)
	}
	return model, nil
}

// With connects a Conn over t, runs fn and disconnects, whatever fn returns.
func With(t Transport, fn func(*Conn) error, opts ...Option) (err error) {
	c := NewConn(t, opts...)
	if err := c.Connect(); err != nil {
		return err
	}
	defer func() {
		if cerr := c.Disconnect(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(c)
}
