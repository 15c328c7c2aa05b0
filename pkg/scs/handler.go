package scs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"
)

const (
	DefaultBaudRate = 1_000_000
	DefaultTimeout  = 100 * time.Millisecond
)

// ErrPortClosed is returned by Close when the port was never opened.
var ErrPortClosed = errors.New("serial port is not open")

// Config describes one serial bus.
type Config struct {
	Port     string
	BaudRate int
	Protocol Protocol
	Timeout  time.Duration // per status packet
}

// Handler exchanges packets with servos on one serial bus.
// It serializes exchanges; it is safe for concurrent use, but callers that
// need a multi-packet sequence to be atomic must lock around it themselves.
type Handler struct {
	cfg   Config
	proto *feetech.Protocol
	open  func(Config) (feetech.Transport, error)

	mu   sync.Mutex
	wire feetech.Transport
	bus  *feetech.Bus
}

// NewHandler returns a handler for cfg. The port is not opened.
func NewHandler(cfg Config) *Handler {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Handler{
		cfg:   cfg,
		proto: feetech.NewProtocol(int(cfg.Protocol)),
		open:  openSerial,
	}
}

func openSerial(cfg Config) (feetech.Transport, error) {
	t, err := feetech.OpenSerial(feetech.SerialConfig{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open port %s: %w", cfg.Port, err)
	}
	return t, nil
}

// ListPorts returns the serial ports present on the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// Config returns the handler's effective configuration.
func (h *Handler) Config() Config {
	return h.cfg
}

// Open opens the serial port.
func (h *Handler) Open() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bus != nil {
		return nil
	}
	t, err := h.open(h.cfg)
	if err != nil {
		return err
	}
	w := wire{t}
	bus, err := feetech.NewBus(feetech.BusConfig{
		Transport: w,
		BaudRate:  h.cfg.BaudRate,
		Protocol:  int(h.cfg.Protocol),
		Timeout:   h.cfg.Timeout,
	})
	if err != nil {
		t.Close()
		return fmt.Errorf("create bus: %w", err)
	}
	h.wire, h.bus = w, bus
	return nil
}

// Close closes the serial port.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bus == nil {
		return ErrPortClosed
	}
	err := h.bus.Close()
	h.wire, h.bus = nil, nil
	return err
}

// Read1 reads a one-byte register.
func (h *Handler) Read1(ctx context.Context, id, addr byte) (byte, CommResult, byte) {
	data, res, devErr := h.read(ctx, id, addr, 1)
	if data == nil {
		return 0, res, devErr
	}
	return data[0], res, devErr
}

// Read2 reads a two-byte register.
func (h *Handler) Read2(ctx context.Context, id, addr byte) (uint16, CommResult, byte) {
	data, res, devErr := h.read(ctx, id, addr, 2)
	if data == nil {
		return 0, res, devErr
	}
	return h.proto.DecodeWord(data), res, devErr
}

// Write1 writes a one-byte register.
func (h *Handler) Write1(ctx context.Context, id, addr, value byte) (CommResult, byte) {
	return h.write(ctx, id, addr, []byte{value})
}

// Write2 writes a two-byte register.
func (h *Handler) Write2(ctx context.Context, id, addr byte, value uint16) (CommResult, byte) {
	return h.write(ctx, id, addr, h.proto.EncodeWord(value))
}

// Ping checks that a servo answers at id and returns its model number.
func (h *Handler) Ping(ctx context.Context, id byte) (int, CommResult, byte) {
	if id == BroadcastID {
		return 0, CommNotAvailable, 0
	}
	bus, res := h.lock(ctx)
	if res != CommSuccess {
		return 0, res, 0
	}
	defer h.mu.Unlock()

	model, err := bus.Ping(ctx, int(id))
	if err != nil {
		res, devErr := classify(err)
		return 0, res, devErr
	}
	return model, CommSuccess, 0
}

// lock takes the handler for one exchange. On success the caller must
// unlock h.mu.
func (h *Handler) lock(ctx context.Context) (*feetech.Bus, CommResult) {
	if ctx.Err() != nil {
		return nil, CommTxFail
	}
	h.mu.Lock()
	if h.bus == nil {
		h.mu.Unlock()
		return nil, CommNotAvailable
	}
	return h.bus, CommSuccess
}

// read returns nil data unless the servo answered cleanly with n bytes.
func (h *Handler) read(ctx context.Context, id, addr byte, n int) ([]byte, CommResult, byte) {
	if id == BroadcastID {
		return nil, CommNotAvailable, 0
	}
	bus, res := h.lock(ctx)
	if res != CommSuccess {
		return nil, res, 0
	}
	defer h.mu.Unlock()

	data, err := bus.ReadRegister(ctx, int(id), addr, n)
	if err != nil {
		res, devErr := classify(err)
		return nil, res, devErr
	}
	if len(data) != n {
		return nil, CommRxCorrupt, 0
	}
	return data, CommSuccess, 0
}

func (h *Handler) write(ctx context.Context, id, addr byte, data []byte) (CommResult, byte) {
	bus, res := h.lock(ctx)
	if res != CommSuccess {
		return res, 0
	}
	defer h.mu.Unlock()

	if id == BroadcastID {
		// Servos do not answer broadcasts, so the packet goes out directly.
		h.wire.Flush()
		if _, err := h.wire.Write(h.proto.WritePacket(id, addr, data)); err != nil {
			return CommTxFail, 0
		}
		return CommSuccess, 0
	}
	return classify(bus.WriteRegister(ctx, int(id), addr, data))
}

// wire tags transport failures with the direction they happened in.
type wire struct {
	feetech.Transport
}

type txError struct{ err error }

func (e *txError) Error() string { return "tx: " + e.err.Error() }
func (e *txError) Unwrap() error { return e.err }

type rxError struct{ err error }

func (e *rxError) Error() string { return "rx: " + e.err.Error() }
func (e *rxError) Unwrap() error { return e.err }

func (w wire) Write(p []byte) (int, error) {
	n, err := w.Transport.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return n, &txError{err}
	}
	return n, nil
}

func (w wire) Read(p []byte) (int, error) {
	n, err := w.Transport.Read(p)
	if err != nil {
		return n, &rxError{err}
	}
	return n, nil
}
