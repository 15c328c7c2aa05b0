// Package telemetry polls motor status at a fixed rate and fans it out to
// subscribers such as the monitor UI and the MQTT publisher.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gwillem/feetech/pkg/robot"
)

// ErrRunning is returned by Start while the poller is already running.
var ErrRunning = errors.New("poller already running")

// State is one polling round.
type State struct {
	Status    map[robot.MotorName]robot.MotorStatus
	Timestamp time.Time
	Error     error
}

// Sink receives every successful State.
type Sink interface {
	Publish(State) error
}

// Config holds configuration for the poller.
type Config struct {
	Hz    int
	Sinks []Sink
}

// Poller reads the arm's status in a loop. The arm's connection must not
// be used by anything else while Start runs.
type Poller struct {
	arm   *robot.Arm
	hz    int
	sinks []Sink

	mu      sync.Mutex
	running bool
	stateCh chan State
	logCh   chan string
}

// NewPoller creates a poller for arm.
func NewPoller(arm *robot.Arm, cfg Config) *Poller {
	if cfg.Hz <= 0 {
		cfg.Hz = 10
	}
	return &Poller{
		arm:     arm,
		hz:      cfg.Hz,
		sinks:   cfg.Sinks,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
}

// States returns a channel that receives the latest state.
func (p *Poller) States() <-chan State {
	return p.stateCh
}

// Logs returns a channel that receives log messages.
func (p *Poller) Logs() <-chan string {
	return p.logCh
}

// Hz returns the polling frequency.
func (p *Poller) Hz() int {
	return p.hz
}

func (p *Poller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case p.logCh <- msg:
	default:
	}
}

// Start polls until ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrRunning
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	p.log("Polling %d motors at %d Hz", len(p.arm.Calibration()), p.hz)
	limiter := rate.NewLimiter(rate.Limit(p.hz), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			p.log("Polling stopped")
			return ctx.Err()
		}
		p.step(ctx)
	}
}

func (p *Poller) step(ctx context.Context) {
	status, err := p.arm.ReadStatus(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log("Read error: %v", err)
		p.sendState(State{Error: err, Timestamp: time.Now()})
		return
	}

	s := State{Status: status, Timestamp: time.Now()}
	for _, sink := range p.sinks {
		if err := sink.Publish(s); err != nil {
			p.log("Publish error: %v", err)
		}
	}
	p.sendState(s)
}

// sendState replaces an unread state with s.
func (p *Poller) sendState(s State) {
	select {
	case p.stateCh <- s:
	default:
		select {
		case <-p.stateCh:
		default:
		}
		p.stateCh <- s
	}
}
