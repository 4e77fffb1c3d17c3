package realtime

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/comalice/narrativex"
)

var (
	// ErrQueueFull is returned by Send when the per-tick command batch is full.
	ErrQueueFull = errors.New("command queue full")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("runtime already started")
)

// Clock abstracts wall time so ticks can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Publisher receives a snapshot after every tick. Publish is called from the tick
// goroutine and must not block.
type Publisher interface {
	Publish(narrativex.Snapshot)
}

// Runtime owns a Controller and its Scheduler on a single ticking goroutine. Host
// commands from any goroutine are batched and applied at the next tick boundary.
type Runtime struct {
	ctl       *narrativex.Controller
	tickRate  time.Duration
	maxDelta  time.Duration
	clock     Clock
	publisher Publisher
	logger    *log.Logger

	ticker  *time.Ticker
	tickNum uint64
	last    time.Time

	// Command batching
	batch       []CommandWithMeta
	batchMu     sync.Mutex
	sequenceNum uint64

	snapMu   sync.RWMutex
	snapshot narrativex.Snapshot

	// Control
	tickCtx    context.Context
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// Config configures the real-time runtime
type Config struct {
	TickRate           time.Duration // Fixed tick rate (default 16.667ms, 60 FPS)
	MaxCommandsPerTick int           // Command queue capacity (default: 64)
	MaxDelta           time.Duration // Largest wall-time step per tick (default: 250ms)
	Clock              Clock
	Publisher          Publisher
	Logger             *log.Logger
}

// NewRuntime creates a runtime driving ctl. ctl must not be used directly once the
// runtime has started.
func NewRuntime(ctl *narrativex.Controller, cfg Config) *Runtime {
	if cfg.MaxCommandsPerTick == 0 {
		cfg.MaxCommandsPerTick = 64
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 16667 * time.Microsecond // Default 60 FPS
	}
	if cfg.MaxDelta == 0 {
		cfg.MaxDelta = 250 * time.Millisecond
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}

	return &Runtime{
		ctl:       ctl,
		tickRate:  cfg.TickRate,
		maxDelta:  cfg.MaxDelta,
		clock:     cfg.Clock,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		batch:     make([]CommandWithMeta, 0, cfg.MaxCommandsPerTick),
		snapshot:  ctl.Snapshot(),
		stopped:   make(chan struct{}),
	}
}

// Start begins tick-based execution
func (rt *Runtime) Start(ctx context.Context) error {
	if rt.tickCancel != nil {
		return ErrAlreadyStarted
	}
	rt.last = rt.clock.Now()
	rt.publish()

	rt.tickCtx, rt.tickCancel = context.WithCancel(ctx)
	rt.ticker = time.NewTicker(rt.tickRate)

	go rt.tickLoop()

	return nil
}

// Stop halts the tick loop and closes the controller, cancelling every outstanding
// timer.
func (rt *Runtime) Stop() error {
	if rt.tickCancel == nil {
		return nil
	}
	rt.tickCancel()
	rt.ticker.Stop()

	// Wait for tick loop to exit
	<-rt.stopped

	rt.ctl.Close()
	return nil
}

// Done is closed when the tick loop exits.
func (rt *Runtime) Done() <-chan struct{} {
	return rt.stopped
}

// tickLoop is the main tick execution loop
func (rt *Runtime) tickLoop() {
	defer close(rt.stopped)

	for {
		select {
		case <-rt.tickCtx.Done():
			return
		case <-rt.ticker.C:
			rt.tick(rt.clock.Now())
		}
	}
}

// Send queues a command for the next tick (thread-safe)
func (rt *Runtime) Send(cmd Command) error {
	return rt.SendWithPriority(cmd, 0)
}

// SendWithPriority queues a command with priority. Higher priorities are applied
// first within a tick.
func (rt *Runtime) SendWithPriority(cmd Command, priority int) error {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.batch) >= cap(rt.batch) {
		rt.logger.Printf("realtime: dropped %s command, queue full", cmd.Type)
		return ErrQueueFull
	}

	rt.batch = append(rt.batch, CommandWithMeta{
		Command:     cmd,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++

	return nil
}

// Snapshot returns the snapshot published by the latest tick.
func (rt *Runtime) Snapshot() narrativex.Snapshot {
	rt.snapMu.RLock()
	defer rt.snapMu.RUnlock()
	return rt.snapshot
}

// TickNumber returns the current tick count
func (rt *Runtime) TickNumber() uint64 {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return rt.tickNum
}
