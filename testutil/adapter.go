package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/realtime"
)

// PlaybackAdapter provides a common interface for driving a Controller directly on
// virtual time and through the ticking realtime.Runtime.
// This allows running the same test suite on both.
type PlaybackAdapter interface {
	Start(ctx context.Context) error
	Stop() error
	Send(cmd realtime.Command) error
	Snapshot() narrativex.Snapshot
	// Elapse lets d of narrative time pass and returns once it has been applied.
	Elapse(d time.Duration) error
}

// DirectAdapter drives a Controller synchronously.
type DirectAdapter struct {
	ctl *narrativex.Controller
}

// NewDirectAdapter creates a new adapter around ctl.
func NewDirectAdapter(ctl *narrativex.Controller) *DirectAdapter {
	return &DirectAdapter{ctl: ctl}
}

func (a *DirectAdapter) Start(ctx context.Context) error {
	return nil
}

func (a *DirectAdapter) Stop() error {
	a.ctl.Close()
	return nil
}

// Send applies cmd immediately.
func (a *DirectAdapter) Send(cmd realtime.Command) error {
	switch cmd.Type {
	case realtime.CommandPlay:
		a.ctl.Play()
	case realtime.CommandPause:
		a.ctl.Pause()
	case realtime.CommandToggle:
		a.ctl.Toggle()
	case realtime.CommandReset:
		a.ctl.Reset()
	case realtime.CommandSetInput:
		a.ctl.SetInput(cmd.Name, cmd.Value)
	case realtime.CommandToggleInput:
		a.ctl.ToggleInput(cmd.Name)
	case realtime.CommandReplay:
		return a.ctl.Replay(cmd.Stage)
	default:
		return fmt.Errorf("unknown command %s", cmd.Type)
	}
	return nil
}

func (a *DirectAdapter) Snapshot() narrativex.Snapshot {
	return a.ctl.Snapshot()
}

func (a *DirectAdapter) Elapse(d time.Duration) error {
	a.ctl.Advance(d)
	return nil
}

// ManualClock is a realtime.Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add moves the clock forward by d.
func (c *ManualClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TickBasedAdapter wraps the realtime runtime. Narrative time comes from a
// ManualClock, so results do not depend on scheduler jitter; only command delivery
// waits for real ticks.
type TickBasedAdapter struct {
	rt       *realtime.Runtime
	clock    *ManualClock
	tickRate time.Duration
	step     time.Duration
}

// NewTickBasedAdapter creates a new adapter for the tick-based runtime.
func NewTickBasedAdapter(ctl *narrativex.Controller, tickRate time.Duration) *TickBasedAdapter {
	clock := NewManualClock(time.Unix(0, 0))
	return &TickBasedAdapter{
		rt: realtime.NewRuntime(ctl, realtime.Config{
			TickRate: tickRate,
			Clock:    clock,
		}),
		clock:    clock,
		tickRate: tickRate,
		step:     100 * time.Millisecond,
	}
}

func (a *TickBasedAdapter) Start(ctx context.Context) error {
	return a.rt.Start(ctx)
}

func (a *TickBasedAdapter) Stop() error {
	return a.rt.Stop()
}

// Send queues cmd and waits until a tick has applied it.
func (a *TickBasedAdapter) Send(cmd realtime.Command) error {
	if err := a.rt.Send(cmd); err != nil {
		return err
	}
	return a.waitTicks(2)
}

func (a *TickBasedAdapter) Snapshot() narrativex.Snapshot {
	return a.rt.Snapshot()
}

// Elapse moves the clock in steps below the runtime's delta clamp, waiting for a
// tick to observe each one.
func (a *TickBasedAdapter) Elapse(d time.Duration) error {
	for d > 0 {
		step := min(d, a.step)
		a.clock.Add(step)
		if err := a.waitTicks(2); err != nil {
			return err
		}
		d -= step
	}
	return nil
}

// waitTicks returns after n more ticks have completed. Two ticks guarantee that one
// started after the caller's last change.
func (a *TickBasedAdapter) waitTicks(n uint64) error {
	target := a.rt.TickNumber() + n
	deadline := time.Now().Add(100*a.tickRate + time.Second)
	for a.rt.TickNumber() < target {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for tick %d", target)
		}
		time.Sleep(a.tickRate / 4)
	}
	return nil
}
