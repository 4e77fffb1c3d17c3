package realtime

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/comalice/narrativex"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type recordingPublisher struct {
	mu    sync.Mutex
	snaps []narrativex.Snapshot
}

func (p *recordingPublisher) Publish(s narrativex.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, s)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

func newController(t *testing.T) *narrativex.Controller {
	t.Helper()
	s := narrativex.NewScheduler()
	b := narrativex.NewScript("csrf").Defaults(narrativex.Defaults{
		Text:   map[string]string{"status": ""},
		Inputs: map[string]any{"protection": false},
	})
	b.Step(0, "idle")
	b.Step(time.Second, "fake_ad").Do(func(c *narrativex.Cue) {
		c.Board().SetText("status", "clicked")
	})
	b.Step(2*time.Second, "result").Do(func(c *narrativex.Cue) {
		if c.Bool("protection") {
			c.Board().SetText("status", "blocked")
		} else {
			c.Board().SetText("status", "stolen")
		}
	})
	e, err := b.Build(s)
	if err != nil {
		t.Fatalf("Failed to build script: %v", err)
	}
	ctl, err := narrativex.NewController(s, e)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	return ctl
}

// TestRuntimeCreation tests basic runtime creation
func TestRuntimeCreation(t *testing.T) {
	rt := NewRuntime(newController(t), Config{
		TickRate: 10 * time.Millisecond,
	})

	if rt == nil {
		t.Fatal("Runtime is nil")
	}
	if rt.tickRate != 10*time.Millisecond || cap(rt.batch) != 64 || rt.maxDelta != 250*time.Millisecond {
		t.Errorf("unexpected defaults: rate=%v cap=%d maxDelta=%v", rt.tickRate, cap(rt.batch), rt.maxDelta)
	}
	if got := rt.Snapshot().ActiveStageID; got != "idle" {
		t.Errorf("expected initial snapshot on idle, got %q", got)
	}
}

// TestTickAdvancesByWallTime drives ticks with a fake clock.
func TestTickAdvancesByWallTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	pub := &recordingPublisher{}
	rt := NewRuntime(newController(t), Config{Clock: clock, Publisher: pub})
	rt.last = clock.Now()

	for range 12 {
		rt.tick(clock.Add(100 * time.Millisecond))
	}

	snap := rt.Snapshot()
	if snap.ActiveStageID != "fake_ad" || snap.Text["status"] != "clicked" {
		t.Errorf("expected fake_ad after 1.2s, got %s/%q", snap.ActiveStageID, snap.Text["status"])
	}
	if pub.count() != 12 {
		t.Errorf("expected 12 published snapshots, got %d", pub.count())
	}
	if rt.TickNumber() != 12 {
		t.Errorf("expected tick 12, got %d", rt.TickNumber())
	}
}

// TestTickClampsLargeDelta tests that a stalled clock does not skip the narrative.
func TestTickClampsLargeDelta(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rt := NewRuntime(newController(t), Config{Clock: clock})
	rt.last = clock.Now()

	rt.tick(clock.Add(time.Hour))
	if got := rt.Snapshot().ActiveStageID; got != "idle" {
		t.Errorf("expected a single clamped step to stay on idle, got %s", got)
	}
}

// TestSetInputCommandIsReadLive tests that an input sent mid-run steers the result.
func TestSetInputCommandIsReadLive(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rt := NewRuntime(newController(t), Config{Clock: clock})
	rt.last = clock.Now()

	for range 15 {
		rt.tick(clock.Add(100 * time.Millisecond))
	}
	if err := rt.Send(Command{Type: CommandSetInput, Name: "protection", Value: true}); err != nil {
		t.Fatal(err)
	}
	for range 10 {
		rt.tick(clock.Add(100 * time.Millisecond))
	}

	if got := rt.Snapshot().Text["status"]; got != "blocked" {
		t.Errorf("expected blocked, got %q", got)
	}
}

// TestToggleInputCommand tests flipping a bool input from the host.
func TestToggleInputCommand(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rt := NewRuntime(newController(t), Config{Clock: clock})
	rt.last = clock.Now()

	_ = rt.Send(Command{Type: CommandToggleInput, Name: "protection"})
	rt.tick(clock.Add(10 * time.Millisecond))
	if got := rt.Snapshot().Inputs["protection"]; got != true {
		t.Errorf("expected protection toggled on, got %v", got)
	}

	_ = rt.Send(Command{Type: CommandToggleInput})
	rt.tick(clock.Add(10 * time.Millisecond))
	if got := rt.Snapshot().Inputs["protection"]; got != true {
		t.Errorf("nameless toggle must not change inputs, got %v", got)
	}
}

// TestCommandOrdering tests priority-then-sequence ordering within one tick.
func TestCommandOrdering(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rt := NewRuntime(newController(t), Config{Clock: clock})
	rt.last = clock.Now()

	// Applied as: pause (priority 5), play, pause.
	_ = rt.Send(Command{Type: CommandPlay})
	_ = rt.Send(Command{Type: CommandPause})
	_ = rt.SendWithPriority(Command{Type: CommandPause}, 5)
	rt.tick(clock.Add(10 * time.Millisecond))

	if rt.Snapshot().Playing {
		t.Error("expected the final FIFO pause to win")
	}

	cmds := []CommandWithMeta{
		{Command: Command{Type: CommandPlay}, SequenceNum: 0},
		{Command: Command{Type: CommandReset}, SequenceNum: 1, Priority: 2},
		{Command: Command{Type: CommandPause}, SequenceNum: 2},
	}
	rt.sortCommands(cmds)
	want := []CommandType{CommandReset, CommandPlay, CommandPause}
	for i, c := range cmds {
		if c.Command.Type != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], c.Command.Type)
		}
	}
}

// TestQueueFull tests that Send reports a full batch.
func TestQueueFull(t *testing.T) {
	rt := NewRuntime(newController(t), Config{MaxCommandsPerTick: 2})
	_ = rt.Send(Command{Type: CommandToggle})
	_ = rt.Send(Command{Type: CommandToggle})
	if err := rt.Send(Command{Type: CommandToggle}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

// TestFailedCommandIsLogged tests that a replay error does not stop the tick.
func TestFailedCommandIsLogged(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{now: time.Unix(0, 0)}
	rt := NewRuntime(newController(t), Config{Clock: clock, Logger: log.New(&buf, "", 0)})
	rt.last = clock.Now()

	_ = rt.Send(Command{Type: CommandReplay, Stage: "nowhere"})
	_ = rt.Send(Command{Type: CommandSetInput})
	rt.tick(clock.Add(10 * time.Millisecond))

	out := buf.String()
	if !strings.Contains(out, "replay command failed") || !strings.Contains(out, "set_input command failed") {
		t.Errorf("expected failures to be logged, got:\n%s", out)
	}
	if rt.TickNumber() != 1 {
		t.Errorf("expected tick to complete, got %d", rt.TickNumber())
	}
}

type panicPublisher struct{}

func (panicPublisher) Publish(narrativex.Snapshot) { panic("boom") }

// TestPanicRecovery tests that a panicking tick is logged and the loop continues.
func TestPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{now: time.Unix(0, 0)}
	rt := NewRuntime(newController(t), Config{Clock: clock, Publisher: panicPublisher{}, Logger: log.New(&buf, "", 0)})
	rt.last = clock.Now()

	rt.tick(clock.Add(10 * time.Millisecond))
	rt.tick(clock.Add(10 * time.Millisecond))

	if rt.TickNumber() != 2 {
		t.Errorf("expected 2 ticks despite panics, got %d", rt.TickNumber())
	}
	if !strings.Contains(buf.String(), "recovered panic in tick 0: boom") {
		t.Errorf("expected panic to be logged, got:\n%s", buf.String())
	}
}

// TestStartStop tests the real ticker loop.
func TestStartStop(t *testing.T) {
	rt := NewRuntime(newController(t), Config{TickRate: 5 * time.Millisecond})

	ctx := context.Background()
	if err := rt.Start(ctx); err != nil {
		t.Fatalf("Failed to start runtime: %v", err)
	}
	if err := rt.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	_ = rt.Send(Command{Type: CommandPause})
	time.Sleep(50 * time.Millisecond)

	if rt.TickNumber() == 0 {
		t.Error("expected ticks to run")
	}
	if rt.Snapshot().Playing {
		t.Error("expected the pause command to be applied")
	}

	if err := rt.Stop(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rt.Done():
	default:
		t.Error("Done should be closed after Stop")
	}
	ticks := rt.TickNumber()
	time.Sleep(20 * time.Millisecond)
	if rt.TickNumber() != ticks {
		t.Error("no ticks expected after Stop")
	}
}
