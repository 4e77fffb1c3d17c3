package narrativex

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// PlaybackState is the host-visible play flag.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
)

func (p PlaybackState) String() string {
	switch p {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("PlaybackState(%d)", int(p))
	}
}

// DefaultFrame is the animation-frame period used by Controller.Advance.
const DefaultFrame = 16 * time.Millisecond

// PlaybackControls is the shape a host binds its play/pause and reset buttons to.
type PlaybackControls struct {
	IsPlaying   bool
	OnPlayPause func()
	OnReset     func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithFrame sets the animation-frame period. Non-positive values are ignored.
func WithFrame(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.frame = d
		}
	}
}

// WithLogger sets the logger transitions are reported to.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller gates an Engine. It owns the scheduler's generation: every transition
// cancels all outstanding work before anything new is scheduled.
//
// Pausing is stop-and-rewind. A paused controller shows the pristine initial snapshot,
// and playing again starts from the first stage.
type Controller struct {
	sched  *Scheduler
	engine Engine
	state  PlaybackState
	frame  time.Duration
	carry  time.Duration // time since the last frame boundary
	closed bool
	logger *log.Logger
}

// NewController binds e to s and starts playing.
func NewController(s *Scheduler, e Engine, opts ...Option) (*Controller, error) {
	if s == nil {
		return nil, errors.New("controller: nil scheduler")
	}
	if e == nil {
		return nil, errors.New("controller: nil engine")
	}
	c := &Controller{
		sched:  s,
		engine: e,
		state:  Stopped,
		frame:  DefaultFrame,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Play()
	return c, nil
}

// State returns the current playback state.
func (c *Controller) State() PlaybackState { return c.state }

// IsPlaying reports whether the engine is running.
func (c *Controller) IsPlaying() bool { return c.state == Playing }

// Engine returns the gated engine.
func (c *Controller) Engine() Engine { return c.engine }

// Play restarts the engine from its first stage with pristine derived state.
func (c *Controller) Play() {
	if c.closed {
		return
	}
	from := c.state
	c.sched.CancelAll()
	c.engine.Rewind()
	c.carry = 0
	c.state = Playing
	c.engine.Begin()
	c.logTransition(from)
}

// Pause cancels everything and rewinds to the initial snapshot. Inputs are restored
// too unless the engine's defaults mark them sticky.
func (c *Controller) Pause() {
	if c.closed {
		return
	}
	from := c.state
	c.sched.CancelAll()
	c.engine.Rewind()
	if !c.engine.Board().StickyInputs() {
		c.engine.Board().ResetInputs()
	}
	c.carry = 0
	c.state = Stopped
	c.logTransition(from)
}

// Reset is Pause followed by Play.
func (c *Controller) Reset() {
	c.Pause()
	c.Play()
}

// Toggle flips between Play and Pause.
func (c *Controller) Toggle() {
	if c.state == Playing {
		c.Pause()
		return
	}
	c.Play()
}

// Replay restarts a chain from the named stage, keeping current inputs. Engines that
// do not implement Replayer return ErrUnsupported.
func (c *Controller) Replay(stage string) error {
	if c.closed {
		return nil
	}
	r, ok := c.engine.(Replayer)
	if !ok {
		return fmt.Errorf("replay %q: %w", stage, ErrUnsupported)
	}
	from := c.state
	c.sched.CancelAll()
	c.engine.Rewind()
	c.carry = 0
	c.state = Playing
	if err := r.RunFrom(stage); err != nil {
		c.state = Stopped
		return fmt.Errorf("replay: %w", err)
	}
	c.logTransition(from)
	return nil
}

// Advance moves the scheduler forward by d and calls Engine.Frame at every frame
// boundary crossed while playing. Frame boundaries carry over between calls, so many
// short advances behave like one long one.
func (c *Controller) Advance(d time.Duration) {
	if c.closed {
		return
	}
	for d > 0 && c.state == Playing {
		step := min(c.frame-c.carry, d)
		c.sched.Advance(step)
		d -= step
		c.carry += step
		if c.carry >= c.frame {
			c.carry = 0
			c.engine.Frame()
		}
	}
	if d > 0 {
		c.sched.Advance(d)
	}
}

// Snapshot returns the engine's derived state with the play flag filled in.
func (c *Controller) Snapshot() Snapshot {
	s := c.engine.Snapshot()
	s.Playing = c.state == Playing
	return s
}

// Controls returns host bindings for the current state.
func (c *Controller) Controls() PlaybackControls {
	return PlaybackControls{
		IsPlaying:   c.state == Playing,
		OnPlayPause: c.Toggle,
		OnReset:     c.Reset,
	}
}

// SetInput changes a live domain flag. Running steps see it at their next read.
func (c *Controller) SetInput(name string, value any) {
	c.engine.Board().Inputs().Set(name, value)
}

// ToggleInput flips a bool input and returns its new value.
func (c *Controller) ToggleInput(name string) bool {
	return c.engine.Board().Inputs().Toggle(name)
}

// Token returns the scheduler's current generation.
func (c *Controller) Token() RunToken { return c.sched.Token() }

// Close cancels all outstanding work. The controller ignores later calls.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.sched.CancelAll()
	c.state = Stopped
	c.closed = true
	c.logger.Printf("playback: closed (token %d)", c.sched.Token())
}

func (c *Controller) logTransition(from PlaybackState) {
	c.logger.Printf("playback: %s -> %s (token %d)", from, c.state, c.sched.Token())
}
