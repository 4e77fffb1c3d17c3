package narrativex

import (
	"fmt"
	"time"
)

// Completion selects what a chain does after its final step.
type Completion int

const (
	// Park leaves the engine on its final step awaiting host input.
	Park Completion = iota
	// Loop rewinds the derived state and runs the chain again.
	Loop
)

func (c Completion) String() string {
	switch c {
	case Park:
		return "park"
	case Loop:
		return "loop"
	default:
		return fmt.Sprintf("Completion(%d)", int(c))
	}
}

// Step is one authored point of a chain. At is measured from run start, never from
// the previous step. Stage, when set, becomes the active stage id as the step fires.
// Action may be nil for pure markers such as a loop point.
//
// When, if set, is consulted as the step fires; a false result skips the stage change
// and the action. A skipped final step still completes the chain.
type Step struct {
	At      time.Duration
	Stage   string
	Payload any
	When    func(*Cue) bool
	Action  func(*Cue)
}

// Chain is an ordered list of steps at absolute offsets.
type Chain struct {
	steps      []Step
	completion Completion
}

// NewChain validates steps: at least one, no negative offsets, offsets in order. A Loop
// chain must end after offset 0.
func NewChain(completion Completion, steps ...Step) (*Chain, error) {
	if len(steps) == 0 {
		return nil, configErr("chain", -1, "no steps provided")
	}
	var prev time.Duration
	for i, st := range steps {
		if st.At < 0 {
			return nil, configErr("chain", i, "negative offset %v", st.At)
		}
		if st.At < prev {
			return nil, configErr("chain", i, "offset %v is before previous step at %v", st.At, prev)
		}
		prev = st.At
	}
	if completion == Loop && prev == 0 {
		return nil, configErr("chain", -1, "looping chain needs a final step after offset 0")
	}
	return &Chain{
		steps:      append([]Step(nil), steps...),
		completion: completion,
	}, nil
}

// Len returns the number of steps.
func (c *Chain) Len() int { return len(c.steps) }

// Step returns the i-th step.
func (c *Chain) Step(i int) Step { return c.steps[i] }

// Completion returns the end-of-chain behaviour.
func (c *Chain) Completion() Completion { return c.completion }

// Duration is the offset of the final step.
func (c *Chain) Duration() time.Duration { return c.steps[len(c.steps)-1].At }

// IndexOf returns the first step whose Stage is id, or -1.
func (c *Chain) IndexOf(id string) int {
	for i, st := range c.steps {
		if st.Stage == id {
			return i
		}
	}
	return -1
}

// ChainEngine runs a Chain on the scheduler. A run schedules every remaining step at
// once under a single generation; steps read live inputs through their Cue when they
// fire.
type ChainEngine struct {
	stagehand
	chain *Chain

	runStart time.Duration
	base     time.Duration // At of the step the run started from
	from     int
	fired    int
	runs     int
	running  bool
	parked   bool
}

// NewChainEngine binds c to s. The board starts on the first step's stage.
func NewChainEngine(s *Scheduler, c *Chain, d Defaults) *ChainEngine {
	e := &ChainEngine{
		stagehand: newStagehand(s, d),
		chain:     c,
	}
	first := c.Step(0)
	e.board.setInitialStage(first.Stage, first.Payload)
	return e
}

// Chain returns the step configuration.
func (e *ChainEngine) Chain() *Chain {
	return e.chain
}

// Begin runs the chain from its first step.
func (e *ChainEngine) Begin() {
	e.Run()
}

// Run cancels everything outstanding and schedules the whole chain from now.
func (e *ChainEngine) Run() {
	e.start(0)
}

// RunFrom is Run starting at the first step tagged with stage; offsets are shifted
// so that step fires immediately.
func (e *ChainEngine) RunFrom(stage string) error {
	idx := e.chain.IndexOf(stage)
	if idx < 0 {
		return fmt.Errorf("chain: %w %q", ErrUnknownStage, stage)
	}
	e.start(idx)
	return nil
}

func (e *ChainEngine) start(from int) {
	e.sched.CancelAll()
	e.forgetTypists()

	e.runStart = e.sched.Now()
	e.base = e.chain.Step(from).At
	e.from = from
	e.fired = 0
	e.runs++
	e.running = true
	e.parked = false
	e.board.parked = false

	for i := from; i < e.chain.Len(); i++ {
		e.sched.Schedule(e.chain.Step(i).At-e.base, func() { e.fire(i) })
	}
}

func (e *ChainEngine) fire(i int) {
	st := e.chain.Step(i)
	cue := &Cue{
		hand:    &e.stagehand,
		stage:   st.Stage,
		index:   i,
		start:   e.runStart + st.At - e.base,
		payload: st.Payload,
	}
	if st.When == nil || st.When(cue) {
		if st.Stage != "" {
			e.board.setStage(st.Stage, i, st.Payload)
		}
		e.fired++
		if st.Action != nil {
			st.Action(cue)
		}
	}
	if i == e.chain.Len()-1 {
		e.complete()
	}
}

func (e *ChainEngine) complete() {
	e.board.progress = 100
	switch e.chain.Completion() {
	case Loop:
		e.forgetTypists()
		e.board.Rewind()
		e.start(0)
	default:
		e.running = false
		e.parked = true
		e.board.parked = true
	}
}

// Frame refreshes the progress of the current run.
func (e *ChainEngine) Frame() {
	if !e.running {
		return
	}
	span := e.chain.Duration() - e.base
	if span <= 0 {
		e.board.progress = 100
		return
	}
	p := float64(e.sched.Now()-e.runStart) / float64(span) * 100
	e.board.progress = min(p, 100)
}

// Rewind stops the run and restores the board defaults.
func (e *ChainEngine) Rewind() {
	e.running = false
	e.parked = false
	e.fired = 0
	e.forgetTypists()
	e.board.Rewind()
}

// Parked reports whether a Park chain has completed and is waiting for the host.
func (e *ChainEngine) Parked() bool { return e.parked }

// Fired returns how many steps of the current run have fired.
func (e *ChainEngine) Fired() int { return e.fired }

// Runs returns how many times the chain has been started.
func (e *ChainEngine) Runs() int { return e.runs }

// Snapshot returns a copy of the derived state.
func (e *ChainEngine) Snapshot() Snapshot {
	return e.board.Snapshot()
}
