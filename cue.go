package narrativex

import "time"

// stagehand is the machinery both engines share: the scheduler, the board and one
// typist per text field.
type stagehand struct {
	sched   *Scheduler
	board   *Board
	typists map[string]*Typist
}

func newStagehand(s *Scheduler, d Defaults) stagehand {
	return stagehand{
		sched:   s,
		board:   NewBoard(d),
		typists: make(map[string]*Typist),
	}
}

func (h *stagehand) typist(field string) *Typist {
	t, ok := h.typists[field]
	if !ok {
		t = NewTypist(h.sched)
		h.typists[field] = t
	}
	return t
}

// forgetTypists is called after CancelAll: the typists' timers are already dead,
// only their bookkeeping needs clearing.
func (h *stagehand) forgetTypists() {
	for _, t := range h.typists {
		t.forget()
	}
}

// Board returns the engine's derived state.
func (h *stagehand) Board() *Board {
	return h.board
}

// Cue is handed to stage-entered handlers and chain step actions. Delays given to
// After are measured from the nominal start of the stage or step, so effects land on
// their authored offsets even when the frame that noticed the stage arrived late.
type Cue struct {
	hand    *stagehand
	stage   string
	index   int
	start   time.Duration
	payload any
}

// Stage returns the id of the stage or step that produced this cue.
func (c *Cue) Stage() string { return c.stage }

// Index returns the stage or step position.
func (c *Cue) Index() int { return c.index }

// Payload returns the stage or step payload.
func (c *Cue) Payload() any { return c.payload }

// Start returns the scheduler time at which the stage or step nominally began.
func (c *Cue) Start() time.Duration { return c.start }

// Elapsed returns how long ago the stage or step began.
func (c *Cue) Elapsed() time.Duration { return c.hand.sched.Now() - c.start }

// Board returns the derived state to mutate.
func (c *Cue) Board() *Board { return c.hand.board }

// Inputs returns the live input set.
func (c *Cue) Inputs() *Inputs { return c.hand.board.inputs }

// Input reads a live input at call time.
func (c *Cue) Input(name string) any { return c.hand.board.inputs.Get(name) }

// Bool reads a live bool input at call time.
func (c *Cue) Bool(name string) bool { return c.hand.board.inputs.Bool(name) }

// After runs fn delay after the cue's start under the current generation.
func (c *Cue) After(delay time.Duration, fn func()) Handle {
	return c.hand.sched.Schedule(c.start+delay-c.hand.sched.Now(), fn)
}

// Type clears field and reveals text into it one rune per interval. A job already
// typing into the same field is replaced. then, if non-nil, runs when typing ends.
func (c *Cue) Type(field, text string, interval time.Duration, then func()) {
	b := c.hand.board
	b.SetText(field, "")
	c.hand.typist(field).Start(text, interval, func(prefix string) {
		b.SetText(field, prefix)
	}, then)
}

// Repeat runs fn times, every interval, starting one interval from now.
// fn receives the 0-based iteration.
func (c *Cue) Repeat(every time.Duration, times int, fn func(i int)) {
	for i := range times {
		c.hand.sched.Schedule(time.Duration(i+1)*every, func() { fn(i) })
	}
}

// Fork returns a cue for the same stage or step whose start is the current scheduler
// time. Follow-up effects use it to measure their delays from the moment they were
// triggered rather than from the stage start.
func (c *Cue) Fork() *Cue {
	f := *c
	f.start = c.hand.sched.Now()
	return &f
}
