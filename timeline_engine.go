package narrativex

import "time"

// StageEntered is emitted once each time the resolved stage changes, including the
// re-entry of stage 0 when a looping timeline wraps.
type StageEntered struct {
	Stage Stage
	Index int
	Start time.Duration // offset of the stage within its cycle
	Cycle int
}

// TimelineEngine drives a Timeline from the scheduler clock. Every Frame resolves the
// elapsed run time; a change of stage cancels the previous generation and then runs
// the stage-entered handlers, which schedule their sub-effects through the Cue. Each
// stage also schedules a frame at its nominal end, so the next stage is entered on the
// boundary itself rather than on the first animation frame after it.
type TimelineEngine struct {
	stagehand
	timeline  *Timeline
	enter     map[string]func(*Cue)
	listeners []func(StageEntered)

	runStart time.Duration
	current  int
	cycle    int
	entered  bool
	running  bool
	finished bool
}

// NewTimelineEngine binds tl to s. The board starts on the first stage.
func NewTimelineEngine(s *Scheduler, tl *Timeline, d Defaults) *TimelineEngine {
	e := &TimelineEngine{
		stagehand: newStagehand(s, d),
		timeline:  tl,
		enter:     make(map[string]func(*Cue)),
	}
	first := tl.Stage(0)
	e.board.setInitialStage(first.ID, first.Payload)
	return e
}

// OnEnter registers the handler run when stage id is entered. A later call replaces
// an earlier one.
func (e *TimelineEngine) OnEnter(id string, fn func(*Cue)) {
	e.enter[id] = fn
}

// OnStageEntered registers a listener for every stage change.
func (e *TimelineEngine) OnStageEntered(fn func(StageEntered)) {
	e.listeners = append(e.listeners, fn)
}

// Timeline returns the stage configuration.
func (e *TimelineEngine) Timeline() *Timeline {
	return e.timeline
}

// Begin marks the run start and enters stage 0 immediately.
func (e *TimelineEngine) Begin() {
	e.runStart = e.sched.Now()
	e.running = true
	e.entered = false
	e.finished = false
	e.Frame()
}

// Frame re-resolves the active stage from the elapsed run time.
func (e *TimelineEngine) Frame() {
	if !e.running || e.finished {
		return
	}
	tl := e.timeline
	total := tl.Total()
	elapsed := e.sched.Now() - e.runStart

	cycle := 0
	if tl.Loop() {
		cycle = int(elapsed / total)
	} else if elapsed >= total {
		// Non-looping timelines park on their last stage.
		e.finished = true
		e.board.progress = 100
		return
	}

	e.board.progress = float64(elapsed%total) / float64(total) * 100
	idx := tl.Resolve(elapsed)
	if e.entered && idx == e.current && cycle == e.cycle {
		return
	}
	e.enterStage(idx, cycle)
}

func (e *TimelineEngine) enterStage(idx, cycle int) {
	// The previous stage's sub-effects must be dead before the new ones are scheduled.
	e.sched.CancelAll()
	e.forgetTypists()

	tl := e.timeline
	st := tl.Stage(idx)
	offset := tl.StartOf(idx)
	e.current = idx
	e.cycle = cycle
	e.entered = true
	e.board.setStage(st.ID, idx, st.Payload)

	start := e.runStart + time.Duration(cycle)*tl.Total() + offset
	// Scheduled ahead of the handlers so it wins ties with their sub-effects.
	e.sched.Schedule(start+st.Duration-e.sched.Now(), e.Frame)

	evt := StageEntered{Stage: st, Index: idx, Start: offset, Cycle: cycle}
	for _, fn := range e.listeners {
		fn(evt)
	}
	if fn := e.enter[st.ID]; fn != nil {
		fn(&Cue{
			hand:    &e.stagehand,
			stage:   st.ID,
			index:   idx,
			start:   start,
			payload: st.Payload,
		})
	}
}

// Rewind stops the run and restores the board defaults.
func (e *TimelineEngine) Rewind() {
	e.running = false
	e.entered = false
	e.finished = false
	e.current = 0
	e.cycle = 0
	e.forgetTypists()
	e.board.Rewind()
}

// Current returns the index of the active stage.
func (e *TimelineEngine) Current() int { return e.current }

// Finished reports whether a non-looping timeline has run past its end.
func (e *TimelineEngine) Finished() bool { return e.finished }

// Snapshot returns a copy of the derived state.
func (e *TimelineEngine) Snapshot() Snapshot {
	return e.board.Snapshot()
}
