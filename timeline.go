package narrativex

import "time"

// Stage is a named phase of a demonstration. Payload is opaque to the engine.
type Stage struct {
	ID       string
	Duration time.Duration
	Payload  any
}

// Timeline is an ordered, optionally looping list of stages resolved by elapsed time.
// Stage k owns the half-open interval [start(k), start(k)+Duration).
type Timeline struct {
	stages []Stage
	ends   []time.Duration // cumulative end offsets
	total  time.Duration
	loop   bool
}

// NewTimeline validates stages and returns a timeline. It rejects an empty list,
// empty or duplicate ids, and non-positive durations.
func NewTimeline(loop bool, stages ...Stage) (*Timeline, error) {
	if len(stages) == 0 {
		return nil, configErr("timeline", -1, "no stages provided")
	}
	tl := &Timeline{
		stages: make([]Stage, len(stages)),
		ends:   make([]time.Duration, len(stages)),
		loop:   loop,
	}
	seen := make(map[string]struct{}, len(stages))
	for i, st := range stages {
		if st.ID == "" {
			return nil, configErr("timeline", i, "stage id is required")
		}
		if _, dup := seen[st.ID]; dup {
			return nil, configErr("timeline", i, "duplicate stage id %q", st.ID)
		}
		seen[st.ID] = struct{}{}
		if st.Duration <= 0 {
			return nil, configErr("timeline", i, "stage %q has non-positive duration %v", st.ID, st.Duration)
		}
		tl.total += st.Duration
		tl.stages[i] = st
		tl.ends[i] = tl.total
	}
	return tl, nil
}

// Resolve returns the index of the stage active at elapsed. Looping timelines wrap
// elapsed modulo Total first. A boundary instant belongs to the next stage. Anything
// that matches no stage resolves to 0.
func (tl *Timeline) Resolve(elapsed time.Duration) int {
	if i, ok := tl.locate(elapsed); ok {
		return i
	}
	return 0
}

func (tl *Timeline) locate(elapsed time.Duration) (int, bool) {
	if tl.loop {
		elapsed %= tl.total
	}
	if elapsed < 0 {
		return 0, false
	}
	for i, end := range tl.ends {
		if elapsed < end {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of stages.
func (tl *Timeline) Len() int { return len(tl.stages) }

// Stage returns the i-th stage.
func (tl *Timeline) Stage(i int) Stage { return tl.stages[i] }

// Stages returns a copy of the stage list.
func (tl *Timeline) Stages() []Stage {
	return append([]Stage(nil), tl.stages...)
}

// Total is the sum of all stage durations.
func (tl *Timeline) Total() time.Duration { return tl.total }

// Loop reports whether the timeline wraps at Total.
func (tl *Timeline) Loop() bool { return tl.loop }

// StartOf returns the offset at which stage i begins.
func (tl *Timeline) StartOf(i int) time.Duration {
	if i <= 0 {
		return 0
	}
	return tl.ends[i-1]
}

// IndexOf returns the position of the stage with the given id, or -1.
func (tl *Timeline) IndexOf(id string) int {
	for i, st := range tl.stages {
		if st.ID == id {
			return i
		}
	}
	return -1
}
