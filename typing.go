package narrativex

import (
	"iter"
	"time"
)

// Prefixes yields target[:1], target[:2], ... target[:n] on rune boundaries.
// The sequence is lazy and can be ranged over any number of times.
func Prefixes(target string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := range target {
			if i == 0 {
				continue
			}
			if !yield(target[:i]) {
				return
			}
		}
		if target != "" {
			yield(target)
		}
	}
}

// Typist reveals a string one rune per interval. A Typist owns at most one job:
// starting a new one stops the previous job first.
type Typist struct {
	sched    *Scheduler
	handle   Handle
	job      uint64
	running  bool
	next     func() (string, bool)
	release  func()
	target   string
	cursor   int
	interval time.Duration
}

// NewTypist returns an idle typist bound to s.
func NewTypist(s *Scheduler) *Typist {
	return &Typist{sched: s}
}

// Start begins revealing target. emit receives each prefix; done, if non-nil, runs
// after the last prefix. An empty target completes immediately.
func (t *Typist) Start(target string, interval time.Duration, emit func(string), done func()) Handle {
	t.Stop()

	t.job++
	job := t.job
	t.target = target
	t.cursor = 0
	t.interval = interval

	if target == "" {
		if done != nil {
			done()
		}
		return 0
	}

	t.next, t.release = iter.Pull(Prefixes(target))
	t.running = true
	t.handle = t.sched.ScheduleRepeating(interval, func() {
		if job != t.job {
			return
		}
		prefix, ok := t.next()
		if ok {
			t.cursor++
			if emit != nil {
				emit(prefix)
			}
		}
		if !ok || len(prefix) == len(target) {
			t.sched.Cancel(t.handle)
			t.running = false
			t.drop()
			if done != nil {
				done()
			}
		}
	})
	return t.handle
}

// drop releases the prefix sequence of the current job.
func (t *Typist) drop() {
	if t.release != nil {
		t.release()
		t.next, t.release = nil, nil
	}
}

// Stop cancels the current job, if any. The cursor keeps its last value.
func (t *Typist) Stop() {
	if !t.running {
		return
	}
	t.sched.Cancel(t.handle)
	t.job++
	t.running = false
	t.drop()
}

// Running reports whether a job is still revealing characters.
func (t *Typist) Running() bool {
	return t.running
}

// Cursor returns how many runes of the current target have been revealed.
func (t *Typist) Cursor() int {
	return t.cursor
}

// Target returns the string of the current or last job.
func (t *Typist) Target() string {
	return t.target
}

// forget drops job state after the scheduler generation moved on underneath it.
func (t *Typist) forget() {
	t.job++
	t.running = false
	t.cursor = 0
	t.target = ""
	t.drop()
}
