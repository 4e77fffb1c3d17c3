package narrativex

import (
	"container/heap"
	"time"
)

// minRepeatInterval bounds ScheduleRepeating so a zero interval cannot pin Advance.
const minRepeatInterval = time.Millisecond

// Handle is the opaque cancellation handle returned by Schedule and ScheduleRepeating.
type Handle uint64

// RunToken is the scheduling generation. CancelAll moves to a new generation and every
// task tagged with an older one is dropped when it comes due.
type RunToken uint64

type task struct {
	id       Handle
	fireAt   time.Duration
	interval time.Duration // zero for one-shot tasks
	action   func()
	token    RunToken
	seq      uint64
	index    int
}

// SchedulerStats is a point-in-time view of scheduler bookkeeping.
type SchedulerStats struct {
	Now        time.Duration
	Token      RunToken
	Pending    int
	Fired      uint64
	Suppressed uint64 // stale callbacks dropped because their token was superseded
	Cancelled  uint64 // tasks removed through Cancel
}

// Scheduler runs deferred actions against a virtual clock that only moves when Advance
// is called. It is not safe for concurrent use: one goroutine owns it (see the realtime
// package), which is what lets the RunToken comparison stand in for locking.
type Scheduler struct {
	now    time.Duration
	token  RunToken
	queue  taskQueue
	tasks  map[Handle]*task
	nextID Handle
	seq    uint64

	fired      uint64
	suppressed uint64
	cancelled  uint64
}

// NewScheduler returns a scheduler at virtual time zero, generation zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[Handle]*task),
	}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Token returns the current generation.
func (s *Scheduler) Token() RunToken {
	return s.token
}

// Schedule runs action once, delay after the current virtual time.
// Negative delays are treated as zero.
func (s *Scheduler) Schedule(delay time.Duration, action func()) Handle {
	if delay < 0 {
		delay = 0
	}
	return s.add(delay, 0, action)
}

// ScheduleRepeating runs action every interval until cancelled or superseded.
// The first run happens one interval from now.
func (s *Scheduler) ScheduleRepeating(interval time.Duration, action func()) Handle {
	if interval < minRepeatInterval {
		interval = minRepeatInterval
	}
	return s.add(interval, interval, action)
}

func (s *Scheduler) add(delay, interval time.Duration, action func()) Handle {
	s.nextID++
	s.seq++
	t := &task{
		id:       s.nextID,
		fireAt:   s.now + delay,
		interval: interval,
		action:   action,
		token:    s.token,
		seq:      s.seq,
	}
	s.tasks[t.id] = t
	heap.Push(&s.queue, t)
	return t.id
}

// Cancel removes a single task. It reports false when the handle is unknown, already
// fired (one-shot) or belongs to a superseded generation.
func (s *Scheduler) Cancel(h Handle) bool {
	t, ok := s.tasks[h]
	if !ok {
		return false
	}
	delete(s.tasks, h)
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
	s.cancelled++
	return true
}

// CancelAll starts a new generation. Nothing scheduled before the call will run, even
// if it is already due inside the Advance that is currently dispatching.
func (s *Scheduler) CancelAll() {
	s.token++
	s.tasks = make(map[Handle]*task)
}

// Advance moves virtual time forward by d and dispatches every task that comes due,
// in fire-time order. Tasks scheduled by actions are dispatched in the same call when
// they fall inside the window.
func (s *Scheduler) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := s.now + d
	for {
		t := s.queue.peek()
		if t == nil || t.fireAt > target {
			break
		}
		heap.Pop(&s.queue)
		s.now = t.fireAt
		s.dispatch(t)
	}
	s.now = target
}

func (s *Scheduler) dispatch(t *task) {
	if t.token != s.token {
		s.suppressed++
		if cur, ok := s.tasks[t.id]; ok && cur == t {
			delete(s.tasks, t.id)
		}
		return
	}
	if t.interval > 0 {
		// Requeue before running so the action may cancel itself.
		s.seq++
		t.fireAt += t.interval
		t.seq = s.seq
		heap.Push(&s.queue, t)
	} else {
		delete(s.tasks, t.id)
	}
	s.fired++
	t.action()
}

// Pending returns the number of tasks of the current generation still waiting to run.
func (s *Scheduler) Pending() int {
	return len(s.tasks)
}

// Stats returns a copy of the scheduler counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Now:        s.now,
		Token:      s.token,
		Pending:    s.Pending(),
		Fired:      s.fired,
		Suppressed: s.suppressed,
		Cancelled:  s.cancelled,
	}
}
