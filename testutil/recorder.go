package testutil

import (
	"sync"

	"github.com/comalice/narrativex"
)

// Recorder is a realtime.Publisher that remembers every snapshot's stage. Safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	count  int
	stages []string
	last   narrativex.Snapshot
}

// Publish records snap.
func (r *Recorder) Publish(snap narrativex.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	if n := len(r.stages); n == 0 || r.stages[n-1] != snap.ActiveStageID {
		r.stages = append(r.stages, snap.ActiveStageID)
	}
	r.last = snap
}

// Stages returns the stage ids seen, with consecutive repeats collapsed.
func (r *Recorder) Stages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stages...)
}

// Last returns the most recent snapshot.
func (r *Recorder) Last() narrativex.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Count returns how many snapshots were published.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
