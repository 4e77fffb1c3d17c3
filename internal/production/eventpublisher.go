package production

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/realtime"
)

// ChannelPublisher forwards snapshots to a Go channel. Publish never blocks: when the
// consumer falls behind the snapshot is dropped and counted.
type ChannelPublisher struct {
	ch      chan<- narrativex.Snapshot
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- narrativex.Snapshot) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish implements realtime.Publisher.
func (p *ChannelPublisher) Publish(snap narrativex.Snapshot) {
	if p.closed.Load() {
		return
	}
	select {
	case p.ch <- snap:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many snapshots were discarded.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the output channel. It must not race with Publish; call it after the
// runtime has stopped.
func (p *ChannelPublisher) Close() error {
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.ch)
	})
	return nil
}

// ChangePublisher wraps a publisher and forwards only snapshots whose stage, text,
// flags, counters, log or playing state differ from the last one forwarded. Progress
// alone does not count as a change.
type ChangePublisher struct {
	next realtime.Publisher
	last *narrativex.Snapshot
}

// NewChangePublisher wraps next.
func NewChangePublisher(next realtime.Publisher) *ChangePublisher {
	return &ChangePublisher{next: next}
}

// Publish implements realtime.Publisher.
func (p *ChangePublisher) Publish(snap narrativex.Snapshot) {
	if p.last != nil && sameScene(*p.last, snap) {
		return
	}
	p.last = &snap
	p.next.Publish(snap)
}

func sameScene(a, b narrativex.Snapshot) bool {
	a.Progress, b.Progress = 0, 0
	return reflect.DeepEqual(a, b)
}
