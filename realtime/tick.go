package realtime

import (
	"fmt"
	"time"
)

// tick runs one tick at wall time now with panic recovery.
func (rt *Runtime) tick(now time.Time) {
	func() {
		defer func() {
			if r := recover(); r != nil {
				rt.logger.Printf("realtime: recovered panic in tick %d: %v", rt.TickNumber(), r)
			}
		}()
		rt.processTick(now)
	}()

	rt.batchMu.Lock()
	rt.tickNum++
	rt.batchMu.Unlock()
}

// processTick processes one complete tick
func (rt *Runtime) processTick(now time.Time) {
	// Phase 1: Collect commands atomically
	cmds := rt.collectCommands()

	// Phase 2: Sort for deterministic order
	rt.sortCommands(cmds)

	// Phase 3: Apply host commands before time moves
	for _, c := range cmds {
		if err := rt.apply(c.Command); err != nil {
			rt.logger.Printf("realtime: %s command failed: %v", c.Command.Type, err)
		}
	}

	// Phase 4: Advance the controller by the wall time since the last tick
	delta := now.Sub(rt.last)
	rt.last = now
	if delta > rt.maxDelta {
		delta = rt.maxDelta
	}
	if delta > 0 {
		rt.ctl.Advance(delta)
	}

	// Phase 5: Publish
	rt.publish()
}

// collectCommands atomically retrieves and clears the command batch
func (rt *Runtime) collectCommands() []CommandWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	cmds := rt.batch
	rt.batch = make([]CommandWithMeta, 0, cap(rt.batch))

	return cmds
}

func (rt *Runtime) apply(c Command) error {
	switch c.Type {
	case CommandPlay:
		rt.ctl.Play()
	case CommandPause:
		rt.ctl.Pause()
	case CommandToggle:
		rt.ctl.Toggle()
	case CommandReset:
		rt.ctl.Reset()
	case CommandSetInput:
		if c.Name == "" {
			return fmt.Errorf("set_input: missing input name")
		}
		rt.ctl.SetInput(c.Name, c.Value)
	case CommandToggleInput:
		if c.Name == "" {
			return fmt.Errorf("toggle_input: missing input name")
		}
		rt.ctl.ToggleInput(c.Name)
	case CommandReplay:
		return rt.ctl.Replay(c.Stage)
	default:
		return fmt.Errorf("unknown command %s", c.Type)
	}
	return nil
}

func (rt *Runtime) publish() {
	snap := rt.ctl.Snapshot()
	rt.snapMu.Lock()
	rt.snapshot = snap
	rt.snapMu.Unlock()
	if rt.publisher != nil {
		rt.publisher.Publish(snap)
	}
}
