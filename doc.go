// Package narrativex is a timed narrative engine for short interactive demonstrations.
//
// A demonstration advances through named stages over time, runs sub-animations such as
// character-by-character typing relative to stage start, and exposes play, pause and
// reset controls that cancel every in-flight timer without leaking stale callbacks.
//
// # Scheduling
//
// All timing goes through a Scheduler with a virtual clock. Every scheduled action is
// tagged with the RunToken current at schedule time; CancelAll moves to a new token and
// dispatch drops anything older. Engines call CancelAll on every stage entry and run
// start, so a late callback from a previous stage can never touch the board.
//
// # Engines
//
// Two strategies share that cancellation discipline:
//
//   - TimelineEngine re-derives the active stage from elapsed time on every frame and
//     fires a stage-entered event when it changes. Looping timelines wrap to stage 0.
//   - ChainEngine schedules an authored list of steps at absolute offsets from run
//     start. Steps read live Inputs when they fire, so a toggle flipped mid-run steers
//     the branches taken by later steps.
//
// # Playback
//
// Controller gates an engine. Pause is stop-and-rewind: it cancels everything and shows
// the pristine initial snapshot. Reset is Pause followed by Play.
//
//	s := narrativex.NewScheduler()
//	b := narrativex.NewScript("demo").Loop()
//	b.Stage("typing", 3*time.Second).OnEnter(func(c *narrativex.Cue) {
//		c.Type("query", "SELECT * FROM users", 50*time.Millisecond, nil)
//	})
//	eng, _ := b.Build(s)
//	ctl, _ := narrativex.NewController(s, eng)
//	ctl.Advance(time.Second)
//	snap := ctl.Snapshot()
//
// Wall-clock driving, host commands from other goroutines and snapshot publishing live
// in the realtime package.
package narrativex
