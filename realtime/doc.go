// Package realtime drives a narrativex.Controller from wall-clock time.
//
// The engine itself runs on a virtual clock and is not safe for concurrent use. This
// package gives it a single owning goroutine:
//   - A ticker fires at a fixed rate (default 60 FPS)
//   - Host commands are batched and applied at tick boundaries
//   - The controller is advanced by the wall time elapsed since the last tick
//   - A snapshot is published after every tick
//
// # Example Usage
//
//	s := narrativex.NewScheduler()
//	ctl, _ := narrativex.NewController(s, engine)
//	rt := realtime.NewRuntime(ctl, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	rt.Start(ctx)
//	defer rt.Stop()
//	rt.Send(realtime.Command{Type: realtime.CommandSetInput, Name: "protection", Value: true})
//
// # Command Ordering Guarantees
//
// Commands are ordered deterministically using:
//  1. Priority (higher priority processed first)
//  2. Sequence number (FIFO for same priority)
//  3. Stable sorting (preserves relative order)
//
// Given the same sequence of Send calls between two ticks, the controller sees the
// same sequence of transitions regardless of which goroutines sent them.
//
// # Time Steps
//
// Each tick advances the controller by the wall time since the previous tick, capped
// at Config.MaxDelta so a stalled process (a suspended laptop, a debugger) resumes
// where it left off instead of skipping whole stages. Inject a Clock to drive ticks
// deterministically.
package realtime
