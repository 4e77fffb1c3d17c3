package narrativex

// Engine is a scheduling strategy the Controller gates. TimelineEngine re-derives its
// stage from a continuous clock; ChainEngine fires an authored list of offsets.
//
// The Controller always calls Scheduler.CancelAll before Begin and Rewind, so engines
// start from a fresh generation.
type Engine interface {
	// Begin starts from the first stage.
	Begin()
	// Frame is called once per animation frame while playing.
	Frame()
	// Rewind drops run bookkeeping and restores the board defaults.
	Rewind()
	// Board returns the engine's derived state.
	Board() *Board
	// Snapshot returns a copy of the derived state.
	Snapshot() Snapshot
}

// Replayer is implemented by engines that can restart from a named stage, e.g. the
// "replay with protection" control of a parked chain.
type Replayer interface {
	RunFrom(stage string) error
}
