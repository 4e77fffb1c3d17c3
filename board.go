package narrativex

import "maps"

// Defaults is the pristine state of a demonstration. Pausing or resetting restores it.
// Inputs seed the live domain flags; StickyInputs keeps host-set inputs across a pause.
type Defaults struct {
	Flags        map[string]any
	Text         map[string]string
	Counters     map[string]int
	Log          []string
	Inputs       map[string]any
	StickyInputs bool
}

// Snapshot is the read-only view handed to the presentation layer on every frame or step.
type Snapshot struct {
	ActiveStageID string            `json:"activeStageId" yaml:"activeStageId"`
	StageIndex    int               `json:"stageIndex" yaml:"stageIndex"`
	Payload       any               `json:"payload,omitempty" yaml:"payload,omitempty"`
	Progress      float64           `json:"progress" yaml:"progress"`
	Playing       bool              `json:"playing" yaml:"playing"`
	Parked        bool              `json:"parked,omitempty" yaml:"parked,omitempty"`
	Flags         map[string]any    `json:"subAnimationFlags" yaml:"subAnimationFlags"`
	Text          map[string]string `json:"typedText" yaml:"typedText"`
	Counters      map[string]int    `json:"derivedCounters" yaml:"derivedCounters"`
	Log           []string          `json:"logLines" yaml:"logLines"`
	Inputs        map[string]any    `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// Board holds the derived state engines mutate and snapshots read.
// Like the Scheduler it belongs to the engine goroutine; only Inputs is shared.
type Board struct {
	defaults Defaults

	initialStage string
	initialLoad  any

	stageID    string
	stageIndex int
	payload    any
	progress   float64
	parked     bool

	flags    map[string]any
	text     map[string]string
	counters map[string]int
	log      []string
	inputs   *Inputs
}

// NewBoard returns a board holding a private copy of d.
func NewBoard(d Defaults) *Board {
	b := &Board{
		defaults: Defaults{
			Flags:        cloneMap(d.Flags),
			Text:         cloneMap(d.Text),
			Counters:     cloneMap(d.Counters),
			Log:          append([]string(nil), d.Log...),
			Inputs:       cloneMap(d.Inputs),
			StickyInputs: d.StickyInputs,
		},
		inputs: NewInputs(d.Inputs),
	}
	b.Rewind()
	return b
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	maps.Copy(out, m)
	return out
}

// Rewind restores flags, text, counters, log and the active stage to their defaults.
// Inputs are left alone; see ResetInputs.
func (b *Board) Rewind() {
	b.flags = cloneMap(b.defaults.Flags)
	b.text = cloneMap(b.defaults.Text)
	b.counters = cloneMap(b.defaults.Counters)
	b.log = append([]string(nil), b.defaults.Log...)
	b.stageID = b.initialStage
	b.stageIndex = 0
	b.payload = b.initialLoad
	b.progress = 0
	b.parked = false
}

// ResetInputs restores inputs to their defaults.
func (b *Board) ResetInputs() {
	b.inputs.LoadAll(b.defaults.Inputs)
}

// StickyInputs reports whether inputs survive a pause.
func (b *Board) StickyInputs() bool {
	return b.defaults.StickyInputs
}

// Inputs returns the live input set.
func (b *Board) Inputs() *Inputs {
	return b.inputs
}

func (b *Board) setInitialStage(id string, payload any) {
	b.initialStage = id
	b.initialLoad = payload
	b.stageID = id
	b.payload = payload
}

func (b *Board) setStage(id string, index int, payload any) {
	b.stageID = id
	b.stageIndex = index
	b.payload = payload
}

// StageID returns the active stage id.
func (b *Board) StageID() string { return b.stageID }

// SetFlag sets a sub-animation flag.
func (b *Board) SetFlag(name string, value any) { b.flags[name] = value }

// Flag returns a sub-animation flag, or nil.
func (b *Board) Flag(name string) any { return b.flags[name] }

// SetText replaces the text of a field.
func (b *Board) SetText(field, value string) { b.text[field] = value }

// Text returns the text of a field.
func (b *Board) Text(field string) string { return b.text[field] }

// SetCounter sets a counter.
func (b *Board) SetCounter(name string, value int) { b.counters[name] = value }

// AddCounter adds delta to a counter and returns the new value.
func (b *Board) AddCounter(name string, delta int) int {
	b.counters[name] += delta
	return b.counters[name]
}

// Counter returns a counter.
func (b *Board) Counter(name string) int { return b.counters[name] }

// AppendLog appends lines to the log.
func (b *Board) AppendLog(lines ...string) { b.log = append(b.log, lines...) }

// SetLog replaces the log.
func (b *Board) SetLog(lines []string) { b.log = append([]string(nil), lines...) }

// ClearLog empties the log.
func (b *Board) ClearLog() { b.log = nil }

// Log returns a copy of the log lines.
func (b *Board) Log() []string { return append([]string(nil), b.log...) }

// Snapshot copies the board. Playing is filled in by the Controller.
func (b *Board) Snapshot() Snapshot {
	log := []string{}
	log = append(log, b.log...)
	return Snapshot{
		ActiveStageID: b.stageID,
		StageIndex:    b.stageIndex,
		Payload:       b.payload,
		Progress:      b.progress,
		Parked:        b.parked,
		Flags:         cloneMap(b.flags),
		Text:          cloneMap(b.text),
		Counters:      cloneMap(b.counters),
		Log:           log,
		Inputs:        b.inputs.GetAll(),
	}
}
