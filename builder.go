package narrativex

import (
	"time"
)

// ScriptBuilder provides a fluent API for authoring a demonstration. A script made of
// stages builds a TimelineEngine; a script made of steps builds a ChainEngine.
type ScriptBuilder struct {
	id         string
	loop       bool
	completion Completion
	defaults   Defaults
	stageIdx   map[string]int
	stages     []*StageBuilder
	steps      []*StepBuilder
}

// StageBuilder configures one timeline stage.
type StageBuilder struct {
	stage   Stage
	onEnter []func(*Cue)
}

// StepBuilder configures one chain step.
type StepBuilder struct {
	step    Step
	actions []func(*Cue)
}

// NewScript creates a builder for the demonstration id. Scripts park by default.
func NewScript(id string) *ScriptBuilder {
	return &ScriptBuilder{
		id:         id,
		completion: Park,
		stageIdx:   make(map[string]int),
	}
}

// ID returns the script id.
func (b *ScriptBuilder) ID() string { return b.id }

// Loop makes a timeline wrap and a chain re-run after its final step.
func (b *ScriptBuilder) Loop() *ScriptBuilder {
	b.loop = true
	b.completion = Loop
	return b
}

// Park makes a timeline stop on its last stage and a chain wait after its final step.
func (b *ScriptBuilder) Park() *ScriptBuilder {
	b.loop = false
	b.completion = Park
	return b
}

// Defaults sets the pristine board state.
func (b *ScriptBuilder) Defaults(d Defaults) *ScriptBuilder {
	b.defaults = d
	return b
}

// Stage creates or retrieves a stage by id. Calling it again for the same id updates
// the duration and keeps the original position.
func (b *ScriptBuilder) Stage(id string, d time.Duration) *StageBuilder {
	if i, ok := b.stageIdx[id]; ok {
		sb := b.stages[i]
		sb.stage.Duration = d
		return sb
	}
	sb := &StageBuilder{stage: Stage{ID: id, Duration: d}}
	b.stageIdx[id] = len(b.stages)
	b.stages = append(b.stages, sb)
	return sb
}

// Step appends a chain step at offset at from run start. stage may be empty.
func (b *ScriptBuilder) Step(at time.Duration, stage string) *StepBuilder {
	sb := &StepBuilder{step: Step{At: at, Stage: stage}}
	b.steps = append(b.steps, sb)
	return sb
}

// Build validates the script and constructs its engine on s.
func (b *ScriptBuilder) Build(s *Scheduler) (Engine, error) {
	switch {
	case len(b.stages) > 0 && len(b.steps) > 0:
		return nil, configErr("script "+b.id, -1, "mixes stages and steps")
	case len(b.stages) > 0:
		return b.BuildTimeline(s)
	case len(b.steps) > 0:
		return b.BuildChain(s)
	default:
		return nil, configErr("script "+b.id, -1, "no stages or steps")
	}
}

// BuildTimeline constructs a TimelineEngine from the script's stages.
func (b *ScriptBuilder) BuildTimeline(s *Scheduler) (*TimelineEngine, error) {
	stages := make([]Stage, len(b.stages))
	for i, sb := range b.stages {
		stages[i] = sb.stage
	}
	tl, err := NewTimeline(b.loop, stages...)
	if err != nil {
		return nil, err
	}
	e := NewTimelineEngine(s, tl, b.defaults)
	for _, sb := range b.stages {
		if fn := sequence(sb.onEnter); fn != nil {
			e.OnEnter(sb.stage.ID, fn)
		}
	}
	return e, nil
}

// BuildChain constructs a ChainEngine from the script's steps.
func (b *ScriptBuilder) BuildChain(s *Scheduler) (*ChainEngine, error) {
	steps := make([]Step, len(b.steps))
	for i, sb := range b.steps {
		steps[i] = sb.step
		steps[i].Action = sequence(sb.actions)
	}
	c, err := NewChain(b.completion, steps...)
	if err != nil {
		return nil, err
	}
	return NewChainEngine(s, c, b.defaults), nil
}

func sequence(fns []func(*Cue)) func(*Cue) {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(c *Cue) {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// Payload sets the stage payload.
func (sb *StageBuilder) Payload(p any) *StageBuilder {
	sb.stage.Payload = p
	return sb
}

// OnEnter adds a handler run when the stage is entered. Handlers run in the order added.
func (sb *StageBuilder) OnEnter(fn func(*Cue)) *StageBuilder {
	if fn != nil {
		sb.onEnter = append(sb.onEnter, fn)
	}
	return sb
}

// Payload sets the step payload.
func (sb *StepBuilder) Payload(p any) *StepBuilder {
	sb.step.Payload = p
	return sb
}

// When sets the guard consulted as the step fires.
func (sb *StepBuilder) When(fn func(*Cue) bool) *StepBuilder {
	sb.step.When = fn
	return sb
}

// Do adds an action run when the step fires. Actions run in the order added.
func (sb *StepBuilder) Do(fn func(*Cue)) *StepBuilder {
	if fn != nil {
		sb.actions = append(sb.actions, fn)
	}
	return sb
}
