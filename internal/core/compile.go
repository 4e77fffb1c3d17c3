package core

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/primitives"
)

// ErrUnknownAction is returned by Compile for a cue action that is neither built in
// nor supported by the configured ActionRunner.
var ErrUnknownAction = errors.New("unknown cue action")

// ActionRunner executes cue actions the compiler does not know about.
type ActionRunner interface {
	Run(c *narrativex.Cue, cue primitives.CueConfig) error
}

// ActionSupporter is optionally implemented by an ActionRunner to let Compile reject
// unknown actions up front instead of failing when the cue fires.
type ActionSupporter interface {
	Supports(action string) bool
}

// GuardEvaluator decides a When expression against the live inputs.
type GuardEvaluator interface {
	Eval(in *narrativex.Inputs, expr string) bool
}

// Narration is the payload attached to every compiled stage and step.
type Narration struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type compiler struct {
	actions ActionRunner
	guards  GuardEvaluator
	logger  *log.Logger
}

type cueFunc func(*narrativex.Cue)

// Compile validates cfg and builds its engine on s.
func Compile(cfg *primitives.ScenarioConfig, s *narrativex.Scheduler, opts ...Option) (narrativex.Engine, error) {
	if cfg == nil {
		return nil, errors.New("core: nil scenario")
	}
	if err := cfg.Validate(); err != nil {
		return nil, &narrativex.ConfigError{Component: "scenario", Index: -1, Reason: err.Error()}
	}

	c := &compiler{
		guards: InputGuard{},
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}

	b := narrativex.NewScript(cfg.ID).Defaults(Defaults(cfg.Defaults))
	if cfg.Loop {
		b.Loop()
	}

	switch cfg.Kind {
	case primitives.KindTimeline:
		for i, st := range cfg.Stages {
			fn, err := c.cues(st.Cues)
			if err != nil {
				return nil, fmt.Errorf("core: scenario %s stage %d (%s): %w", cfg.ID, i, st.ID, err)
			}
			sb := b.Stage(st.ID, st.Duration.Std()).Payload(narration(st.Title, st.Description))
			if fn != nil {
				sb.OnEnter(fn)
			}
		}
	case primitives.KindChain:
		for i, st := range cfg.Steps {
			fn, err := c.cues(st.Cues)
			if err != nil {
				return nil, fmt.Errorf("core: scenario %s step %d: %w", cfg.ID, i, err)
			}
			sb := b.Step(st.At.Std(), st.Stage).Payload(narration(st.Title, st.Description))
			if st.When != "" {
				expr := st.When
				sb.When(func(q *narrativex.Cue) bool { return c.guards.Eval(q.Inputs(), expr) })
			}
			if fn != nil {
				sb.Do(fn)
			}
		}
	}
	return b.Build(s)
}

// Defaults converts the declarative defaults into the board's pristine state.
func Defaults(d primitives.DefaultsConfig) narrativex.Defaults {
	return narrativex.Defaults{
		Flags:        d.Flags,
		Text:         d.Text,
		Counters:     d.Counters,
		Log:          d.Log,
		Inputs:       d.Inputs,
		StickyInputs: d.StickyInputs,
	}
}

func narration(title, description string) any {
	if title == "" && description == "" {
		return nil
	}
	return Narration{Title: title, Description: description}
}

// cues compiles a list into one function. It returns nil for an empty list.
func (c *compiler) cues(list []primitives.CueConfig) (cueFunc, error) {
	fns := make([]cueFunc, 0, len(list))
	for i, cc := range list {
		fn, err := c.cue(cc)
		if err != nil {
			return nil, fmt.Errorf("cue %d (%s): %w", i, cc.Action, err)
		}
		fns = append(fns, fn)
	}
	if len(fns) == 0 {
		return nil, nil
	}
	return func(q *narrativex.Cue) {
		for _, fn := range fns {
			fn(q)
		}
	}, nil
}

func (c *compiler) cue(cc primitives.CueConfig) (cueFunc, error) {
	then, err := c.cues(cc.Then)
	if err != nil {
		return nil, fmt.Errorf("then: %w", err)
	}
	otherwise, err := c.cues(cc.Else)
	if err != nil {
		return nil, fmt.Errorf("else: %w", err)
	}
	effect, err := c.effect(cc, then)
	if err != nil {
		return nil, err
	}

	fire := effect
	if expr := strings.TrimSpace(cc.When); expr != "" {
		fire = func(q *narrativex.Cue) {
			if c.guards.Eval(q.Inputs(), expr) {
				effect(q)
			} else if otherwise != nil {
				otherwise(q.Fork())
			}
		}
	}

	at, every, times := cc.At.Std(), cc.Every.Std(), cc.Times
	run := func(q *narrativex.Cue) {
		if times > 0 {
			f := q.Fork()
			f.Repeat(every, times, func(int) { fire(f) })
			return
		}
		fire(q)
	}
	return func(q *narrativex.Cue) {
		if at <= q.Elapsed() {
			run(q)
			return
		}
		q.After(at, func() { run(q) })
	}, nil
}
