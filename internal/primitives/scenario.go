package primitives

import (
	"errors"
	"fmt"
	"slices"
)

// Kind selects the scheduling strategy a scenario compiles to.
type Kind string

const (
	// KindTimeline derives the active stage from a continuous clock.
	KindTimeline Kind = "timeline"
	// KindChain fires steps at absolute offsets from run start.
	KindChain Kind = "chain"
)

// DefaultsConfig is the pristine state a scenario starts from and returns to on pause.
type DefaultsConfig struct {
	Flags        map[string]any    `json:"flags,omitempty" yaml:"flags,omitempty"`
	Text         map[string]string `json:"text,omitempty" yaml:"text,omitempty"`
	Counters     map[string]int    `json:"counters,omitempty" yaml:"counters,omitempty"`
	Log          []string          `json:"log,omitempty" yaml:"log,omitempty"`
	Inputs       map[string]any    `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	StickyInputs bool              `json:"stickyInputs,omitempty" yaml:"stickyInputs,omitempty"`
}

// ScenarioConfig is the complete declarative form of a demonstration.
type ScenarioConfig struct {
	Version     string         `json:"version,omitempty" yaml:"version,omitempty"`
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        Kind           `json:"kind" yaml:"kind"`
	Loop        bool           `json:"loop,omitempty" yaml:"loop,omitempty"`
	ReplayFrom  string         `json:"replayFrom,omitempty" yaml:"replayFrom,omitempty"`
	Defaults    DefaultsConfig `json:"defaults,omitzero" yaml:"defaults,omitempty"`
	Stages      []*StageConfig `json:"stages,omitempty" yaml:"stages,omitempty"`
	Steps       []*StepConfig  `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// NewScenarioConfig creates a new ScenarioConfig.
func NewScenarioConfig(id string, kind Kind) *ScenarioConfig {
	return &ScenarioConfig{
		ID:   id,
		Kind: kind,
	}
}

// AddStage adds a timeline stage.
func (c *ScenarioConfig) AddStage(s *StageConfig) *ScenarioConfig {
	c.Stages = append(c.Stages, s)
	return c
}

// AddStep adds a chain step.
func (c *ScenarioConfig) AddStep(s *StepConfig) *ScenarioConfig {
	c.Steps = append(c.Steps, s)
	return c
}

// Validate validates the scenario.
func (c *ScenarioConfig) Validate() error {
	if c.ID == "" {
		return errors.New("scenario ID is required")
	}

	switch c.Kind {
	case KindTimeline:
		if len(c.Steps) > 0 {
			return fmt.Errorf("scenario %s: timeline cannot have steps", c.ID)
		}
		if len(c.Stages) == 0 {
			return fmt.Errorf("scenario %s: timeline requires at least one stage", c.ID)
		}
		if c.ReplayFrom != "" {
			return fmt.Errorf("scenario %s: replayFrom is only valid for chains", c.ID)
		}
	case KindChain:
		if len(c.Stages) > 0 {
			return fmt.Errorf("scenario %s: chain cannot have stages", c.ID)
		}
		if len(c.Steps) == 0 {
			return fmt.Errorf("scenario %s: chain requires at least one step", c.ID)
		}
	default:
		return fmt.Errorf("scenario %s: unknown kind %q", c.ID, c.Kind)
	}

	seen := make(map[string]bool)
	for i, s := range c.Stages {
		if s == nil {
			return fmt.Errorf("scenario %s: stage %d is nil", c.ID, i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scenario %s: stage %d: %w", c.ID, i, err)
		}
		if seen[s.ID] {
			return fmt.Errorf("scenario %s: duplicate stage %s", c.ID, s.ID)
		}
		seen[s.ID] = true
	}

	var last Duration
	for i, s := range c.Steps {
		if s == nil {
			return fmt.Errorf("scenario %s: step %d is nil", c.ID, i)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scenario %s: step %d: %w", c.ID, i, err)
		}
		if s.At < last {
			return fmt.Errorf("scenario %s: step %d at %v precedes step %d at %v", c.ID, i, s.At, i-1, last)
		}
		last = s.At
	}
	if c.Kind == KindChain && c.Loop && len(c.Steps) > 0 && last == 0 {
		return fmt.Errorf("scenario %s: looping chain needs a final step after offset 0", c.ID)
	}

	if c.ReplayFrom != "" && !slices.Contains(c.StageIDs(), c.ReplayFrom) {
		return fmt.Errorf("scenario %s: replay target %s not found", c.ID, c.ReplayFrom)
	}
	return nil
}

// FindStage returns the timeline stage with the given id.
func (c *ScenarioConfig) FindStage(id string) (*StageConfig, bool) {
	for _, s := range c.Stages {
		if s != nil && s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// StageIDs returns the distinct stage ids in authored order. For chains these are
// the non-empty step stages.
func (c *ScenarioConfig) StageIDs() []string {
	var ids []string
	for _, s := range c.Stages {
		if s != nil && !slices.Contains(ids, s.ID) {
			ids = append(ids, s.ID)
		}
	}
	for _, s := range c.Steps {
		if s != nil && s.Stage != "" && !slices.Contains(ids, s.Stage) {
			ids = append(ids, s.Stage)
		}
	}
	return ids
}
