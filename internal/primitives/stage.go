package primitives

import (
	"errors"
	"fmt"
	"time"
)

// StageConfig defines a timeline stage.
type StageConfig struct {
	ID          string      `json:"id" yaml:"id"`
	Duration    Duration    `json:"duration" yaml:"duration"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Cues        []CueConfig `json:"cues,omitempty" yaml:"cues,omitempty"`
}

// NewStageConfig creates a new StageConfig with ID and Duration.
func NewStageConfig(id string, d time.Duration) *StageConfig {
	return &StageConfig{
		ID:       id,
		Duration: Duration(d),
	}
}

// WithTitle sets the narrator title and description.
func (s *StageConfig) WithTitle(title, description string) *StageConfig {
	s.Title = title
	s.Description = description
	return s
}

// AddCue adds a cue.
func (s *StageConfig) AddCue(c CueConfig) *StageConfig {
	s.Cues = append(s.Cues, c)
	return s
}

// Validate checks the stage and its cues.
func (s *StageConfig) Validate() error {
	if s.ID == "" {
		return errors.New("stage ID is required")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("stage %s requires a positive duration", s.ID)
	}
	for i := range s.Cues {
		if err := s.Cues[i].Validate(); err != nil {
			return fmt.Errorf("cue %d: %w", i, err)
		}
	}
	return nil
}

// StepConfig defines a chain step. Stage may be empty for steps that only run cues.
// When, if set, is evaluated as the step fires; a false guard skips the step.
type StepConfig struct {
	At          Duration    `json:"at" yaml:"at"`
	Stage       string      `json:"stage,omitempty" yaml:"stage,omitempty"`
	When        string      `json:"when,omitempty" yaml:"when,omitempty"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Cues        []CueConfig `json:"cues,omitempty" yaml:"cues,omitempty"`
}

// NewStepConfig creates a new StepConfig at offset at.
func NewStepConfig(at time.Duration, stage string) *StepConfig {
	return &StepConfig{
		At:    Duration(at),
		Stage: stage,
	}
}

// WithTitle sets the narrator title and description.
func (s *StepConfig) WithTitle(title, description string) *StepConfig {
	s.Title = title
	s.Description = description
	return s
}

// AddCue adds a cue.
func (s *StepConfig) AddCue(c CueConfig) *StepConfig {
	s.Cues = append(s.Cues, c)
	return s
}

// Validate checks the step and its cues.
func (s *StepConfig) Validate() error {
	if s.At < 0 {
		return fmt.Errorf("negative offset %v", s.At)
	}
	for i := range s.Cues {
		if err := s.Cues[i].Validate(); err != nil {
			return fmt.Errorf("cue %d: %w", i, err)
		}
	}
	return nil
}
