package primitives

import (
	"errors"
	"fmt"
	"strings"
)

// Built-in cue actions.
const (
	ActionSetFlag    = "set_flag"    // Target = Value
	ActionSetText    = "set_text"    // Target = Text
	ActionType       = "type"        // reveal Text into Target, one rune per Interval, then Then
	ActionClearText  = "clear_text"  // Target = ""
	ActionSetCounter = "set_counter" // Target = Value
	ActionAdd        = "add"         // Target += Delta, clamped to [Min, Max] when set
	ActionLog        = "log"         // append Lines (or Text)
	ActionSetLog     = "set_log"     // replace the log with Lines
	ActionClearLog   = "clear_log"
)

// CueConfig defines a single timed effect, run At after its stage or step starts.
// A cue with When is a decision point: the guard is evaluated as the cue fires and
// Else runs instead when it is false.
type CueConfig struct {
	At       Duration    `json:"at,omitempty" yaml:"at,omitempty"`
	Action   string      `json:"action" yaml:"action"`
	When     string      `json:"when,omitempty" yaml:"when,omitempty"`
	Target   string      `json:"target,omitempty" yaml:"target,omitempty"`
	Value    any         `json:"value,omitempty" yaml:"value,omitempty"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Lines    []string    `json:"lines,omitempty" yaml:"lines,omitempty"`
	Interval Duration    `json:"interval,omitempty" yaml:"interval,omitempty"`
	Every    Duration    `json:"every,omitempty" yaml:"every,omitempty"`
	Times    int         `json:"times,omitempty" yaml:"times,omitempty"`
	Delta    int         `json:"delta,omitempty" yaml:"delta,omitempty"`
	Min      *int        `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *int        `json:"max,omitempty" yaml:"max,omitempty"`
	Then     []CueConfig `json:"then,omitempty" yaml:"then,omitempty"`
	Else     []CueConfig `json:"else,omitempty" yaml:"else,omitempty"`
}

// Validate checks a cue and its nested Then/Else cues. Unknown action names are
// allowed here; the action runner rejects them at compile time.
func (c *CueConfig) Validate() error {
	if strings.TrimSpace(c.Action) == "" {
		return errors.New("action is required")
	}
	if c.At < 0 {
		return fmt.Errorf("negative offset %v", c.At)
	}
	if c.Times < 0 {
		return fmt.Errorf("negative repeat count %d", c.Times)
	}
	if c.Times > 0 && c.Every <= 0 {
		return errors.New("repeated cue requires a positive every")
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return fmt.Errorf("min %d exceeds max %d", *c.Min, *c.Max)
	}
	switch c.Action {
	case ActionSetFlag, ActionSetText, ActionClearText, ActionSetCounter, ActionAdd:
		if c.Target == "" {
			return fmt.Errorf("%s requires a target", c.Action)
		}
	case ActionType:
		if c.Target == "" {
			return errors.New("type requires a target")
		}
		if c.Interval <= 0 {
			return errors.New("type requires a positive interval")
		}
	}
	if len(c.Then) > 0 && c.Action != ActionType {
		return fmt.Errorf("then is only valid on %s cues", ActionType)
	}
	if len(c.Else) > 0 && c.When == "" {
		return errors.New("else requires a when guard")
	}
	for i := range c.Then {
		if err := c.Then[i].Validate(); err != nil {
			return fmt.Errorf("then %d: %w", i, err)
		}
	}
	for i := range c.Else {
		if err := c.Else[i].Validate(); err != nil {
			return fmt.Errorf("else %d: %w", i, err)
		}
	}
	return nil
}
