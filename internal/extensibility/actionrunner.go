package extensibility

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/core"
	"github.com/comalice/narrativex/internal/primitives"
)

// ActionFunc implements a named cue action.
type ActionFunc func(c *narrativex.Cue, cue primitives.CueConfig) error

// DefaultActionRunner dispatches cue actions by name to registered functions.
type DefaultActionRunner struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewDefaultActionRunner creates an empty runner.
func NewDefaultActionRunner() *DefaultActionRunner {
	return &DefaultActionRunner{actions: make(map[string]ActionFunc)}
}

// Register binds name to fn, replacing any earlier binding.
func (r *DefaultActionRunner) Register(name string, fn ActionFunc) *DefaultActionRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.actions == nil {
		r.actions = make(map[string]ActionFunc)
	}
	r.actions[name] = fn
	return r
}

// Supports reports whether name is registered.
func (r *DefaultActionRunner) Supports(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Actions returns the registered names, sorted.
func (r *DefaultActionRunner) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the action named by cue.
func (r *DefaultActionRunner) Run(c *narrativex.Cue, cue primitives.CueConfig) error {
	r.mu.RLock()
	fn, ok := r.actions[cue.Action]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("action '%s' not registered", cue.Action)
	}
	return fn(c, cue)
}

// LoggingActionRunner wraps an ActionRunner and adds logging around execution.
type LoggingActionRunner struct {
	inner  core.ActionRunner
	logger *log.Logger
}

// NewLoggingActionRunner creates a new LoggingActionRunner wrapping the given inner runner.
// A nil logger uses the standard logger.
func NewLoggingActionRunner(inner core.ActionRunner, logger *log.Logger) *LoggingActionRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingActionRunner{inner: inner, logger: logger}
}

// Supports delegates to the inner runner when it can answer.
func (r *LoggingActionRunner) Supports(name string) bool {
	if s, ok := r.inner.(core.ActionSupporter); ok {
		return s.Supports(name)
	}
	return true
}

// Run logs before and after delegating to the inner runner.
func (r *LoggingActionRunner) Run(c *narrativex.Cue, cue primitives.CueConfig) error {
	r.logger.Printf("LOG: Executing action %s in stage %q", cue.Action, c.Stage())
	start := time.Now()
	err := r.inner.Run(c, cue)
	r.logger.Printf("LOG: Action %s completed in %v: %v", cue.Action, time.Since(start), err)
	return err
}
