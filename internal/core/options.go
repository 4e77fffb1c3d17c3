package core

import "log"

// Option configures a compiler.
type Option func(*compiler)

// WithActionRunner delegates non built-in cue actions to r.
func WithActionRunner(r ActionRunner) Option {
	return func(c *compiler) {
		c.actions = r
	}
}

// WithGuardEvaluator replaces the default input-name guard syntax.
func WithGuardEvaluator(e GuardEvaluator) Option {
	return func(c *compiler) {
		c.guards = e
	}
}

// WithLogger sets the logger used for action failures at run time.
func WithLogger(l *log.Logger) Option {
	return func(c *compiler) {
		if l != nil {
			c.logger = l
		}
	}
}
