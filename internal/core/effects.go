package core

import (
	"fmt"
	"math"
	"strconv"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/primitives"
)

// effect resolves the immediate action of a cue. then runs, forked, once a type cue
// has finished typing.
func (c *compiler) effect(cc primitives.CueConfig, then cueFunc) (cueFunc, error) {
	target := cc.Target
	switch cc.Action {
	case primitives.ActionSetFlag:
		value := cc.Value
		return func(q *narrativex.Cue) { q.Board().SetFlag(target, value) }, nil

	case primitives.ActionSetText:
		text := cc.Text
		return func(q *narrativex.Cue) { q.Board().SetText(target, text) }, nil

	case primitives.ActionClearText:
		return func(q *narrativex.Cue) { q.Board().SetText(target, "") }, nil

	case primitives.ActionType:
		text, interval := cc.Text, cc.Interval.Std()
		return func(q *narrativex.Cue) {
			var done func()
			if then != nil {
				done = func() { then(q.Fork()) }
			}
			q.Type(target, text, interval, done)
		}, nil

	case primitives.ActionSetCounter:
		n, err := toInt(cc.Value)
		if err != nil {
			return nil, err
		}
		return func(q *narrativex.Cue) { q.Board().SetCounter(target, n) }, nil

	case primitives.ActionAdd:
		delta := cc.Delta
		lo, hi := math.MinInt, math.MaxInt
		if cc.Min != nil {
			lo = *cc.Min
		}
		if cc.Max != nil {
			hi = *cc.Max
		}
		return func(q *narrativex.Cue) {
			b := q.Board()
			b.SetCounter(target, min(max(b.Counter(target)+delta, lo), hi))
		}, nil

	case primitives.ActionLog:
		lines := cc.Lines
		if len(lines) == 0 && cc.Text != "" {
			lines = []string{cc.Text}
		}
		return func(q *narrativex.Cue) { q.Board().AppendLog(lines...) }, nil

	case primitives.ActionSetLog:
		lines := cc.Lines
		return func(q *narrativex.Cue) { q.Board().SetLog(lines) }, nil

	case primitives.ActionClearLog:
		return func(q *narrativex.Cue) { q.Board().ClearLog() }, nil
	}

	if c.actions == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, cc.Action)
	}
	if s, ok := c.actions.(ActionSupporter); ok && !s.Supports(cc.Action) {
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, cc.Action)
	}
	runner, logger := c.actions, c.logger
	return func(q *narrativex.Cue) {
		if err := runner.Run(q, cc); err != nil {
			logger.Printf("core: action %s in %s failed: %v", cc.Action, q.Stage(), err)
		}
	}, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("counter value %v is not an integer", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("counter value %q: %w", n, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("counter value has type %T", v)
	}
}
