package core

import (
	"strings"

	"github.com/comalice/narrativex"
)

// InputGuard is the default GuardEvaluator. An expression is an input name, true
// when that input is the bool true, optionally negated with a leading "!".
type InputGuard struct{}

// Eval implements GuardEvaluator.
func (InputGuard) Eval(in *narrativex.Inputs, expr string) bool {
	expr = strings.TrimSpace(expr)
	if name, ok := strings.CutPrefix(expr, "!"); ok {
		return !in.Bool(strings.TrimSpace(name))
	}
	return in.Bool(expr)
}
