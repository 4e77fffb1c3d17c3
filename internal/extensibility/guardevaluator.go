package extensibility

import (
	"strconv"
	"strings"

	"github.com/comalice/narrativex"
	"github.com/comalice/narrativex/internal/core"
)

// ExpressionGuardEvaluator evaluates simple expressions like "attempts > 3" or
// "protection == true" against the live inputs. Anything that is not "key op value"
// falls back to core.InputGuard, so "protection" and "!protection" keep working.
type ExpressionGuardEvaluator struct{}

// NewExpressionGuardEvaluator creates a new ExpressionGuardEvaluator.
func NewExpressionGuardEvaluator() *ExpressionGuardEvaluator {
	return &ExpressionGuardEvaluator{}
}

// Eval parses and evaluates expr against in.
func (e *ExpressionGuardEvaluator) Eval(in *narrativex.Inputs, expr string) bool {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return core.InputGuard{}.Eval(in, expr)
	}
	key, op, valStr := parts[0], parts[1], parts[2]

	v, hasKey := in.Lookup(key)
	if !hasKey {
		return false
	}

	switch op {
	case "==":
		return equals(v, valStr)
	case "!=":
		return !equals(v, valStr)
	case ">", "<", ">=", "<=":
		want, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			return false
		}
		got, ok := toFloat(v)
		if !ok {
			return false
		}
		switch op {
		case ">":
			return got > want
		case "<":
			return got < want
		case ">=":
			return got >= want
		default:
			return got <= want
		}
	default:
		return false
	}
}

func equals(v any, valStr string) bool {
	switch valStr {
	case "true":
		return v == true
	case "false":
		return v == false
	case "nil":
		return v == nil
	}
	if want, err := strconv.ParseFloat(valStr, 64); err == nil {
		if got, ok := toFloat(v); ok {
			return got == want
		}
	}
	if s, ok := v.(string); ok {
		return s == strings.Trim(valStr, `"'`)
	}
	return false
}

// toFloat widens the numeric types YAML and JSON decoding produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
