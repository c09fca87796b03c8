package deckgen

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
)

// resolveEval handles an eval directive: its joined text is compiled as an
// expression over every visible variable and executed. With a var attribute
// the result is stored like a set; without one the directive is substituted
// by the result like a get.
//
// Variables whose content parses as a number enter the environment as
// float64 so arithmetic works without casts; everything else stays a string.
func (p *Preprocessor) resolveEval(e *Entry) error {
	src := e.Text()

	env := make(map[string]interface{})
	for name, val := range p.scopes.Bindings() {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			env[name] = f
		} else {
			env[name] = val
		}
	}

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return WithContext(fmt.Sprintf("eval at %s:%d", p.file, e.Line), NewEvaluationError(src, err))
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return WithContext(fmt.Sprintf("eval at %s:%d", p.file, e.Line), NewEvaluationError(src, err))
	}
	GetLogger().DebugExpression(src, out)
	result := formatEvalResult(out)

	names := e.ChildTexts("var")
	switch {
	case len(names) > 1:
		return NewVariableError(e.Tag, "",
			fmt.Sprintf("var name given %d times, want at most one", len(names)), p.file, e.Line)
	case len(names) == 1:
		if names[0] == "" {
			return NewVariableError(e.Tag, "", "var name cannot be empty", p.file, e.Line)
		}
		p.scopes.Set(names[0], result)
		e.Delete()
	default:
		e.ToValue(result)
	}
	return nil
}

// formatEvalResult renders an expression result as definition text. Whole
// floats print without a decimal part, so counters computed as float64 read
// naturally.
func formatEvalResult(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
