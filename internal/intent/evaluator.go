package intent

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// Evaluator evaluates an arithmetic expression to a floating-point value.
// Implementations must treat any parse or evaluation problem as an error;
// the calculator classifier degrades errors to a silent no-match.
type Evaluator interface {
	Evaluate(expression string) (float64, error)
}

// calcEnv exposes the named functions and constants available inside
// calculator expressions.
var calcEnv = map[string]any{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"abs":   math.Abs,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
	"pi":    math.Pi,
	"e":     math.E,
}

// ExprEvaluator implements Evaluator on expr-lang. The language covers the
// required operator set (+ - * / ^ % parentheses) with standard precedence.
type ExprEvaluator struct{}

// Evaluate compiles and runs the expression against the calculator
// environment, coercing the output to float64.
func (ExprEvaluator) Evaluate(expression string) (float64, error) {
	out, err := expr.Eval(expression, calcEnv)
	if err != nil {
		return 0, err
	}

	switch v := out.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expression result is %T, not a number", out)
	}
}
