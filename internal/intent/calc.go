package intent

import (
	"fmt"
	"math"
	"strings"

	"github.com/runger/beacon/internal/result"
)

// functionTokens are the names that mark a query as a calculator
// expression even when it contains no operator characters.
var functionTokens = []string{
	"sqrt", "sin", "cos", "tan", "abs", "log", "exp", "floor", "ceil", "round",
}

// Calculator turns arithmetic queries into Calc rows using an opaque
// expression evaluator.
type Calculator struct {
	eval Evaluator
}

// NewCalculator builds a Calculator. A nil evaluator defaults to the
// expr-lang implementation.
func NewCalculator(eval Evaluator) *Calculator {
	if eval == nil {
		eval = ExprEvaluator{}
	}
	return &Calculator{eval: eval}
}

// TryCalculate evaluates the query as arithmetic. It returns nil when the
// query does not look like math or when evaluation fails; evaluator errors
// never propagate.
func (c *Calculator) TryCalculate(query string) *result.Result {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" || !looksLikeMath(normalized) {
		return nil
	}

	value, err := c.eval.Evaluate(normalized)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	formatted := formatValue(value)
	return &result.Result{
		Name:        "= " + formatted,
		Description: fmt.Sprintf("%s = %s", strings.TrimSpace(query), formatted),
		Target:      formatted,
		Kind:        result.KindCalc,
	}
}

// looksLikeMath is a cheap guard that keeps plain-text queries away from
// the expression evaluator.
func looksLikeMath(normalized string) bool {
	if strings.ContainsAny(normalized, "+-*/^()%") {
		return true
	}
	for _, fn := range functionTokens {
		if strings.Contains(normalized, fn) {
			return true
		}
	}
	return false
}

// formatValue renders the numeric result: integer form when the fractional
// part is exactly zero and the magnitude is small enough for an exact
// int64, otherwise six decimals with trailing zeros and a trailing decimal
// point stripped.
func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	s := fmt.Sprintf("%.6f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
