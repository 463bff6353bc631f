package flow

import "strings"

// ConditionEvaluator decides whether a step's when: clause holds against the
// outputs accumulated so far.
type ConditionEvaluator interface {
	Evaluate(expression string, outputs map[string]interface{}) bool
}

// AlwaysEvaluator runs every step regardless of its clause.
type AlwaysEvaluator struct{}

func (AlwaysEvaluator) Evaluate(expression string, outputs map[string]interface{}) bool {
	return true
}

// OutputKeyEvaluator treats the clause as an output key: the step runs when
// the key is present. A leading ! negates. An empty clause always holds.
type OutputKeyEvaluator struct{}

func (OutputKeyEvaluator) Evaluate(expression string, outputs map[string]interface{}) bool {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return true
	}
	negate := false
	if strings.HasPrefix(expr, "!") {
		negate = true
		expr = strings.TrimSpace(expr[1:])
	}
	_, ok := outputs[expr]
	if negate {
		return !ok
	}
	return ok
}
