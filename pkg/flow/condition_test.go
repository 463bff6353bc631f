package flow

import "testing"

func TestOutputKeyEvaluator(t *testing.T) {
	outputs := map[string]interface{}{"fetch": "ok"}
	eval := OutputKeyEvaluator{}

	if !eval.Evaluate("", outputs) {
		t.Fatalf("empty clause must hold")
	}
	if !eval.Evaluate("fetch", outputs) {
		t.Fatalf("present key must hold")
	}
	if eval.Evaluate("missing", outputs) {
		t.Fatalf("absent key must not hold")
	}
	if eval.Evaluate("!fetch", outputs) {
		t.Fatalf("negated present key must not hold")
	}
	if !eval.Evaluate("! missing", outputs) {
		t.Fatalf("negated absent key must hold")
	}
}
