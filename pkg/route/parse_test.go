package route

import (
	"strings"
	"testing"
)

const sampleRoute = `path: /api/fetch_br
method: post
steps:
  - !include steps/fetch_data.yaml?mode=fast
  - !include file: steps/enrich.yaml # enrichment
    args:
      region: br
  - !include steps/notify.yaml
response:
  message: "Workflow finished"
  statusCode: 201
`

func TestParseRoute(t *testing.T) {
	rt, findings := Parse("fetch_br", sampleRoute)

	if rt.Path != "/api/fetch_br" {
		t.Fatalf("path: %q", rt.Path)
	}
	if rt.Method != "POST" {
		t.Fatalf("method should be upper-cased: %q", rt.Method)
	}
	if rt.Response.Message != "Workflow finished" {
		t.Fatalf("message: %q", rt.Response.Message)
	}
	if rt.Response.StatusCode != 201 {
		t.Fatalf("statusCode: %d", rt.Response.StatusCode)
	}
	if len(findings) != 0 {
		t.Fatalf("unexpected findings: %v", findings)
	}

	if len(rt.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(rt.Steps))
	}
	if rt.Steps[0].Target != "steps/fetch_data.yaml" {
		t.Fatalf("step 1 target: %q", rt.Steps[0].Target)
	}
	if rt.Steps[0].Args["mode"] != "fast" {
		t.Fatalf("step 1 query args: %v", rt.Steps[0].Args)
	}
	if rt.Steps[0].Line != 4 {
		t.Fatalf("step 1 line: %d", rt.Steps[0].Line)
	}
	if rt.Steps[1].Target != "steps/enrich.yaml" {
		t.Fatalf("file: prefix and comment not stripped: %q", rt.Steps[1].Target)
	}
	if rt.Steps[1].Args["region"] != "br" {
		t.Fatalf("args block: %v", rt.Steps[1].Args)
	}
	if rt.Steps[2].Ordinal != 3 {
		t.Fatalf("ordinal: %d", rt.Steps[2].Ordinal)
	}
}

func TestParseBadStatusCode(t *testing.T) {
	rt, findings := Parse("x", "path: /p\nmethod: GET\nresponse:\n  statusCode: abc\n")
	if rt.Response.StatusCode != 0 {
		t.Fatalf("bad statusCode should be ignored, got %d", rt.Response.StatusCode)
	}
	if len(findings) != 1 || !strings.Contains(findings[0].Message, "statusCode") {
		t.Fatalf("expected statusCode finding, got %v", findings)
	}
	if findings[0].Line != 4 {
		t.Fatalf("finding line: %d", findings[0].Line)
	}
}

func TestParseFlagsOutOfRangeStatusCode(t *testing.T) {
	rt, findings := Parse("x", "path: /p\nmethod: GET\nresponse:\n  statusCode: 1202\n")
	if rt.Response.StatusCode != 1202 {
		t.Fatalf("statusCode: %d", rt.Response.StatusCode)
	}
	found := false
	for _, f := range findings {
		if strings.Contains(f.Message, "outside 100-999") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected out-of-range finding, got %v", findings)
	}
}

func TestParseMissingPathAndMethod(t *testing.T) {
	_, findings := Parse("x", "steps:\n  - !include steps/a.yaml\n")
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %v", findings)
	}
}

func TestParseNonYAMLInclude(t *testing.T) {
	_, findings := Parse("x", "path: /p\nmethod: GET\nsteps:\n  - !include steps/a.txt\n")
	found := false
	for _, f := range findings {
		if strings.Contains(f.Message, "not a YAML file") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected non-YAML include finding, got %v", findings)
	}
}

func TestParseToleratesUnicodeSpaces(t *testing.T) {
	rt, _ := Parse("x", "path: /api/x\nmethod: GET\n")
	if rt.Path != "/api/x" {
		t.Fatalf("unicode space not normalized: %q", rt.Path)
	}
}
