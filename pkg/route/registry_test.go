package route

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProject(t *testing.T) (root string) {
	t.Helper()
	root = t.TempDir()
	for _, dir := range []string{"routes", "steps"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	step := "id: fetch_data\nname: Fetch\ntype: db\n"
	if err := os.WriteFile(filepath.Join(root, "steps", "fetch_data.yaml"), []byte(step), 0o644); err != nil {
		t.Fatalf("write step: %v", err)
	}
	rt := "path: /api/fetch\nmethod: GET\nsteps:\n  - !include steps/fetch_data.yaml\n"
	if err := os.WriteFile(filepath.Join(root, "routes", "fetch.yaml"), []byte(rt), 0o644); err != nil {
		t.Fatalf("write route: %v", err)
	}
	return root
}

func TestRegistryLoadAndGet(t *testing.T) {
	root := writeProject(t)
	r := NewRegistry(filepath.Join(root, "routes"))
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	rt, ok := r.Get("fetch")
	if !ok {
		t.Fatalf("route fetch not loaded")
	}
	if len(rt.Steps) != 1 {
		t.Fatalf("steps: %d", len(rt.Steps))
	}
	if got := r.ResolveTarget(rt.Steps[0]); got != filepath.Join(root, "steps", "fetch_data.yaml") {
		t.Fatalf("resolved target: %s", got)
	}
	if findings := r.Findings("fetch"); len(findings) != 0 {
		t.Fatalf("unexpected findings: %v", findings)
	}
}

func TestRegistryLintMissingInclude(t *testing.T) {
	root := writeProject(t)
	bad := "path: /api/bad\nmethod: GET\nsteps:\n  - !include steps/missing.yaml\n"
	if err := os.WriteFile(filepath.Join(root, "routes", "bad.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry(filepath.Join(root, "routes"))
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	findings := r.Findings("bad")
	if len(findings) != 1 || !strings.Contains(findings[0].Message, "include target not found") {
		t.Fatalf("expected missing include finding, got %v", findings)
	}
}

func TestRegistryMatch(t *testing.T) {
	root := writeProject(t)
	r := NewRegistry(filepath.Join(root, "routes"))
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := r.Match("GET", "/api/fetch"); !ok {
		t.Fatalf("expected match for GET /api/fetch")
	}
	if _, ok := r.Match("POST", "/api/fetch"); ok {
		t.Fatalf("method mismatch should not match")
	}
	if _, ok := r.Match("GET", "/nope"); ok {
		t.Fatalf("unknown path should not match")
	}
}

func TestRegistryReload(t *testing.T) {
	root := writeProject(t)
	r := NewRegistry(filepath.Join(root, "routes"))
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	path := filepath.Join(root, "routes", "fetch.yaml")
	updated := "path: /api/v2/fetch\nmethod: POST\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	rt, _ := r.Get("fetch")
	if rt.Path != "/api/v2/fetch" {
		t.Fatalf("reload did not pick up change: %q", rt.Path)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Reload(path); err != nil {
		t.Fatalf("reload after remove: %v", err)
	}
	if _, ok := r.Get("fetch"); ok {
		t.Fatalf("removed route should be dropped")
	}
}
