package step

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStep(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeStep(t, dir, "fetch_data.yaml", "name: Fetch data\ndesc: pulls rows\n")

	st, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.ID != "fetch_data" {
		t.Fatalf("id should default to file stem, got %q", st.ID)
	}
	if st.Type != "generic" {
		t.Fatalf("type should default to generic, got %q", st.Type)
	}
	if st.File != path {
		t.Fatalf("file: %q", st.File)
	}
}

func TestRegistryLoadAndAvailability(t *testing.T) {
	dir := t.TempDir()
	writeStep(t, dir, "ok.yaml", "id: ok\ntype: business\n")
	writeStep(t, dir, "gated.yaml", "id: gated\ntype: vendor\nrequires:\n  bins: [definitely-not-a-real-binary-xyz]\n")

	r := NewRegistry(dir)
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	ok, found := r.Get("ok")
	if !found || !ok.Available {
		t.Fatalf("step ok should be available: %+v", ok)
	}

	gated, found := r.Get("gated")
	if !found {
		t.Fatalf("step gated not loaded")
	}
	if gated.Available {
		t.Fatalf("step with missing binary should be unavailable")
	}
	if !strings.Contains(gated.Reason, "missing bins") {
		t.Fatalf("reason: %q", gated.Reason)
	}
}

func TestRegistryLoadToleratesBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeStep(t, dir, "good.yaml", "id: good\ntype: business\n")
	writeStep(t, dir, "bad.yaml", "id: bad\n\t{this is not yaml\n")

	r := NewRegistry(dir)
	if err := r.Load(); err != nil {
		t.Fatalf("one broken file must not abort the scan: %v", err)
	}

	if _, found := r.Get("good"); !found {
		t.Fatalf("good step lost behind broken sibling")
	}
	broken, found := r.Get("bad")
	if !found {
		t.Fatalf("broken step should keep a placeholder entry")
	}
	if broken.Available || !strings.Contains(broken.Reason, "parse error") {
		t.Fatalf("placeholder: %+v", broken)
	}
	findings := r.Findings()
	if len(findings) != 1 || !strings.Contains(findings[0], "bad.yaml") {
		t.Fatalf("findings: %v", findings)
	}
}

func TestRegistryGetByFile(t *testing.T) {
	dir := t.TempDir()
	path := writeStep(t, dir, "a.yaml", "id: a\n")
	r := NewRegistry(dir)
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := r.GetByFile(path); !ok {
		t.Fatalf("expected cache hit for %s", path)
	}
}

func TestRegistryCreate(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(dir)
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	st, err := r.Create("new_step", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.ID != "new_step" {
		t.Fatalf("id: %q", st.ID)
	}
	if _, err := os.Stat(filepath.Join(dir, "new_step.yaml")); err != nil {
		t.Fatalf("scaffold missing: %v", err)
	}
	if _, err := r.Create("new_step", ""); err == nil {
		t.Fatalf("duplicate create should fail")
	}
}

func TestRegistryReloadRemoval(t *testing.T) {
	dir := t.TempDir()
	path := writeStep(t, dir, "a.yaml", "id: a\n")
	r := NewRegistry(dir)
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.Reload(path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := r.Get("a"); ok {
		t.Fatalf("removed step should be dropped")
	}
}
