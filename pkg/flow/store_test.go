package flow

import (
	"testing"
	"time"

	"github.com/mhadri/routeflow/pkg/types"
)

func TestStoreSaveLoadList(t *testing.T) {
	s := NewStore(t.TempDir())

	run := &types.RouteRun{
		ID:        "run-1",
		Route:     "fetch",
		State:     types.RunStateCompleted,
		StartedAt: time.Now(),
		Result:    types.RunResult{Message: "ok", StatusCode: 200},
	}
	if err := s.Save(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Route != "fetch" || loaded.Result.Message != "ok" {
		t.Fatalf("roundtrip mismatch: %+v", loaded)
	}

	ids, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "run-1" {
		t.Fatalf("ids: %v", ids)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Load("ghost"); err == nil {
		t.Fatalf("expected error for missing run")
	}
}

func TestStoreLoadRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	for _, id := range []string{"../secret", "..", "a/b", `a\b`, "", "."} {
		if _, err := s.Load(id); err == nil {
			t.Fatalf("id %q should be rejected", id)
		}
	}
}

func TestStoreListEmptyDir(t *testing.T) {
	s := NewStore("/nonexistent/routeflow-runs")
	ids, err := s.List()
	if err != nil {
		t.Fatalf("list on missing dir should not error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids: %v", ids)
	}
}
