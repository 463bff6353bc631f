package route

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mhadri/routeflow/pkg/types"
)

// Registry indexes the route definitions found in a routes directory.
// Include targets inside route files are written relative to the project
// root, so targets resolve against the parent of the routes directory.
type Registry struct {
	dir  string
	base string

	mu       sync.RWMutex
	routes   map[string]*types.Route
	findings map[string][]Finding
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:      dir,
		base:     filepath.Dir(filepath.Clean(dir)),
		routes:   make(map[string]*types.Route),
		findings: make(map[string][]Finding),
	}
}

// Load scans the routes directory and parses every YAML file in it.
func (r *Registry) Load() error {
	info, err := os.Stat(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("routes path is not a directory: %s", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = make(map[string]*types.Route)
	r.findings = make(map[string][]Finding)

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		if err := r.loadLocked(filepath.Join(r.dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) loadLocked(path string) error {
	rt, findings, err := ParseFile(path)
	if err != nil {
		return err
	}
	findings = append(findings, r.lintIncludes(rt)...)
	r.routes[rt.Name] = rt
	r.findings[rt.Name] = findings
	return nil
}

// lintIncludes flags include targets that do not exist on disk. The runner
// treats those as skipped steps, so surfacing them early is the only way a
// route author hears about a typo.
func (r *Registry) lintIncludes(rt *types.Route) []Finding {
	var out []Finding
	for _, ref := range rt.Steps {
		if _, err := os.Stat(r.ResolveTarget(ref)); err != nil {
			out = append(out, Finding{Line: ref.Line, Message: fmt.Sprintf("include target not found: %s", ref.Target)})
		}
	}
	return out
}

// ResolveTarget returns the on-disk path for a step reference.
func (r *Registry) ResolveTarget(ref types.StepRef) string {
	if filepath.IsAbs(ref.Target) {
		return ref.Target
	}
	return filepath.Join(r.base, ref.Target)
}

func (r *Registry) List() []*types.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Get(name string) (*types.Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[name]
	return rt, ok
}

// Match finds the route mounted at the given method and path.
func (r *Registry) Match(method, path string) (*types.Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rt := range r.routes {
		if rt.Path != path {
			continue
		}
		m := rt.Method
		if m == "" {
			m = "GET"
		}
		if strings.EqualFold(m, method) {
			return rt, true
		}
	}
	return nil, false
}

func (r *Registry) Findings(name string) []Finding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findings[name]
}

// Reload re-parses a single route file, or drops it when it no longer
// exists. Used by the watcher.
func (r *Registry) Reload(path string) error {
	if !isYAML(path) {
		return nil
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		delete(r.routes, name)
		delete(r.findings, name)
		return nil
	}
	return r.loadLocked(path)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
