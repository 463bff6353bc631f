package step

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mhadri/routeflow/pkg/types"
)

// Registry indexes the step implementations found in a steps directory.
type Registry struct {
	dir string

	mu       sync.RWMutex
	byID     map[string]*types.Step
	byFile   map[string]*types.Step
	findings []string
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:    dir,
		byID:   make(map[string]*types.Step),
		byFile: make(map[string]*types.Step),
	}
}

// Load scans the steps directory and parses every YAML file in it.
func (r *Registry) Load() error {
	info, err := os.Stat(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("steps path is not a directory: %s", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]*types.Step)
	r.byFile = make(map[string]*types.Step)
	r.findings = nil

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		if err := r.loadLocked(path); err != nil {
			// One broken file must not hide the rest of the directory.
			// Keep an unavailable placeholder so list/get still show it.
			r.recordBrokenLocked(path, err)
			r.findings = append(r.findings, fmt.Sprintf("%s: %v", path, err))
		}
	}
	return nil
}

// Findings returns the per-file parse failures from the last Load.
func (r *Registry) Findings() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findings
}

func (r *Registry) recordBrokenLocked(path string, err error) {
	st := &types.Step{
		ID:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		File:      path,
		Available: false,
		Reason:    "parse error: " + err.Error(),
	}
	r.byID[st.ID] = st
	r.byFile[filepath.Clean(path)] = st
}

func (r *Registry) loadLocked(path string) error {
	st, err := LoadFile(path)
	if err != nil {
		return err
	}
	applyAvailability(st)
	r.byID[st.ID] = st
	r.byFile[filepath.Clean(path)] = st
	return nil
}

// applyAvailability gates a step on its declared host prerequisites: every
// binary in requires.bins must be on PATH.
func applyAvailability(st *types.Step) {
	var missing []string
	for _, bin := range st.Requires.Bins {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		st.Available = false
		st.Reason = "missing bins: " + strings.Join(missing, ", ")
		return
	}
	st.Available = true
	st.Reason = ""
}

func (r *Registry) List() []*types.Step {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.Step, 0, len(r.byID))
	for _, st := range r.byID {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Get(id string) (*types.Step, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.byID[id]
	return st, ok
}

// GetByFile returns the cached step loaded from the given path, if any. The
// runner uses this as a hot cache before falling back to LoadFile for
// include targets outside the steps directory.
func (r *Registry) GetByFile(path string) (*types.Step, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.byFile[filepath.Clean(path)]
	return st, ok
}

// Create scaffolds a new step file in the steps directory.
func (r *Registry) Create(name, content string) (*types.Step, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(r.dir, name+".yaml")
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("step already exists: %s", name)
	}

	if content == "" {
		content = defaultStepYAML(name)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.loadLocked(path); err != nil {
		return nil, err
	}
	return r.byFile[filepath.Clean(path)], nil
}

// Reload re-parses a single step file, or drops it when it no longer exists.
func (r *Registry) Reload(path string) error {
	if !isYAML(path) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	clean := filepath.Clean(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if st, ok := r.byFile[clean]; ok {
			delete(r.byID, st.ID)
			delete(r.byFile, clean)
		}
		return nil
	}
	if err := r.loadLocked(path); err != nil {
		r.recordBrokenLocked(path, err)
		return err
	}
	return nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
