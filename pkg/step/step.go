package step

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhadri/routeflow/pkg/types"
	"github.com/mhadri/routeflow/pkg/yamlutil"
	"gopkg.in/yaml.v3"
)

// LoadFile parses a step definition. Step files are strict YAML, unlike
// routes; content is space-normalized first so editor artifacts do not break
// indentation.
func LoadFile(path string) (*types.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read step %s: %w", path, err)
	}

	var st types.Step
	if err := yaml.Unmarshal([]byte(yamlutil.NormalizeSpaces(string(data))), &st); err != nil {
		return nil, fmt.Errorf("parse step %s: %w", path, err)
	}

	if st.ID == "" {
		st.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if st.Type == "" {
		st.Type = types.StepTypeGeneric
	}
	st.File = path
	return &st, nil
}

func defaultStepYAML(name string) string {
	return fmt.Sprintf("id: %s\nname: %s\ntype: generic\ndesc: Describe the step here\n", name, name)
}
