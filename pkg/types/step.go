package types

// Step is an individual step implementation loaded from the steps directory.
type Step struct {
	ID       string       `yaml:"id" json:"id"`
	Name     string       `yaml:"name" json:"name"`
	Type     string       `yaml:"type" json:"type"`
	Desc     string       `yaml:"desc" json:"desc"`
	Branches []string     `yaml:"branches,omitempty" json:"branches,omitempty"`
	Run      string       `yaml:"run,omitempty" json:"run,omitempty"`
	When     string       `yaml:"when,omitempty" json:"when,omitempty"`
	Timeout  string       `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	SaveAs   string       `yaml:"saveAs,omitempty" json:"saveAs,omitempty"`
	Requires StepRequires `yaml:"requires,omitempty" json:"requires,omitempty"`

	File      string `yaml:"-" json:"file"`
	Available bool   `yaml:"-" json:"available"`
	Reason    string `yaml:"-" json:"reason,omitempty"`
}

// StepRequires lists host prerequisites for a step.
type StepRequires struct {
	Bins []string `yaml:"bins,omitempty" json:"bins,omitempty"`
}

// Step types recognised by the runner. Anything else executes as generic.
const (
	StepTypeBusiness = "business"
	StepTypeDB       = "db"
	StepTypeVendor   = "vendor"
	StepTypeGeneric  = "generic"
)
