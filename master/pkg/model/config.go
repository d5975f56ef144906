package model

import (
	"github.com/computeplane/computeplane/master/pkg/check"
)

// ConfigKind names one of the three kinds of compute configuration.
type ConfigKind string

const (
	// ComputeSpecKind is the kind of ComputeSpecConfig.
	ComputeSpecKind ConfigKind = "compute_spec"
	// HardwareKind is the kind of HardwareConfig.
	HardwareKind ConfigKind = "hardware"
	// ConstraintKind is the kind of ConstraintConfig.
	ConstraintKind ConfigKind = "constraint"
)

// ConfigType distinguishes site-defined from project-defined configurations. It is informational:
// availability is decided by scope assignments alone.
type ConfigType string

const (
	// SiteConfig is defined by a site administrator.
	SiteConfig ConfigType = "SITE"
	// ProjectConfig is defined by a project owner.
	ProjectConfig ConfigType = "PROJECT"
)

func (t ConfigType) validate() error {
	if t == "" {
		return nil
	}
	return check.In(string(t), []string{string(SiteConfig), string(ProjectConfig)}, "config type")
}

// ComputeConfig is the capability shared by every stored configuration kind.
type ComputeConfig interface {
	ConfigID() int
	SetConfigID(id int)
	Kind() ConfigKind
	ScopeAssignments() Scopes
}
