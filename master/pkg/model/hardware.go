package model

import (
	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/pkg/check"
)

// GenericResource is a named, countable resource request such as a GPU.
type GenericResource struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Validate implements the check.Validatable interface.
func (g GenericResource) Validate() []error {
	return []error{
		check.NotEmpty(g.Name, "generic resource name"),
		check.NotEmpty(g.Value, "generic resource %q value", g.Name),
	}
}

// Hardware is the resource limit and placement portion of a job definition.
type Hardware struct {
	Name                 string               `json:"name"`
	CPULimit             *float64             `json:"cpu_limit,omitempty"`
	CPUReservation       *float64             `json:"cpu_reservation,omitempty"`
	MemoryLimit          string               `json:"memory_limit,omitempty"`
	MemoryReservation    string               `json:"memory_reservation,omitempty"`
	Constraints          []Constraint         `json:"constraints,omitempty"`
	EnvironmentVariables EnvironmentVariables `json:"environment_variables,omitempty"`
	GenericResources     []GenericResource    `json:"generic_resources,omitempty"`
}

// Validate implements the check.Validatable interface.
func (h Hardware) Validate() []error {
	errs := []error{check.NotEmpty(h.Name, "hardware name")}
	if h.CPULimit != nil {
		errs = append(errs, check.GreaterThanOrEqualTo(*h.CPULimit, 0, "cpu_limit"))
	}
	if h.CPUReservation != nil {
		errs = append(errs, check.GreaterThanOrEqualTo(*h.CPUReservation, 0, "cpu_reservation"))
		if h.CPULimit != nil {
			errs = append(errs, check.LessThanOrEqualTo(*h.CPUReservation, *h.CPULimit,
				"cpu_reservation must not exceed cpu_limit"))
		}
	}

	limit, err := MemoryBytes(h.MemoryLimit)
	errs = append(errs, errors.Wrap(err, "memory_limit"))
	reservation, err := MemoryBytes(h.MemoryReservation)
	errs = append(errs, errors.Wrap(err, "memory_reservation"))
	if limit > 0 && reservation > 0 {
		errs = append(errs, check.True(reservation <= limit,
			"memory_reservation %s must not exceed memory_limit %s",
			h.MemoryReservation, h.MemoryLimit))
	}
	return errs
}

// MemoryBytes parses a human-readable memory size such as "4Gi" or "512m". An empty string
// means unset and parses to zero.
func MemoryBytes(size string) (int64, error) {
	if size == "" {
		return 0, nil
	}
	b, err := units.RAMInBytes(size)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid memory size %q", size)
	}
	return b, nil
}

// HardwareConfig wraps a Hardware profile with identity and scopes.
type HardwareConfig struct {
	ID       int        `json:"id"`
	Type     ConfigType `json:"type"`
	Hardware Hardware   `json:"hardware"`
	Scopes   Scopes     `json:"scopes"`
}

// ConfigID implements ComputeConfig.
func (c *HardwareConfig) ConfigID() int { return c.ID }

// SetConfigID implements ComputeConfig.
func (c *HardwareConfig) SetConfigID(id int) { c.ID = id }

// Kind implements ComputeConfig.
func (c *HardwareConfig) Kind() ConfigKind { return HardwareKind }

// ScopeAssignments implements ComputeConfig.
func (c *HardwareConfig) ScopeAssignments() Scopes { return c.Scopes }

// Validate implements the check.Validatable interface.
func (c HardwareConfig) Validate() []error {
	return []error{c.Type.validate()}
}
