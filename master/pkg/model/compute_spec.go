package model

import (
	"path"

	"github.com/computeplane/computeplane/master/pkg/check"
)

// EnvironmentVariable is a single key/value pair injected into a container.
type EnvironmentVariable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Validate implements the check.Validatable interface.
func (e EnvironmentVariable) Validate() []error {
	return []error{check.NotEmpty(e.Key, "environment variable key")}
}

// EnvironmentVariables is an ordered list of environment variables.
type EnvironmentVariables []EnvironmentVariable

// Map converts the list to a mapping. Later entries win over earlier ones with the same key.
func (e EnvironmentVariables) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, v := range e {
		m[v.Key] = v.Value
	}
	return m
}

// Mount binds a host or workspace path into the container.
type Mount struct {
	Name          string `json:"name,omitempty"`
	HostPath      string `json:"host_path"`
	ContainerPath string `json:"container_path"`
	ReadOnly      bool   `json:"read_only"`
}

// Validate implements the check.Validatable interface.
func (m Mount) Validate() []error {
	return []error{
		check.NotEmpty(m.HostPath, "mount host_path"),
		check.True(path.IsAbs(m.ContainerPath), "mount container_path must be absolute, got %q",
			m.ContainerPath),
	}
}

// ComputeSpec is the image, command, environment and mounts portion of a job definition.
type ComputeSpec struct {
	Name                 string               `json:"name"`
	Image                string               `json:"image"`
	Command              string               `json:"command,omitempty"`
	EnvironmentVariables EnvironmentVariables `json:"environment_variables,omitempty"`
	Mounts               []Mount              `json:"mounts,omitempty"`
}

// Validate implements the check.Validatable interface.
func (c ComputeSpec) Validate() []error {
	return []error{
		check.NotEmpty(c.Name, "compute spec name"),
		check.NotEmpty(c.Image, "compute spec image"),
	}
}

// UsageType is a kind of workload a compute spec config is offered for.
type UsageType string

const (
	// JupyterHubUsage marks specs offered for interactive notebook servers.
	JupyterHubUsage UsageType = "JUPYTERHUB"
	// ContainerServiceUsage marks specs offered for batch container jobs.
	ContainerServiceUsage UsageType = "CONTAINER_SERVICE"
	// GeneralUsage marks specs offered for any workload.
	GeneralUsage UsageType = "GENERAL"
)

// HardwareOptions controls which hardware configs may be paired with a compute spec config.
type HardwareOptions struct {
	AllowAllHardware  bool  `json:"allow_all_hardware"`
	HardwareConfigIDs []int `json:"hardware_config_ids,omitempty"`
}

// Allows reports whether the hardware config id passes the allow-list. It does not consider
// scope availability of the hardware config itself.
func (o HardwareOptions) Allows(hardwareConfigID int) bool {
	if o.AllowAllHardware {
		return true
	}
	for _, id := range o.HardwareConfigIDs {
		if id == hardwareConfigID {
			return true
		}
	}
	return false
}

// ComputeSpecConfig wraps a ComputeSpec with identity, scopes and hardware options.
type ComputeSpecConfig struct {
	ID              int             `json:"id"`
	Type            ConfigType      `json:"type"`
	UsageTypes      []UsageType     `json:"usage_types,omitempty"`
	ComputeSpec     ComputeSpec     `json:"compute_spec"`
	Scopes          Scopes          `json:"scopes"`
	HardwareOptions HardwareOptions `json:"hardware_options"`
}

// ConfigID implements ComputeConfig.
func (c *ComputeSpecConfig) ConfigID() int { return c.ID }

// SetConfigID implements ComputeConfig.
func (c *ComputeSpecConfig) SetConfigID(id int) { c.ID = id }

// Kind implements ComputeConfig.
func (c *ComputeSpecConfig) Kind() ConfigKind { return ComputeSpecKind }

// ScopeAssignments implements ComputeConfig.
func (c *ComputeSpecConfig) ScopeAssignments() Scopes { return c.Scopes }

// SupportsUsage reports whether the config is offered for the usage type. A config without
// usage types is offered for everything, as is one tagged GENERAL.
func (c *ComputeSpecConfig) SupportsUsage(u UsageType) bool {
	if len(c.UsageTypes) == 0 {
		return true
	}
	for _, t := range c.UsageTypes {
		if t == u || t == GeneralUsage {
			return true
		}
	}
	return false
}

// Validate implements the check.Validatable interface.
func (c ComputeSpecConfig) Validate() []error {
	errs := []error{c.Type.validate()}
	for _, u := range c.UsageTypes {
		errs = append(errs, check.In(string(u), []string{
			string(JupyterHubUsage), string(ContainerServiceUsage), string(GeneralUsage),
		}, "usage type"))
	}
	return errs
}
