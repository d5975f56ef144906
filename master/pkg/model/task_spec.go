package model

// TaskSpecification is the orchestrator-facing projection of a JobTemplate.
type TaskSpecification struct {
	ContainerSpec ContainerSpec `json:"container_spec"`
	Resources     Resources     `json:"resources"`
	Placement     Placement     `json:"placement"`
}

// ContainerSpec describes the container to run.
type ContainerSpec struct {
	Image   string            `json:"image"`
	Command string            `json:"command,omitempty"`
	Env     map[string]string `json:"env"`
	Labels  map[string]string `json:"labels"`
	Mounts  []Mount           `json:"mounts"`
}

// Resources is the resource block of a task specification. Values are carried verbatim from the
// hardware profile; orchestrator projections convert units.
type Resources struct {
	CPULimit          *float64          `json:"cpu_limit,omitempty"`
	CPUReservation    *float64          `json:"cpu_reservation,omitempty"`
	MemoryLimit       string            `json:"memory_limit,omitempty"`
	MemoryReservation string            `json:"memory_reservation,omitempty"`
	GenericResources  map[string]string `json:"generic_resources"`
}

// Placement holds flattened constraint expressions such as "node.labels.zone==us-east".
// Groups partitions the same expressions by the constraint they came from, for orchestrators
// that can express alternatives within one constraint.
type Placement struct {
	Constraints []string   `json:"constraints"`
	Groups      [][]string `json:"groups,omitempty"`
}
