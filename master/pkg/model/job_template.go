package model

// JobTemplate is the resolved combination of one compute spec, one hardware profile and the
// constraints available to the requesting project. It is built fresh for each request and is
// never stored.
type JobTemplate struct {
	ComputeSpec ComputeSpec  `json:"compute_spec"`
	Hardware    Hardware     `json:"hardware"`
	Constraints []Constraint `json:"constraints"`
}
