package model

import (
	"github.com/computeplane/computeplane/master/pkg/check"
)

// ConstraintOperator is how a constraint compares a node attribute to its values.
type ConstraintOperator string

const (
	// ConstraintIn requires the attribute to equal a value.
	ConstraintIn ConstraintOperator = "IN"
	// ConstraintNotIn requires the attribute to differ from a value.
	ConstraintNotIn ConstraintOperator = "NOT_IN"
)

// Constraint is a placement rule restricting which nodes a task may run on. Values is a set:
// order carries no meaning and duplicates are ignored.
type Constraint struct {
	Key      string             `json:"key"`
	Values   []string           `json:"values"`
	Operator ConstraintOperator `json:"operator"`
}

// NewConstraint builds a constraint, dropping duplicate values.
func NewConstraint(key string, op ConstraintOperator, values ...string) Constraint {
	return Constraint{Key: key, Operator: op, Values: DistinctValues(values)}
}

// DistinctValues returns the values with duplicates removed, keeping first occurrences in order.
func DistinctValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Validate implements the check.Validatable interface.
func (c Constraint) Validate() []error {
	return []error{
		check.NotEmpty(c.Key, "constraint key"),
		check.In(string(c.Operator), []string{string(ConstraintIn), string(ConstraintNotIn)},
			"constraint %q operator", c.Key),
		check.True(len(c.Values) > 0, "constraint %q must have at least one value", c.Key),
	}
}

// ConstraintConfig wraps a Constraint with identity and scopes.
type ConstraintConfig struct {
	ID         int        `json:"id"`
	Type       ConfigType `json:"type"`
	Constraint Constraint `json:"constraint"`
	Scopes     Scopes     `json:"scopes"`
}

// ConfigID implements ComputeConfig.
func (c *ConstraintConfig) ConfigID() int { return c.ID }

// SetConfigID implements ComputeConfig.
func (c *ConstraintConfig) SetConfigID(id int) { c.ID = id }

// Kind implements ComputeConfig.
func (c *ConstraintConfig) Kind() ConfigKind { return ConstraintKind }

// ScopeAssignments implements ComputeConfig.
func (c *ConstraintConfig) ScopeAssignments() Scopes { return c.Scopes }

// Validate implements the check.Validatable interface.
func (c ConstraintConfig) Validate() []error {
	return []error{c.Type.validate()}
}
