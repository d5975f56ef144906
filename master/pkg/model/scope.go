package model

import (
	"encoding/json"
	"fmt"

	"github.com/computeplane/computeplane/master/pkg/check"
)

// ScopeKind is the kind of visibility domain a scope assignment applies to.
type ScopeKind string

const (
	// SiteScope applies to every user and project on the site.
	SiteScope ScopeKind = "SITE"
	// GroupScope applies to projects that belong to a named group.
	GroupScope ScopeKind = "GROUP"
	// ProjectScope applies to one named project.
	ProjectScope ScopeKind = "PROJECT"
)

// Scope is a single scope assignment on a configuration.
type Scope struct {
	Kind    ScopeKind `json:"kind"`
	Key     string    `json:"key,omitempty"`
	Enabled bool      `json:"enabled"`
	Default bool      `json:"default,omitempty"`
}

// SiteScopeAssignment is a site-wide assignment.
func SiteScopeAssignment(enabled bool) Scope {
	return Scope{Kind: SiteScope, Enabled: enabled}
}

// GroupScopeAssignment is an assignment to the named group.
func GroupScopeAssignment(group string, enabled bool) Scope {
	return Scope{Kind: GroupScope, Key: group, Enabled: enabled}
}

// ProjectScopeAssignment is an assignment to the named project.
func ProjectScopeAssignment(project string, enabled bool) Scope {
	return Scope{Kind: ProjectScope, Key: project, Enabled: enabled}
}

// AsDefault returns a copy of the assignment marked as the default for its scope.
func (s Scope) AsDefault() Scope {
	s.Default = true
	return s
}

// ID is the identity a scope assignment is stored under, e.g. "site", "group:imaging" or
// "project:p1".
func (s Scope) ID() string {
	return ScopeID(s.Kind, s.Key)
}

// ScopeID builds the identity of a scope assignment from its kind and key.
func ScopeID(kind ScopeKind, key string) string {
	if kind == SiteScope {
		return "site"
	}
	return fmt.Sprintf("%s:%s", kindPrefix(kind), key)
}

func kindPrefix(kind ScopeKind) string {
	switch kind {
	case GroupScope:
		return "group"
	case ProjectScope:
		return "project"
	default:
		return string(kind)
	}
}

// Validate implements the check.Validatable interface.
func (s Scope) Validate() []error {
	errs := []error{
		check.In(string(s.Kind), []string{string(SiteScope), string(GroupScope), string(ProjectScope)},
			"scope kind"),
	}
	if s.Kind == SiteScope {
		errs = append(errs, check.True(s.Key == "", "site scope must not have a key"))
	} else {
		errs = append(errs, check.NotEmpty(s.Key, "%s scope key", s.Kind))
	}
	return errs
}

// Scopes maps scope identities to assignments.
type Scopes map[string]Scope

// NewScopes keys the given assignments by their identity. Later duplicates replace earlier ones.
func NewScopes(assignments ...Scope) Scopes {
	s := make(Scopes, len(assignments))
	for _, a := range assignments {
		s[a.ID()] = a
	}
	return s
}

// Lookup returns the assignment for the given scope, if any.
func (s Scopes) Lookup(kind ScopeKind, key string) (Scope, bool) {
	a, ok := s[ScopeID(kind, key)]
	return a, ok
}

// UnmarshalJSON accepts either the stored form, keyed by identity, or a plain list of
// assignments.
func (s *Scopes) UnmarshalJSON(data []byte) error {
	var list []Scope
	if err := json.Unmarshal(data, &list); err == nil {
		*s = NewScopes(list...)
		return nil
	}
	var m map[string]Scope
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = m
	return nil
}

// Validate implements the check.Validatable interface.
func (s Scopes) Validate() []error {
	var errs []error
	for id, a := range s {
		errs = append(errs, check.True(id == a.ID(),
			"scope assignment stored under %q has identity %q", id, a.ID()))
	}
	return errs
}
