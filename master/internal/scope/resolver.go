// Package scope decides whether a stored compute configuration is usable by a user and project.
package scope

import (
	"context"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/internal/authz"
	"github.com/computeplane/computeplane/master/pkg/logger"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// Resolver evaluates scope assignments. Group membership is delegated to the oracle; a nil oracle
// means no group assignment ever applies.
type Resolver struct {
	oracle authz.Oracle
	syslog *log.Entry
}

// NewResolver returns a resolver backed by the given oracle.
func NewResolver(oracle authz.Oracle) *Resolver {
	return &Resolver{
		oracle: oracle,
		syslog: log.WithFields(logger.Context{"component": "scope-resolver"}.Fields()),
	}
}

// IsAvailable reports whether the configuration has an enabled assignment that applies to the
// project: the site assignment, the project's own assignment, or an assignment to a group the
// project belongs to. A configuration without any applicable enabled assignment is unavailable.
func (r *Resolver) IsAvailable(
	ctx context.Context, cfg model.ComputeConfig, user model.User, project string,
) bool {
	return len(r.applicable(ctx, cfg, user, project, true)) > 0
}

// IsDefault reports whether the configuration is marked default by an applicable enabled
// assignment.
func (r *Resolver) IsDefault(
	ctx context.Context, cfg model.ComputeConfig, user model.User, project string,
) bool {
	for _, a := range r.applicable(ctx, cfg, user, project, false) {
		if a.Default {
			return true
		}
	}
	return false
}

// applicable returns the enabled assignments that apply to the project, most specific first.
// With firstOnly set it stops at the first match.
func (r *Resolver) applicable(
	ctx context.Context, cfg model.ComputeConfig, user model.User, project string, firstOnly bool,
) []model.Scope {
	if cfg == nil {
		return nil
	}
	scopes := cfg.ScopeAssignments()
	var out []model.Scope

	if project != "" {
		if a, ok := scopes.Lookup(model.ProjectScope, project); ok && a.Enabled {
			out = append(out, a)
			if firstOnly {
				return out
			}
		}
	}

	for _, a := range sortedGroups(scopes) {
		if !r.inGroup(ctx, cfg, user, project, a.Key) {
			continue
		}
		out = append(out, a)
		if firstOnly {
			return out
		}
	}

	if a, ok := scopes.Lookup(model.SiteScope, ""); ok && a.Enabled {
		out = append(out, a)
	}
	return out
}

func (r *Resolver) inGroup(
	ctx context.Context, cfg model.ComputeConfig, user model.User, project, group string,
) bool {
	if r.oracle == nil || project == "" {
		return false
	}
	ok, err := r.oracle.ProjectInGroup(ctx, user, project, group)
	if err != nil {
		r.syslog.WithError(err).WithFields(log.Fields{
			"kind":    cfg.Kind(),
			"id":      cfg.ConfigID(),
			"project": project,
			"group":   group,
		}).Warn("group membership lookup failed, skipping group assignment")
		return false
	}
	return ok
}

// sortedGroups returns the enabled group assignments ordered by group name.
func sortedGroups(scopes model.Scopes) []model.Scope {
	var groups []model.Scope
	for _, a := range scopes {
		if a.Kind == model.GroupScope && a.Enabled {
			groups = append(groups, a)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
