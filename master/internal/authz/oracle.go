package authz

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/internal/config"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// Oracle answers whether a group scope assignment applies to a project. Role and permission
// checks happen before a request reaches the resolver; the oracle only knows group membership.
type Oracle interface {
	ProjectInGroup(ctx context.Context, user model.User, project, group string) (bool, error)
}

// MembershipSource lists the groups a project belongs to.
type MembershipSource interface {
	ProjectGroups(ctx context.Context, project string) ([]string, error)
}

// Factory builds an oracle from config. source is nil unless a database is configured.
type Factory func(cfg config.AuthZConfig, source MembershipSource) (Oracle, error)

// OracleProvider holds the registered oracle implementations.
var OracleProvider AuthZProviderType[Factory]

//nolint:gochecknoinits
func init() {
	OracleProvider.Register(config.StaticAuthZType,
		func(cfg config.AuthZConfig, _ MembershipSource) (Oracle, error) {
			return NewOracle(NewStaticMembership(cfg.Groups)), nil
		})
	OracleProvider.Register(config.PostgresAuthZType,
		func(_ config.AuthZConfig, source MembershipSource) (Oracle, error) {
			if source == nil {
				return nil, errors.New("postgres authz requires a database connection")
			}
			return NewOracle(source), nil
		})
}

// Build returns the oracle selected by the config.
func Build(cfg config.AuthZConfig, source MembershipSource) (Oracle, error) {
	factory, err := OracleProvider.Get(cfg)
	if err != nil {
		return nil, err
	}
	return factory(cfg, source)
}

// NewOracle answers membership questions from a MembershipSource.
func NewOracle(source MembershipSource) Oracle {
	return membershipOracle{source: source}
}

type membershipOracle struct {
	source MembershipSource
}

func (o membershipOracle) ProjectInGroup(
	ctx context.Context, _ model.User, project, group string,
) (bool, error) {
	if project == "" {
		return false, nil
	}
	groups, err := o.source.ProjectGroups(ctx, project)
	if err != nil {
		return false, errors.Wrapf(err, "listing groups of project %q", project)
	}
	for _, g := range groups {
		if g == group {
			return true, nil
		}
	}
	return false, nil
}

// StaticMembership is a fixed project to groups index.
type StaticMembership map[string][]string

// NewStaticMembership inverts a group to projects mapping.
func NewStaticMembership(groups map[string][]string) StaticMembership {
	m := StaticMembership{}
	for group, projects := range groups {
		for _, p := range projects {
			m[p] = append(m[p], group)
		}
	}
	for p := range m {
		sort.Strings(m[p])
	}
	return m
}

// ProjectGroups implements MembershipSource.
func (m StaticMembership) ProjectGroups(_ context.Context, project string) ([]string, error) {
	return m[project], nil
}
