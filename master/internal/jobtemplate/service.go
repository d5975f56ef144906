// Package jobtemplate resolves a compute spec config and hardware config into a job template for a
// user and project.
package jobtemplate

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/configstore"
	"github.com/computeplane/computeplane/master/internal/prom"
	"github.com/computeplane/computeplane/master/internal/scope"
	"github.com/computeplane/computeplane/master/pkg/logger"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// Service resolves job templates. It holds no locks across store reads: a config deleted while a
// request is in flight surfaces as a not-found error.
type Service struct {
	specs       configstore.Reader[*model.ComputeSpecConfig]
	hardware    configstore.Reader[*model.HardwareConfig]
	constraints configstore.Reader[*model.ConstraintConfig]
	resolver    *scope.Resolver
	logCtx      logger.Context
}

// NewService returns a service over the given stores.
func NewService(
	specs configstore.Reader[*model.ComputeSpecConfig],
	hardware configstore.Reader[*model.HardwareConfig],
	constraints configstore.Reader[*model.ConstraintConfig],
	resolver *scope.Resolver,
) *Service {
	return &Service{
		specs:       specs,
		hardware:    hardware,
		constraints: constraints,
		resolver:    resolver,
		logCtx:      logger.Context{"component": "jobtemplate"},
	}
}

// FromCatalog returns a service over the stores of a catalog.
func FromCatalog(c *configstore.Catalog, resolver *scope.Resolver) *Service {
	return NewService(c.ComputeSpecs, c.Hardware, c.Constraints, resolver)
}

// IsAvailable reports whether the user may run the compute spec config on the hardware config
// from the project. Unknown ids and configs outside the project's scopes yield false. An error is
// returned only for unset arguments or store failures.
func (s *Service) IsAvailable(
	ctx context.Context, user *model.User, project string, computeSpecConfigID, hardwareConfigID int,
) (available bool, err error) {
	defer prom.Time(resolveHistogram.WithLabelValues("is_available"))()
	defer prom.ErrCount(resolveErrors.WithLabelValues("is_available"), &err)

	if err := validateArgs(user, project, computeSpecConfigID, hardwareConfigID); err != nil {
		return false, err
	}
	err = s.check(ctx, *user, project, computeSpecConfigID, hardwareConfigID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, api.ErrNotFound), errors.Is(err, api.ErrNotPermitted):
		return false, nil
	default:
		return false, err
	}
}

// Resolve builds the job template for a request. It fails with api.ErrInvalid for unset
// arguments, api.ErrNotFound when an id does not resolve, including a config deleted mid-request,
// and api.ErrNotPermitted when a config is outside the project's scopes or the hardware is not
// allowed for the compute spec. Error messages name the offending input.
func (s *Service) Resolve(
	ctx context.Context, user *model.User, project string, computeSpecConfigID, hardwareConfigID int,
) (tmpl *model.JobTemplate, err error) {
	defer prom.Time(resolveHistogram.WithLabelValues("resolve"))()
	defer prom.ErrCount(resolveErrors.WithLabelValues("resolve"), &err)
	defer func() { resolveOutcomes.WithLabelValues(outcome(err)).Inc() }()

	syslog := log.WithFields(logger.MergeContexts(s.logCtx, logger.Context{
		"project":                project,
		"compute_spec_config_id": computeSpecConfigID,
		"hardware_config_id":     hardwareConfigID,
	}).Fields())

	if err := validateArgs(user, project, computeSpecConfigID, hardwareConfigID); err != nil {
		return nil, err
	}
	if err := s.check(ctx, *user, project, computeSpecConfigID, hardwareConfigID); err != nil {
		syslog.WithError(err).Debug("job template not available")
		return nil, err
	}

	spec, err := s.specs.Get(ctx, computeSpecConfigID)
	if err != nil {
		return nil, errors.Wrap(err, "computeSpecConfigId")
	}
	hw, err := s.hardware.Get(ctx, hardwareConfigID)
	if err != nil {
		return nil, errors.Wrap(err, "hardwareConfigId")
	}
	constraintConfigs, err := s.constraints.ListAvailable(ctx, *user, project)
	if err != nil {
		return nil, errors.Wrap(err, "listing available constraints")
	}

	constraints := make([]model.Constraint, 0, len(constraintConfigs))
	for _, c := range constraintConfigs {
		constraints = append(constraints, c.Constraint)
	}
	syslog.WithField("constraints", len(constraints)).Debug("resolved job template")
	return &model.JobTemplate{
		ComputeSpec: spec.ComputeSpec,
		Hardware:    hw.Hardware,
		Constraints: constraints,
	}, nil
}

// AvailableComputeSpecs lists the compute spec configs available to the project that are offered
// for the usage type. An empty usage type matches every config.
func (s *Service) AvailableComputeSpecs(
	ctx context.Context, user *model.User, project string, usage model.UsageType,
) ([]*model.ComputeSpecConfig, error) {
	if user == nil {
		return nil, api.AsValidationError("user must be provided")
	}
	all, err := s.specs.ListAvailable(ctx, *user, project)
	if err != nil {
		return nil, err
	}
	if usage == "" {
		return all, nil
	}
	out := make([]*model.ComputeSpecConfig, 0, len(all))
	for _, spec := range all {
		if spec.SupportsUsage(usage) {
			out = append(out, spec)
		}
	}
	return out, nil
}

// AvailableHardware lists the hardware configs the project may pair with the compute spec config.
func (s *Service) AvailableHardware(
	ctx context.Context, user *model.User, project string, computeSpecConfigID int,
) ([]*model.HardwareConfig, error) {
	if err := validateRequester(user, project, computeSpecConfigID); err != nil {
		return nil, err
	}
	spec, err := s.availableSpec(ctx, *user, project, computeSpecConfigID)
	if err != nil {
		return nil, err
	}
	all, err := s.hardware.ListAvailable(ctx, *user, project)
	if err != nil {
		return nil, err
	}
	out := make([]*model.HardwareConfig, 0, len(all))
	for _, hw := range all {
		if spec.HardwareOptions.Allows(hw.ID) {
			out = append(out, hw)
		}
	}
	return out, nil
}

// DefaultHardware returns the first hardware config, in store order, that the project may pair
// with the compute spec config and that an applicable scope assignment marks as default.
func (s *Service) DefaultHardware(
	ctx context.Context, user *model.User, project string, computeSpecConfigID int,
) (*model.HardwareConfig, error) {
	candidates, err := s.AvailableHardware(ctx, user, project, computeSpecConfigID)
	if err != nil {
		return nil, err
	}
	for _, hw := range candidates {
		if s.resolver.IsDefault(ctx, hw, *user, project) {
			return hw, nil
		}
	}
	return nil, api.AsErrNotFound("no default hardware for compute spec config %d in project %q",
		computeSpecConfigID, project)
}

// check verifies that both configs exist and are available, and that the hardware passes the
// compute spec's allow-list.
func (s *Service) check(
	ctx context.Context, user model.User, project string, computeSpecConfigID, hardwareConfigID int,
) error {
	spec, err := s.availableSpec(ctx, user, project, computeSpecConfigID)
	if err != nil {
		return err
	}

	ok, err := s.hardware.Exists(ctx, hardwareConfigID)
	if err != nil {
		return err
	}
	if !ok {
		return api.AsErrNotFound("hardwareConfigId %d does not exist", hardwareConfigID)
	}
	hw, err := s.hardware.Get(ctx, hardwareConfigID)
	if err != nil {
		return errors.Wrap(err, "hardwareConfigId")
	}
	if !s.resolver.IsAvailable(ctx, hw, user, project) {
		return api.AsErrNotPermitted(
			"hardwareConfigId %d is not available in project %q", hardwareConfigID, project)
	}

	if !spec.HardwareOptions.Allows(hardwareConfigID) {
		return api.AsErrNotPermitted(
			"hardwareConfigId %d is not allowed for computeSpecConfigId %d",
			hardwareConfigID, computeSpecConfigID)
	}
	return nil
}

func (s *Service) availableSpec(
	ctx context.Context, user model.User, project string, computeSpecConfigID int,
) (*model.ComputeSpecConfig, error) {
	ok, err := s.specs.Exists(ctx, computeSpecConfigID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, api.AsErrNotFound("computeSpecConfigId %d does not exist", computeSpecConfigID)
	}
	spec, err := s.specs.Get(ctx, computeSpecConfigID)
	if err != nil {
		return nil, errors.Wrap(err, "computeSpecConfigId")
	}
	if !s.resolver.IsAvailable(ctx, spec, user, project) {
		return nil, api.AsErrNotPermitted("computeSpecConfigId %d is not available in project %q",
			computeSpecConfigID, project)
	}
	return spec, nil
}

// validateArgs rejects unset arguments. Ids start at 1.
func validateArgs(user *model.User, project string, computeSpecConfigID, hardwareConfigID int) error {
	if err := validateRequester(user, project, computeSpecConfigID); err != nil {
		return err
	}
	if hardwareConfigID <= 0 {
		return api.AsValidationError("hardwareConfigId must be provided")
	}
	return nil
}

func validateRequester(user *model.User, project string, computeSpecConfigID int) error {
	switch {
	case user == nil:
		return api.AsValidationError("user must be provided")
	case project == "":
		return api.AsValidationError("project must be provided")
	case computeSpecConfigID <= 0:
		return api.AsValidationError("computeSpecConfigId must be provided")
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, api.ErrInvalid):
		return outcomeInvalid
	case errors.Is(err, api.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, api.ErrNotPermitted):
		return outcomeNotPermitted
	default:
		return outcomeError
	}
}
