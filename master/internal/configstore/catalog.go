package configstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/scope"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// Catalog bundles the three configuration stores and keeps references between them intact.
// Administrative writes should go through the catalog rather than the stores directly.
type Catalog struct {
	ComputeSpecs *Store[*model.ComputeSpecConfig]
	Hardware     *Store[*model.HardwareConfig]
	Constraints  *Store[*model.ConstraintConfig]

	// mu serializes writes that check references across stores.
	mu sync.Mutex
}

// NewCatalog builds a catalog over the given repositories.
func NewCatalog(
	specs Repository[*model.ComputeSpecConfig],
	hardware Repository[*model.HardwareConfig],
	constraints Repository[*model.ConstraintConfig],
	resolver *scope.Resolver,
) *Catalog {
	return &Catalog{
		ComputeSpecs: NewStore(specs, resolver),
		Hardware:     NewStore(hardware, resolver),
		Constraints:  NewStore(constraints, resolver),
	}
}

// NewMemoryCatalog builds a catalog held in process memory.
func NewMemoryCatalog(resolver *scope.Resolver) *Catalog {
	return NewCatalog(
		NewMemoryRepository[*model.ComputeSpecConfig](),
		NewMemoryRepository[*model.HardwareConfig](),
		NewMemoryRepository[*model.ConstraintConfig](),
		resolver,
	)
}

// NewPostgresCatalog builds a catalog stored in the compute_configs table.
func NewPostgresCatalog(table ConfigTable, resolver *scope.Resolver) *Catalog {
	return NewCatalog(
		NewPostgresRepository[*model.ComputeSpecConfig](table),
		NewPostgresRepository[*model.HardwareConfig](table),
		NewPostgresRepository[*model.ConstraintConfig](table),
		resolver,
	)
}

// CreateComputeSpec stores a compute spec config after checking that every hardware config on
// its allow-list exists.
func (c *Catalog) CreateComputeSpec(
	ctx context.Context, cfg *model.ComputeSpecConfig,
) (*model.ComputeSpecConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkHardwareRefs(ctx, cfg); err != nil {
		return nil, err
	}
	return c.ComputeSpecs.Create(ctx, cfg)
}

// UpdateComputeSpec replaces a compute spec config after checking its hardware references.
func (c *Catalog) UpdateComputeSpec(
	ctx context.Context, cfg *model.ComputeSpecConfig,
) (*model.ComputeSpecConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkHardwareRefs(ctx, cfg); err != nil {
		return nil, err
	}
	return c.ComputeSpecs.Update(ctx, cfg)
}

// CreateHardware stores a hardware config.
func (c *Catalog) CreateHardware(
	ctx context.Context, cfg *model.HardwareConfig,
) (*model.HardwareConfig, error) {
	return c.Hardware.Create(ctx, cfg)
}

// CreateConstraint stores a constraint config.
func (c *Catalog) CreateConstraint(
	ctx context.Context, cfg *model.ConstraintConfig,
) (*model.ConstraintConfig, error) {
	return c.Constraints.Create(ctx, cfg)
}

// DeleteComputeSpec removes a compute spec config.
func (c *Catalog) DeleteComputeSpec(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ComputeSpecs.Delete(ctx, id)
}

// DeleteHardware removes a hardware config unless a compute spec config lists it explicitly.
func (c *Catalog) DeleteHardware(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	specs, err := c.ComputeSpecs.List(ctx)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		for _, hwID := range spec.HardwareOptions.HardwareConfigIDs {
			if hwID == id {
				return errors.Wrapf(ErrInUse,
					"hardware config %d is allowed by compute spec config %d", id, spec.ID)
			}
		}
	}
	return c.Hardware.Delete(ctx, id)
}

// DeleteConstraint removes a constraint config.
func (c *Catalog) DeleteConstraint(ctx context.Context, id int) error {
	return c.Constraints.Delete(ctx, id)
}

func (c *Catalog) checkHardwareRefs(ctx context.Context, cfg *model.ComputeSpecConfig) error {
	if cfg == nil {
		return nil
	}
	for _, id := range cfg.HardwareOptions.HardwareConfigIDs {
		ok, err := c.Hardware.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return api.AsErrNotFound("hardware config %d on the allow-list of %q", id,
				cfg.ComputeSpec.Name)
		}
	}
	return nil
}
