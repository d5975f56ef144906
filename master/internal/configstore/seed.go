package configstore

import (
	"context"
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/pkg/model"
)

// Seed is the file format for preloading a catalog. Compute spec configs name the hardware they
// allow, since ids are only assigned while loading.
type Seed struct {
	Hardware     []model.HardwareConfig   `json:"hardware"`
	Constraints  []model.ConstraintConfig `json:"constraints"`
	ComputeSpecs []SeedComputeSpec        `json:"compute_specs"`
}

// SeedComputeSpec is a compute spec config whose allow-list is given by hardware name.
type SeedComputeSpec struct {
	model.ComputeSpecConfig
	Hardware []string `json:"hardware,omitempty"`
}

// ParseSeed parses a YAML seed document. Unknown fields are rejected.
func ParseSeed(bs []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(bs, &seed, yaml.DisallowUnknownFields); err != nil {
		return nil, errors.Wrap(err, "parsing seed catalog")
	}
	return &seed, nil
}

// LoadCatalogFile reads a YAML seed file into the catalog.
func LoadCatalogFile(ctx context.Context, path string, c *Catalog) error {
	bs, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return errors.Wrapf(err, "reading seed catalog %s", path)
	}
	seed, err := ParseSeed(bs)
	if err != nil {
		return err
	}
	return LoadCatalog(ctx, seed, c)
}

// LoadCatalog creates every entry of the seed. Hardware is created first so compute specs can
// refer to it by name. Entries that fail are skipped and reported together; the rest are
// still created.
func LoadCatalog(ctx context.Context, seed *Seed, c *Catalog) error {
	var result *multierror.Error

	hardwareIDs := map[string]int{}
	for i := range seed.Hardware {
		hw := seed.Hardware[i]
		created, err := c.CreateHardware(ctx, &hw)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("hardware[%d] %q: %w",
				i, hw.Hardware.Name, err))
			continue
		}
		hardwareIDs[created.Hardware.Name] = created.ID
	}

	for i := range seed.Constraints {
		con := seed.Constraints[i]
		if _, err := c.CreateConstraint(ctx, &con); err != nil {
			result = multierror.Append(result, fmt.Errorf("constraints[%d] %q: %w",
				i, con.Constraint.Key, err))
		}
	}

	for i, entry := range seed.ComputeSpecs {
		spec := entry.ComputeSpecConfig
		spec.HardwareOptions.HardwareConfigIDs = append([]int(nil),
			spec.HardwareOptions.HardwareConfigIDs...)
		var missing bool
		for _, name := range entry.Hardware {
			id, ok := hardwareIDs[name]
			if !ok {
				result = multierror.Append(result, fmt.Errorf(
					"compute_specs[%d] %q: unknown hardware %q", i, spec.ComputeSpec.Name, name))
				missing = true
				continue
			}
			spec.HardwareOptions.HardwareConfigIDs = append(
				spec.HardwareOptions.HardwareConfigIDs, id)
		}
		if missing {
			continue
		}
		if _, err := c.CreateComputeSpec(ctx, &spec); err != nil {
			result = multierror.Append(result, fmt.Errorf("compute_specs[%d] %q: %w",
				i, spec.ComputeSpec.Name, err))
		}
	}

	log.WithFields(log.Fields{
		"hardware":      len(seed.Hardware),
		"constraints":   len(seed.Constraints),
		"compute_specs": len(seed.ComputeSpecs),
	}).Info("loaded seed catalog")
	return result.ErrorOrNil()
}
