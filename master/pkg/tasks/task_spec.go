package tasks

import (
	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/pkg/constraints"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// Build projects a job template into an orchestrator-neutral task specification. The result
// depends only on the template; the only failure is an unknown constraint operator.
//
// Hardware environment variables are layered over the compute spec's, so the hardware value
// wins when both set the same key.
func Build(template model.JobTemplate) (model.TaskSpecification, error) {
	env := template.ComputeSpec.EnvironmentVariables.Map()
	for k, v := range template.Hardware.EnvironmentVariables.Map() {
		env[k] = v
	}

	mounts := make([]model.Mount, len(template.ComputeSpec.Mounts))
	copy(mounts, template.ComputeSpec.Mounts)

	generic := make(map[string]string, len(template.Hardware.GenericResources))
	for _, r := range template.Hardware.GenericResources {
		generic[r.Name] = r.Value
	}

	groups, err := constraints.TranslateGroups(template.Constraints)
	if err != nil {
		return model.TaskSpecification{}, errors.Wrap(err, "building placement from job constraints")
	}
	hwGroups, err := constraints.TranslateGroups(template.Hardware.Constraints)
	if err != nil {
		return model.TaskSpecification{}, errors.Wrapf(err,
			"building placement from hardware %q", template.Hardware.Name)
	}
	groups = append(groups, hwGroups...)

	return model.TaskSpecification{
		ContainerSpec: model.ContainerSpec{
			Image:   template.ComputeSpec.Image,
			Command: template.ComputeSpec.Command,
			Env:     env,
			Labels:  map[string]string{},
			Mounts:  mounts,
		},
		Resources: model.Resources{
			CPULimit:          copyFloat(template.Hardware.CPULimit),
			CPUReservation:    copyFloat(template.Hardware.CPUReservation),
			MemoryLimit:       template.Hardware.MemoryLimit,
			MemoryReservation: template.Hardware.MemoryReservation,
			GenericResources:  generic,
		},
		Placement: model.Placement{
			Constraints: constraints.Flatten(groups),
			Groups:      groups,
		},
	}, nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
