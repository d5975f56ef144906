package tasks

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/docker/docker/api/types/swarm"
	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/pkg/model"
	"github.com/computeplane/computeplane/master/pkg/ptrs"
)

// ShellEntrypoint wraps a compute spec command line.
var ShellEntrypoint = []string{"/bin/sh", "-c"}

const nanoCPUsPerCore = 1e9

// ToSwarm converts a task specification into a Docker Swarm task template.
func ToSwarm(spec model.TaskSpecification) (swarm.TaskSpec, error) {
	limits, err := swarmLimit(spec.Resources)
	if err != nil {
		return swarm.TaskSpec{}, err
	}
	reservations, err := swarmReservations(spec.Resources)
	if err != nil {
		return swarm.TaskSpec{}, err
	}

	container := &swarm.ContainerSpec{
		Image:  spec.ContainerSpec.Image,
		Labels: spec.ContainerSpec.Labels,
		Env:    envList(spec.ContainerSpec.Env),
		Mounts: ToDockerMounts(spec.ContainerSpec.Mounts),
	}
	if spec.ContainerSpec.Command != "" {
		container.Command = append(append([]string{}, ShellEntrypoint...), spec.ContainerSpec.Command)
	}

	return swarm.TaskSpec{
		ContainerSpec: container,
		Resources: &swarm.ResourceRequirements{
			Limits:       limits,
			Reservations: reservations,
		},
		Placement: &swarm.Placement{
			Constraints: append([]string{}, spec.Placement.Constraints...),
		},
		RestartPolicy: &swarm.RestartPolicy{
			Condition: swarm.RestartPolicyConditionNone,
		},
	}, nil
}

func swarmLimit(r model.Resources) (*swarm.Limit, error) {
	mem, err := model.MemoryBytes(r.MemoryLimit)
	if err != nil {
		return nil, errors.Wrap(err, "memory limit")
	}
	return &swarm.Limit{NanoCPUs: nanoCPUs(r.CPULimit), MemoryBytes: mem}, nil
}

func swarmReservations(r model.Resources) (*swarm.Resources, error) {
	mem, err := model.MemoryBytes(r.MemoryReservation)
	if err != nil {
		return nil, errors.Wrap(err, "memory reservation")
	}
	return &swarm.Resources{
		NanoCPUs:         nanoCPUs(r.CPUReservation),
		MemoryBytes:      mem,
		GenericResources: genericResources(r.GenericResources),
	}, nil
}

func nanoCPUs(cores *float64) int64 {
	return int64(math.Round(ptrs.Deref(cores, 0) * nanoCPUsPerCore))
}

// genericResources maps counts onto discrete resources and anything else onto named resources,
// sorted by name.
func genericResources(resources map[string]string) []swarm.GenericResource {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]swarm.GenericResource, 0, len(names))
	for _, name := range names {
		value := resources[name]
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			out = append(out, swarm.GenericResource{
				DiscreteResourceSpec: &swarm.DiscreteGenericResource{Kind: name, Value: n},
			})
			continue
		}
		out = append(out, swarm.GenericResource{
			NamedResourceSpec: &swarm.NamedGenericResource{Kind: name, Value: value},
		})
	}
	return out
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}
