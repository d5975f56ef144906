// Package kubernetes projects task specifications onto Kubernetes pods.
package kubernetes

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	petName "github.com/dustinkirkland/golang-petname"
	"github.com/pkg/errors"
	k8sV1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metaV1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/computeplane/computeplane/master/pkg/constraints"
	"github.com/computeplane/computeplane/master/pkg/model"
	"github.com/computeplane/computeplane/master/pkg/tasks"
)

const (
	// TrackingIDLabel is set on every pod to the tracking id of its compute session.
	TrackingIDLabel = "computeplane.io/tracking-id"
	// ContainerName is the name of the container running the compute spec.
	ContainerName = "compute"

	nodeLabelPrefix = "node.labels."
	maxNameLength   = 63
)

// Well-known generic resource names and the extended resources they map to.
var extendedResources = map[string]k8sV1.ResourceName{
	"gpu":        "nvidia.com/gpu",
	"nvidia-gpu": "nvidia.com/gpu",
	"amd-gpu":    "amd.com/gpu",
}

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// PodOptions carries the pod settings that are not part of a task specification.
type PodOptions struct {
	Namespace  string
	TrackingID string
	// NamePrefix is sanitized and suffixed with a random pet name.
	NamePrefix string
}

// Pod converts a task specification into a pod. Placement becomes a required node affinity with
// one requirement per source constraint, all of which must hold. Only the values of a single
// IN constraint are alternatives; without groups every expression is its own requirement.
func Pod(spec model.TaskSpecification, opts PodOptions) (*k8sV1.Pod, error) {
	res, err := configureResourcesRequirements(spec.Resources)
	if err != nil {
		return nil, err
	}
	affinity, err := configureAffinity(spec.Placement)
	if err != nil {
		return nil, err
	}
	volumeMounts, volumes := dockerMountsToHostVolumes(tasks.ToDockerMounts(spec.ContainerSpec.Mounts))

	container := k8sV1.Container{
		Name:            ContainerName,
		Image:           spec.ContainerSpec.Image,
		Env:             configureEnvVars(spec.ContainerSpec.Env),
		Resources:       res,
		VolumeMounts:    volumeMounts,
		ImagePullPolicy: k8sV1.PullIfNotPresent,
	}
	if spec.ContainerSpec.Command != "" {
		container.Command = append(append([]string{}, tasks.ShellEntrypoint...),
			spec.ContainerSpec.Command)
	}

	labels := make(map[string]string, len(spec.ContainerSpec.Labels)+1)
	for k, v := range spec.ContainerSpec.Labels {
		labels[k] = v
	}
	if opts.TrackingID != "" {
		labels[TrackingIDLabel] = opts.TrackingID
	}

	return &k8sV1.Pod{
		ObjectMeta: metaV1.ObjectMeta{
			Name:      configureUniqueName(opts.NamePrefix),
			Namespace: opts.Namespace,
			Labels:    labels,
		},
		Spec: k8sV1.PodSpec{
			Containers:    []k8sV1.Container{container},
			Volumes:       volumes,
			Affinity:      affinity,
			RestartPolicy: k8sV1.RestartPolicyNever,
		},
	}, nil
}

func configureUniqueName(prefix string) string {
	uniqueName := petName.Generate(2, "-")
	prefix = strings.Trim(invalidNameChars.ReplaceAllString(strings.ToLower(prefix), "-"), "-")
	if prefix == "" {
		prefix = "compute"
	}
	if limit := maxNameLength - len(uniqueName) - 1; len(prefix) > limit {
		prefix = strings.TrimRight(prefix[:limit], "-")
	}
	return fmt.Sprintf("%s-%s", prefix, uniqueName)
}

func configureEnvVars(env map[string]string) []k8sV1.EnvVar {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	envVars := make([]k8sV1.EnvVar, 0, len(keys))
	for _, k := range keys {
		envVars = append(envVars, k8sV1.EnvVar{Name: k, Value: env[k]})
	}
	return envVars
}

func configureResourcesRequirements(r model.Resources) (k8sV1.ResourceRequirements, error) {
	limits := k8sV1.ResourceList{}
	requests := k8sV1.ResourceList{}

	if r.CPULimit != nil {
		limits[k8sV1.ResourceCPU] = cpuQuantity(*r.CPULimit)
	}
	if r.CPUReservation != nil {
		requests[k8sV1.ResourceCPU] = cpuQuantity(*r.CPUReservation)
	}
	if err := setMemory(limits, r.MemoryLimit); err != nil {
		return k8sV1.ResourceRequirements{}, errors.Wrap(err, "memory limit")
	}
	if err := setMemory(requests, r.MemoryReservation); err != nil {
		return k8sV1.ResourceRequirements{}, errors.Wrap(err, "memory reservation")
	}

	// Extended resources cannot be overcommitted, so requests must equal limits.
	for name, value := range r.GenericResources {
		q, err := resource.ParseQuantity(value)
		if err != nil {
			return k8sV1.ResourceRequirements{}, errors.Wrapf(err,
				"generic resource %q has invalid quantity %q", name, value)
		}
		rn := resourceName(name)
		limits[rn] = q
		requests[rn] = q.DeepCopy()
	}

	return k8sV1.ResourceRequirements{Limits: limits, Requests: requests}, nil
}

func cpuQuantity(cores float64) resource.Quantity {
	return *resource.NewMilliQuantity(int64(math.Round(cores*1000)), resource.DecimalSI)
}

func setMemory(list k8sV1.ResourceList, size string) error {
	b, err := model.MemoryBytes(size)
	if err != nil {
		return err
	}
	if b > 0 {
		list[k8sV1.ResourceMemory] = *resource.NewQuantity(b, resource.BinarySI)
	}
	return nil
}

func resourceName(name string) k8sV1.ResourceName {
	if rn, ok := extendedResources[name]; ok {
		return rn
	}
	return k8sV1.ResourceName(name)
}

func configureAffinity(p model.Placement) (*k8sV1.Affinity, error) {
	groups := p.Groups
	if len(groups) == 0 {
		for _, raw := range p.Constraints {
			groups = append(groups, []string{raw})
		}
	}
	if len(groups) == 0 {
		return nil, nil
	}

	var reqs []k8sV1.NodeSelectorRequirement
	for _, exprs := range groups {
		groupReqs, err := configureRequirements(exprs)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, groupReqs...)
	}
	return &k8sV1.Affinity{
		NodeAffinity: &k8sV1.NodeAffinity{
			RequiredDuringSchedulingIgnoredDuringExecution: &k8sV1.NodeSelector{
				NodeSelectorTerms: []k8sV1.NodeSelectorTerm{{MatchExpressions: reqs}},
			},
		},
	}, nil
}

// configureRequirements turns the expressions of one constraint into node selector
// requirements, merging the values that share an operator and key.
func configureRequirements(exprs []string) ([]k8sV1.NodeSelectorRequirement, error) {
	type group struct {
		key    string
		op     k8sV1.NodeSelectorOperator
		values []string
	}
	var order []string
	groups := map[string]*group{}
	for _, raw := range exprs {
		expr, err := constraints.Parse(raw)
		if err != nil {
			return nil, err
		}
		key := strings.TrimPrefix(expr.Key, nodeLabelPrefix)
		op := k8sV1.NodeSelectorOpIn
		if expr.Operator == model.ConstraintNotIn {
			op = k8sV1.NodeSelectorOpNotIn
		}
		id := string(op) + "/" + key
		g, ok := groups[id]
		if !ok {
			g = &group{key: key, op: op}
			groups[id] = g
			order = append(order, id)
		}
		g.values = append(g.values, expr.Value)
	}

	reqs := make([]k8sV1.NodeSelectorRequirement, 0, len(order))
	for _, id := range order {
		g := groups[id]
		reqs = append(reqs, k8sV1.NodeSelectorRequirement{
			Key:      g.key,
			Operator: g.op,
			Values:   model.DistinctValues(g.values),
		})
	}
	return reqs, nil
}
