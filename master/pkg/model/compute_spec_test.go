package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/pkg/check"
)

func TestEnvironmentVariablesMap(t *testing.T) {
	env := EnvironmentVariables{{Key: "A", Value: "1"}, {Key: "B", Value: "2"}, {Key: "A", Value: "3"}}
	require.Equal(t, map[string]string{"A": "3", "B": "2"}, env.Map())
	require.Empty(t, EnvironmentVariables(nil).Map())
}

func TestHardwareOptionsAllows(t *testing.T) {
	require.True(t, HardwareOptions{AllowAllHardware: true}.Allows(42))
	listed := HardwareOptions{HardwareConfigIDs: []int{1, 3}}
	require.True(t, listed.Allows(3))
	require.False(t, listed.Allows(2))
	require.False(t, HardwareOptions{}.Allows(1))
}

func TestSupportsUsage(t *testing.T) {
	untagged := &ComputeSpecConfig{}
	require.True(t, untagged.SupportsUsage(JupyterHubUsage))

	jupyter := &ComputeSpecConfig{UsageTypes: []UsageType{JupyterHubUsage}}
	require.True(t, jupyter.SupportsUsage(JupyterHubUsage))
	require.False(t, jupyter.SupportsUsage(ContainerServiceUsage))

	general := &ComputeSpecConfig{UsageTypes: []UsageType{GeneralUsage}}
	require.True(t, general.SupportsUsage(ContainerServiceUsage))
}

func TestComputeSpecConfigValidate(t *testing.T) {
	valid := ComputeSpecConfig{
		Type: SiteConfig,
		ComputeSpec: ComputeSpec{
			Name:  "jupyter",
			Image: "jupyter/datascience-notebook:hub-3.0.0",
			Mounts: []Mount{
				{HostPath: "/data/archive", ContainerPath: "/data", ReadOnly: true},
			},
			EnvironmentVariables: EnvironmentVariables{{Key: "JUPYTER_ENABLE_LAB", Value: "yes"}},
		},
		Scopes: NewScopes(SiteScopeAssignment(true)),
	}
	require.NoError(t, check.Validate(valid))

	invalid := valid
	invalid.Type = "GLOBAL"
	invalid.UsageTypes = []UsageType{"BATCH"}
	invalid.ComputeSpec.Image = ""
	invalid.ComputeSpec.Mounts = []Mount{{HostPath: "/x", ContainerPath: "relative"}}
	invalid.ComputeSpec.EnvironmentVariables = EnvironmentVariables{{Value: "orphan"}}
	err := check.Validate(invalid)
	require.ErrorContains(t, err, "5 errors found")
	require.ErrorContains(t, err, "compute spec image")
	require.ErrorContains(t, err, "container_path must be absolute")
	require.ErrorContains(t, err, "config type: GLOBAL not in")
	require.ErrorContains(t, err, "usage type: BATCH not in")
	require.ErrorContains(t, err, "environment variable key")
}
