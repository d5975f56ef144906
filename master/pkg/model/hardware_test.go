package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/pkg/check"
	"github.com/computeplane/computeplane/master/pkg/ptrs"
)

func TestMemoryBytes(t *testing.T) {
	b, err := MemoryBytes("4Gi")
	require.NoError(t, err)
	require.Equal(t, int64(4<<30), b)

	b, err = MemoryBytes("")
	require.NoError(t, err)
	require.Zero(t, b)

	_, err = MemoryBytes("four gigs")
	require.ErrorContains(t, err, `invalid memory size "four gigs"`)
}

func TestHardwareValidate(t *testing.T) {
	hw := Hardware{
		Name:              "large",
		CPULimit:          ptrs.Ptr(4.0),
		CPUReservation:    ptrs.Ptr(2.0),
		MemoryLimit:       "16Gi",
		MemoryReservation: "8Gi",
		Constraints:       []Constraint{NewConstraint("node.role", ConstraintIn, "worker")},
		GenericResources:  []GenericResource{{Name: "NVIDIA-GPU", Value: "1"}},
	}
	require.NoError(t, check.Validate(hw))

	tests := map[string]struct {
		mutate func(h *Hardware)
		want   string
	}{
		"negative cpu": {
			mutate: func(h *Hardware) { h.CPULimit = ptrs.Ptr(-1.0); h.CPUReservation = nil },
			want:   "cpu_limit: -1 is not greater than or equal to 0",
		},
		"cpu reservation above limit": {
			mutate: func(h *Hardware) { h.CPUReservation = ptrs.Ptr(8.0) },
			want:   "cpu_reservation must not exceed cpu_limit",
		},
		"bad memory": {
			mutate: func(h *Hardware) { h.MemoryLimit = "lots" },
			want:   "memory_limit: invalid memory size",
		},
		"memory reservation above limit": {
			mutate: func(h *Hardware) { h.MemoryReservation = "32Gi" },
			want:   "memory_reservation 32Gi must not exceed memory_limit 16Gi",
		},
		"constraint without values": {
			mutate: func(h *Hardware) { h.Constraints = []Constraint{{Key: "k", Operator: ConstraintIn}} },
			want:   "error found at root.Constraints[0]",
		},
		"generic resource without value": {
			mutate: func(h *Hardware) { h.GenericResources = []GenericResource{{Name: "gpu"}} },
			want:   `generic resource "gpu" value`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := hw
			tc.mutate(&h)
			require.ErrorContains(t, check.Validate(h), tc.want)
		})
	}
}
