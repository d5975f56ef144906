package tasks

import (
	"github.com/docker/docker/api/types/mount"

	"github.com/computeplane/computeplane/master/pkg/model"
)

// ToDockerMounts converts task mounts to bind mounts.
func ToDockerMounts(mounts []model.Mount) []mount.Mount {
	dockerMounts := make([]mount.Mount, 0, len(mounts))
	for _, m := range mounts {
		dockerMounts = append(dockerMounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   m.HostPath,
			Target:   m.ContainerPath,
			ReadOnly: m.ReadOnly,
			BindOptions: &mount.BindOptions{
				Propagation: mount.PropagationRPrivate,
			},
		})
	}
	return dockerMounts
}
