package kubernetes

import (
	"fmt"

	"github.com/docker/docker/api/types/mount"
	k8sV1 "k8s.io/api/core/v1"
)

func configureMountPropagation(b *mount.BindOptions) *k8sV1.MountPropagationMode {
	if b != nil {
		switch b.Propagation {
		case mount.PropagationPrivate, mount.PropagationRPrivate:
			p := k8sV1.MountPropagationNone
			return &p
		case mount.PropagationRSlave:
			p := k8sV1.MountPropagationHostToContainer
			return &p
		case mount.PropagationRShared:
			p := k8sV1.MountPropagationBidirectional
			return &p
		default:
			return nil
		}
	}

	return nil
}

func dockerMountsToHostVolumes(dockerMounts []mount.Mount) ([]k8sV1.VolumeMount, []k8sV1.Volume) {
	volumeMounts := make([]k8sV1.VolumeMount, 0, len(dockerMounts))
	volumes := make([]k8sV1.Volume, 0, len(dockerMounts))

	for idx, d := range dockerMounts {
		name := fmt.Sprintf("cp-host-volume-%d", idx)
		volumeMounts = append(volumeMounts, k8sV1.VolumeMount{
			Name:             name,
			ReadOnly:         d.ReadOnly,
			MountPath:        d.Target,
			MountPropagation: configureMountPropagation(d.BindOptions),
		})
		volumes = append(volumes, k8sV1.Volume{
			Name: name,
			VolumeSource: k8sV1.VolumeSource{
				HostPath: &k8sV1.HostPathVolumeSource{
					Path: d.Source,
				},
			},
		})
	}

	return volumeMounts, volumes
}
