package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/config"
	"github.com/computeplane/computeplane/master/pkg/model"
)

const testSeed = `
hardware:
  - hardware:
      name: small
      cpu_limit: 2
      memory_limit: 4Gi
    scopes:
      - kind: SITE
        enabled: true
        default: true
  - hardware:
      name: gpu
      cpu_limit: 8
      memory_limit: 32Gi
      generic_resources:
        - name: gpu
          value: "1"
    scopes:
      - kind: GROUP
        key: imaging
        enabled: true
constraints:
  - constraint:
      key: node.labels.zone
      values: [us-east]
      operator: IN
    scopes:
      - kind: SITE
        enabled: true
compute_specs:
  - compute_spec:
      name: python
      image: repo/python:3.11
      command: run.sh
    hardware: [small, gpu]
    scopes:
      - kind: SITE
        enabled: true
`

func newTestApp(t *testing.T, orchestrator string) *app {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0o600))

	cfg := config.DefaultConfig()
	cfg.Store.SeedFile = path
	cfg.AuthZ.Groups = map[string][]string{"imaging": {"radiology"}}
	cfg.Orchestrator.Type = orchestrator
	require.NoError(t, cfg.Resolve())

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestResolveSwarm(t *testing.T) {
	a := newTestApp(t, config.SwarmOrchestrator)

	var out bytes.Buffer
	err := runResolve(context.Background(), a, resolveArgs{
		userID:        1,
		project:       "genomics",
		computeSpecID: 1,
	}, &out)
	require.NoError(t, err)

	var res map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Contains(t, res, "swarm")
	require.NotContains(t, res, "kubernetes")

	var tmpl model.JobTemplate
	require.NoError(t, json.Unmarshal(res["job_template"], &tmpl))
	require.Equal(t, "small", tmpl.Hardware.Name)
	require.Len(t, tmpl.Constraints, 1)

	var trackingID string
	require.NoError(t, json.Unmarshal(res["tracking_id"], &trackingID))
	require.NotEmpty(t, trackingID)
}

func TestResolveKubernetes(t *testing.T) {
	a := newTestApp(t, config.KubernetesOrchestrator)

	var out bytes.Buffer
	err := runResolve(context.Background(), a, resolveArgs{
		userID:        1,
		project:       "radiology",
		computeSpecID: 1,
		hardwareID:    2,
		trackingID:    "session-1",
	}, &out)
	require.NoError(t, err)

	var res struct {
		TrackingID string `json:"tracking_id"`
		Kubernetes struct {
			Metadata struct {
				Namespace string            `json:"namespace"`
				Labels    map[string]string `json:"labels"`
			} `json:"metadata"`
		} `json:"kubernetes"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Equal(t, "session-1", res.TrackingID)
	require.Equal(t, "default", res.Kubernetes.Metadata.Namespace)
	require.Contains(t, res.Kubernetes.Metadata.Labels, "computeplane.io/tracking-id")
}

func TestResolveOutOfScopeHardware(t *testing.T) {
	a := newTestApp(t, config.SwarmOrchestrator)

	err := runResolve(context.Background(), a, resolveArgs{
		project:       "genomics",
		computeSpecID: 1,
		hardwareID:    2,
	}, &bytes.Buffer{})
	require.ErrorIs(t, err, api.ErrNotPermitted)
}

func TestCatalogList(t *testing.T) {
	a := newTestApp(t, config.SwarmOrchestrator)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, runCatalogList(ctx, a.catalog, catalogListArgs{}, &out))
	var all catalogListing
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &all))
	require.Len(t, all.ComputeSpecs, 1)
	require.Len(t, all.Hardware, 2)
	require.Len(t, all.Constraints, 1)

	out.Reset()
	require.NoError(t, runCatalogList(ctx, a.catalog, catalogListArgs{
		kind:    string(model.HardwareKind),
		project: "genomics",
	}, &out))
	var available catalogListing
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &available))
	require.Empty(t, available.ComputeSpecs)
	require.Len(t, available.Hardware, 1)
	require.Equal(t, "small", available.Hardware[0].Hardware.Name)

	err := runCatalogList(ctx, a.catalog, catalogListArgs{kind: "gpu"}, &out)
	require.ErrorContains(t, err, "unknown config kind")
}

func TestEventsAppendAndList(t *testing.T) {
	a := newTestApp(t, config.SwarmOrchestrator)
	ctx := context.Background()

	later, err := eventsAppendArgs{
		operation: string(model.StartOperation),
		status:    string(model.CompletedStatus),
		progress:  100,
		eventTime: "2024-03-01T10:05:00Z",
	}.event("abc")
	require.NoError(t, err)
	earlier, err := eventsAppendArgs{
		operation: string(model.StartOperation),
		status:    string(model.InProgressStatus),
		progress:  10,
		eventTime: "2024-03-01T10:00:00Z",
	}.event("abc")
	require.NoError(t, err)
	require.NoError(t, a.tracker.Record(ctx, later))
	require.NoError(t, a.tracker.Record(ctx, earlier))

	var out bytes.Buffer
	require.NoError(t, runEventsList(ctx, a.tracker, "", &out))
	require.Equal(t, "abc", strings.TrimSpace(out.String()))

	out.Reset()
	require.NoError(t, runEventsList(ctx, a.tracker, "abc", &out))
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)
	require.Equal(t, string(model.InProgressStatus), entries[0]["status"])

	_, err = eventsAppendArgs{eventTime: "yesterday"}.event("abc")
	require.ErrorContains(t, err, "invalid --time")
}
