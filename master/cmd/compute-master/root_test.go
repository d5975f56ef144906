package main

import (
	"testing"

	"gotest.tools/assert"

	"github.com/computeplane/computeplane/master/internal/config"
)

func TestUnmarshalMasterConfigurationViaViper(t *testing.T) {
	raw := `
db:
  host: db.internal
  password: secret
store:
  type: postgres
  seed_file: /etc/computeplane/catalog.yaml
lifecycle:
  store: redis
  buffer_size: 16
redis:
  addrs:
    - redis-0:6379
    - redis-1:6379
authz:
  type: static
  groups:
    imaging:
      - radiology
      - pathology
orchestrator:
  type: kubernetes
`
	expected := config.DefaultConfig()
	expected.DB.Host = "db.internal"
	expected.DB.Password = "secret"
	expected.Store = config.StoreConfig{
		Type:     config.PostgresStore,
		SeedFile: "/etc/computeplane/catalog.yaml",
	}
	expected.Lifecycle = config.LifecycleConfig{Store: config.RedisStore, BufferSize: 16}
	expected.Redis.Addrs = []string{"redis-0:6379", "redis-1:6379"}
	expected.AuthZ.Groups = map[string][]string{"imaging": {"radiology", "pathology"}}
	expected.Orchestrator = config.OrchestratorConfig{
		Type:      config.KubernetesOrchestrator,
		Namespace: "default",
	}
	expected.Port = 8080

	err := mergeConfigBytesIntoViper([]byte(raw))
	assert.NilError(t, err)
	cfg, err := getConfig(v.AllSettings())
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, expected)
	assert.Assert(t, cfg.UsesPostgres())
}

func TestGetConfigRejectsUnknownFields(t *testing.T) {
	_, err := getConfig(map[string]interface{}{
		"store": map[string]interface{}{"kind": "memory"},
	})
	assert.ErrorContains(t, err, "cannot unmarshal configuration")
}

func TestGetConfigRedisWithoutAddrs(t *testing.T) {
	_, err := getConfig(map[string]interface{}{
		"lifecycle": map[string]interface{}{"store": "redis"},
		"redis":     map[string]interface{}{"addrs": []string{}},
	})
	assert.ErrorContains(t, err, "redis.addrs is empty")
}

func TestConfigKeyNames(t *testing.T) {
	key := configKey{"lifecycle", "buffer-size"}
	assert.Equal(t, key.FlagName(), "lifecycle-buffer-size")
	assert.Equal(t, key.EnvName(), "CP_LIFECYCLE_BUFFER_SIZE")
	assert.Equal(t, key.AccessPath(), "lifecycle..buffer_size")
}
