package config

import (
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"

	"github.com/computeplane/computeplane/master/pkg/check"
	"github.com/computeplane/computeplane/master/pkg/ptrs"
)

func TestUnmarshalConfig(t *testing.T) {
	raw := `
log:
  level: debug

db:
  user: config_file_user
  password: password
  host: hostname
  port: "3000"

store:
  type: postgres
  seed_file: /etc/computeplane/catalog.yaml

lifecycle:
  store: redis
  buffer_size: 16

redis:
  addrs: ["redis-0:6379", "redis-1:6379"]

authz:
  type: static
  groups:
    imaging: [p1, p2]

orchestrator:
  type: kubernetes
`
	c := DefaultConfig()
	require.NoError(t, yaml.Unmarshal([]byte(raw), c, yaml.DisallowUnknownFields))
	require.NoError(t, c.Resolve())
	require.NoError(t, check.Validate(c))

	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, "3000", c.DB.Port)
	require.Equal(t, PostgresStore, c.Store.Type)
	require.Equal(t, []string{"p1", "p2"}, c.AuthZ.Groups["imaging"])
	require.Equal(t, "default", c.Orchestrator.Namespace)
	require.Equal(t, defaultPort, c.Port)
	require.Equal(t, defaultRedisKeyPrefix, c.Redis.KeyPrefix)
	require.True(t, c.UsesPostgres())
}

func TestUnknownFieldsRejected(t *testing.T) {
	c := DefaultConfig()
	err := yaml.Unmarshal([]byte("stor:\n  type: memory\n"), c, yaml.DisallowUnknownFields)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Resolve())
	c.Store.Type = "sqlite"
	c.Lifecycle.Store = "etcd"
	c.Orchestrator.Type = "nomad"
	c.Log.Level = "loud"
	err := check.Validate(c)
	require.ErrorContains(t, err, "store.type: sqlite not in")
	require.ErrorContains(t, err, "lifecycle.store: etcd not in")
	require.ErrorContains(t, err, "orchestrator.type: nomad not in")
	require.ErrorContains(t, err, "not a valid logrus Level")
}

func TestResolveRedisWithoutAddrs(t *testing.T) {
	c := DefaultConfig()
	c.Lifecycle.Store = RedisStore
	c.Redis.Addrs = nil
	require.ErrorContains(t, c.Resolve(), "redis.addrs is empty")
}

func TestAuthZTypeValidation(t *testing.T) {
	RegisterAuthZType(StaticAuthZType)
	require.Empty(t, AuthZConfig{Type: StaticAuthZType}.Validate())

	errs := AuthZConfig{Type: "ldap", FallbackType: ptrs.Ptr("kerberos")}.Validate()
	require.Len(t, errs, 2)
	require.ErrorContains(t, errs[0], `"ldap" is not a known authz type`)
}

func TestPrintableHidesSecrets(t *testing.T) {
	c := DefaultConfig()
	c.DB.Password = "hunter2"
	c.Redis.Password = "swordfish"
	bs, err := c.Printable()
	require.NoError(t, err)
	require.NotContains(t, string(bs), "hunter2")
	require.NotContains(t, string(bs), "swordfish")
	require.Contains(t, c.String(), "********")
	require.Equal(t, "hunter2", c.DB.Password)
}
