package config

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/computeplane/computeplane/master/pkg/check"
	"github.com/computeplane/computeplane/master/pkg/logger"
)

// Store backends.
const (
	MemoryStore   = "memory"
	PostgresStore = "postgres"
	RedisStore    = "redis"
)

// Orchestrator types.
const (
	SwarmOrchestrator      = "swarm"
	KubernetesOrchestrator = "kubernetes"
)

const (
	defaultPort               = 8080
	defaultLifecycleBuffer    = 256
	defaultRedisKeyPrefix     = "computeplane:lifecycle:"
	defaultKubernetesNamspace = "default"
	sslModeDisable            = "disable"
)

// DBConfig hosts configuration fields of the database.
type DBConfig struct {
	User        string `json:"user"`
	Password    string `json:"password"`
	Host        string `json:"host"`
	Port        string `json:"port"`
	Name        string `json:"name"`
	SSLMode     string `json:"ssl_mode"`
	SSLRootCert string `json:"ssl_root_cert"`
}

// DefaultDBConfig returns the default configuration of the database.
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Host:    "localhost",
		Port:    "5432",
		Name:    "computeplane",
		SSLMode: sslModeDisable,
	}
}

// RedisConfig hosts configuration fields of the redis lifecycle store.
type RedisConfig struct {
	Addrs     []string `json:"addrs"`
	DB        int      `json:"db"`
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	KeyPrefix string   `json:"key_prefix"`
}

// StoreConfig selects the config catalog backend.
type StoreConfig struct {
	Type     string `json:"type"`
	SeedFile string `json:"seed_file"`
}

// Validate implements the check.Validatable interface.
func (c StoreConfig) Validate() []error {
	return []error{
		check.In(c.Type, []string{MemoryStore, PostgresStore}, "store.type"),
	}
}

// LifecycleConfig selects the lifecycle log backend.
type LifecycleConfig struct {
	Store      string `json:"store"`
	BufferSize int    `json:"buffer_size"`
}

// Validate implements the check.Validatable interface.
func (c LifecycleConfig) Validate() []error {
	return []error{
		check.In(c.Store, []string{MemoryStore, PostgresStore, RedisStore}, "lifecycle.store"),
		check.GreaterThanOrEqualTo(float64(c.BufferSize), 0, "lifecycle.buffer_size"),
	}
}

// OrchestratorConfig selects the projection used for task specifications.
type OrchestratorConfig struct {
	Type      string `json:"type"`
	Namespace string `json:"namespace"`
}

// Validate implements the check.Validatable interface.
func (c OrchestratorConfig) Validate() []error {
	return []error{
		check.In(c.Type, []string{SwarmOrchestrator, KubernetesOrchestrator}, "orchestrator.type"),
	}
}

// Config is the configuration of the master.
//
// It is populated, in the following order, by the master configuration file,
// environment variables and command line arguments.
type Config struct {
	ConfigFile   string             `json:"config_file"`
	Log          logger.Config      `json:"log"`
	DB           DBConfig           `json:"db"`
	Redis        RedisConfig        `json:"redis"`
	Store        StoreConfig        `json:"store"`
	Lifecycle    LifecycleConfig    `json:"lifecycle"`
	AuthZ        AuthZConfig        `json:"authz"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Port         int                `json:"port"`
}

// DefaultConfig returns the default configuration of the master.
func DefaultConfig() *Config {
	return &Config{
		Log:   *logger.DefaultConfig(),
		DB:    *DefaultDBConfig(),
		Redis: RedisConfig{Addrs: []string{"localhost:6379"}, KeyPrefix: defaultRedisKeyPrefix},
		Store: StoreConfig{Type: MemoryStore},
		Lifecycle: LifecycleConfig{
			Store:      MemoryStore,
			BufferSize: defaultLifecycleBuffer,
		},
		AuthZ:        *DefaultAuthZConfig(),
		Orchestrator: OrchestratorConfig{Type: SwarmOrchestrator},
	}
}

// Resolve fills in values that depend on other settings.
func (c *Config) Resolve() error {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Orchestrator.Type == KubernetesOrchestrator && c.Orchestrator.Namespace == "" {
		c.Orchestrator.Namespace = defaultKubernetesNamspace
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = defaultRedisKeyPrefix
	}
	if c.Lifecycle.Store == RedisStore && len(c.Redis.Addrs) == 0 {
		return errors.New("lifecycle.store is redis but redis.addrs is empty")
	}
	return nil
}

// UsesPostgres reports whether any backend needs a database connection.
func (c Config) UsesPostgres() bool {
	return c.Store.Type == PostgresStore || c.Lifecycle.Store == PostgresStore ||
		c.AuthZ.Type == PostgresAuthZType
}

// Validate implements the check.Validatable interface.
func (c Config) Validate() []error {
	return []error{
		check.True(c.Port > 0 && c.Port < 65536, "port must be between 1 and 65535, got %d", c.Port),
	}
}

// Printable returns a printable string.
func (c Config) Printable() ([]byte, error) {
	const hiddenValue = "********"
	if c.DB.Password != "" {
		c.DB.Password = hiddenValue
	}
	if c.Redis.Password != "" {
		c.Redis.Password = hiddenValue
	}

	optJSON, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert config to JSON")
	}
	return optJSON, nil
}

// String implements fmt.Stringer with secrets hidden.
func (c Config) String() string {
	bs, err := c.Printable()
	if err != nil {
		return fmt.Sprintf("<unprintable config: %v>", err)
	}
	return string(bs)
}
