package main

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/computeplane/computeplane/master/internal/config"
)

var v *viper.Viper

// viperKeyDelimiter marks nested values in the configuration. With a delimiter of ".", a group
// name such as `team.ml` under authz.groups would be read back as a nested object; ".." keeps
// single dots usable inside keys.
const viperKeyDelimiter = ".."

//nolint:gochecknoinit
func init() {
	rootCmd.Version = version
	registerConfig()
	rootCmd.AddCommand(
		newServeCmd(),
		newResolveCmd(),
		newCatalogCmd(),
		newEventsCmd(),
	)
}

type configKey []string

func (c configKey) EnvName() string {
	return "CP_" + strings.ReplaceAll(strings.ToUpper(c.FlagName()), "-", "_")
}

func (c configKey) AccessPath() string {
	return strings.ReplaceAll(strings.Join(c, viperKeyDelimiter), "-", "_")
}

func (c configKey) FlagName() string {
	return strings.Join(c, "-")
}

func registerString(flags *pflag.FlagSet, name configKey, value string, usage string) {
	flags.String(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerStringSlice(flags *pflag.FlagSet, name configKey, value []string, usage string) {
	flags.StringSlice(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerBool(flags *pflag.FlagSet, name configKey, value bool, usage string) {
	flags.Bool(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerInt(flags *pflag.FlagSet, name configKey, value int, usage string) {
	flags.Int(name.FlagName(), value, usage)
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerConfig() {
	v = viper.NewWithOptions(viper.KeyDelimiter(viperKeyDelimiter))
	v.SetTypeByDefaultValue(true)

	defaults := config.DefaultConfig()

	// Every subcommand shares the master configuration.
	flags := rootCmd.PersistentFlags()
	name := func(components ...string) configKey { return components }

	registerString(flags, name("config-file"),
		defaults.ConfigFile, "location of config file")

	registerString(flags, name("log", "level"),
		defaults.Log.Level, "choose logging level from [trace, debug, info, warn, error, fatal]")
	registerBool(flags, name("log", "color"),
		defaults.Log.Color, "output logs in color")
	registerBool(flags, name("log", "json"),
		defaults.Log.JSON, "output logs as JSON")

	registerString(flags, name("db", "user"),
		defaults.DB.User, "database username")
	registerString(flags, name("db", "password"),
		defaults.DB.Password, "database password")
	registerString(flags, name("db", "host"),
		defaults.DB.Host, "database host")
	registerString(flags, name("db", "port"),
		defaults.DB.Port, "database port")
	registerString(flags, name("db", "name"),
		defaults.DB.Name, "database name")
	registerString(flags, name("db", "ssl-mode"),
		defaults.DB.SSLMode, "database ssl mode (disable, verify-ca, ...)")
	registerString(flags, name("db", "ssl-root-cert"),
		defaults.DB.SSLRootCert, "database ssl root cert path")

	registerStringSlice(flags, name("redis", "addrs"),
		defaults.Redis.Addrs, "redis addresses, more than one for a cluster")
	registerInt(flags, name("redis", "db"),
		defaults.Redis.DB, "redis database number")
	registerString(flags, name("redis", "username"),
		defaults.Redis.Username, "redis username")
	registerString(flags, name("redis", "password"),
		defaults.Redis.Password, "redis password")
	registerString(flags, name("redis", "key-prefix"),
		defaults.Redis.KeyPrefix, "prefix of every redis key written by the master")

	registerString(flags, name("store", "type"),
		defaults.Store.Type, "config catalog backend [memory, postgres]")
	registerString(flags, name("store", "seed-file"),
		defaults.Store.SeedFile, "YAML catalog loaded into the store at startup")

	registerString(flags, name("lifecycle", "store"),
		defaults.Lifecycle.Store, "lifecycle log backend [memory, postgres, redis]")
	registerInt(flags, name("lifecycle", "buffer-size"),
		defaults.Lifecycle.BufferSize, "lifecycle events queued before callbacks block")

	registerString(flags, name("authz", "type"),
		defaults.AuthZ.Type, "group membership oracle [static, postgres]")

	registerString(flags, name("orchestrator", "type"),
		defaults.Orchestrator.Type, "task specification projection [swarm, kubernetes]")
	registerString(flags, name("orchestrator", "namespace"),
		defaults.Orchestrator.Namespace, "kubernetes namespace of projected pods")

	registerInt(flags, name("port"),
		defaults.Port, "server port")
}
