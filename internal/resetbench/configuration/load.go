package configuration

import (
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "RESETBENCH"
	defaultConfigName = ".resetbench"
)

// SetDefaults registers the default value of every configuration key with v.
// Every key must have a default so that it can also be set from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("targetRuns", 10)
	v.SetDefault("runId", "")
	v.SetDefault("logLevel", "info")

	v.SetDefault("kubernetes.inClusterDeployment", false)
	v.SetDefault("kubernetes.configLocation", "")
	v.SetDefault("kubernetes.namespace", "default")
	v.SetDefault("kubernetes.qps", 20)
	v.SetDefault("kubernetes.burst", 40)

	v.SetDefault("nodes.selector", "nvidia.com/gpu.present=true")
	v.SetDefault("nodes.names", []string{})
	v.SetDefault("nodes.skipUnschedulable", true)

	v.SetDefault("job.templatePath", "")
	v.SetDefault("job.namePrefix", DefaultNamePrefix)
	v.SetDefault("job.threshold", "")
	v.SetDefault("job.launchParallelism", 1)

	v.SetDefault("polling.interval", DefaultPollInterval)
	v.SetDefault("polling.maxWait", NoTimeout)

	v.SetDefault("output.directory", "resetbench-results")
	v.SetDefault("output.logCleanupSelector", false)

	v.SetDefault("metrics.pushGatewayUrl", "")
	v.SetDefault("metrics.jobName", "resetbench")
}

// Load reads the configuration from, in increasing order of precedence: defaults, the config file,
// RESETBENCH_ prefixed environment variables and any flags already bound to v.
// When configFile is empty $HOME/.resetbench.yaml is used if it exists.
func Load(v *viper.Viper, configFile string) (*BenchmarkConfiguration, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, errors.Wrap(err, "finding home directory")
		}
		v.AddConfigPath(home)
		v.SetConfigName(defaultConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			// Only returned when searching for the default file, which is optional.
		default:
			return nil, errors.Wrapf(err, "reading config file %s", v.ConfigFileUsed())
		}
	}

	config := &BenchmarkConfiguration{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WithStack(err)
	}
	return config, nil
}
