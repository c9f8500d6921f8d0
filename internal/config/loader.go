package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".parsegen"

const configType = "yaml"

// envPrefix is the environment variable prefix, e.g. PARSEGEN_PLAN_STRICT.
const envPrefix = "PARSEGEN"

const envKeySeparator = "_"

// Load reads configuration from file, env vars and defaults into v and
// returns the result. If configPath is non-empty it names the config file;
// otherwise .parsegen.yaml is searched in the working directory and $HOME.
// A missing config file is not an error.
//
// Callers bind their command-line flags to v before calling Load so that
// flags take precedence over the file.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadConfig loads configuration with a fresh viper instance.
func LoadConfig(configPath string) (*Config, error) {
	return Load(viper.New(), configPath)
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("verbose", false)

	v.SetDefault("generate.filename", DefaultFilename)
	v.SetDefault("generate.out", "")
	v.SetDefault("generate.package", "")
	v.SetDefault("generate.comments", DefaultComments)
	v.SetDefault("generate.partial", DefaultPartial)

	v.SetDefault("plan.strict", DefaultStrict)
	v.SetDefault("plan.warn_unused_captures", DefaultWarnUnusedCaptures)
	v.SetDefault("plan.max_suggestions", DefaultMaxSuggestions)
}
