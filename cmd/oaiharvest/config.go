package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmc/oaiharvest"
)

// envPrefix namespaces environment overrides, e.g. OAIHARVEST_BASE_URL.
const envPrefix = "OAIHARVEST"

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"base-url":        "base_url",
	"set":             "set",
	"metadata-prefix": "metadata_prefix",
	"output-dir":      "output_dir",
	"csv":             "csv",
	"archive":         "archive",
	"xlsx":            "xlsx",
	"sqlite":          "sqlite",
	"ext":             "extensions",
	"concurrency":     "concurrency",
	"retries":         "retry.max_attempts",
	"rename":          "rename",
	"verify-pdf":      "verify_pdf",
	"user-agent":      "user_agent",
	"log-level":       "log_level",
	"log-format":      "log_format",
}

// bindConfig layers flags over environment variables over the optional
// config file.
func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

// loadConfig decodes the merged settings into a validated harvest config.
func loadConfig(v *viper.Viper) (oaiharvest.Config, error) {
	var cfg oaiharvest.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
