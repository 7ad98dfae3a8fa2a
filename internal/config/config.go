// Package config loads CLI settings from defaults, an optional
// storeplex.yaml and STOREPLEX_ environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = "storeplex"

// Formats lists the accepted output formats.
var Formats = []string{"text", "json"}

// Config holds CLI configuration.
type Config struct {
	Output OutputConfig
	Test   TestConfig
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Format  string
	Verbose bool
}

// TestConfig holds defaults for the test command.
type TestConfig struct {
	Filter string
}

// Load reads configuration. An explicit path must exist; otherwise
// storeplex.yaml in dir is read if present. Env var overrides use prefix
// STOREPLEX_ (e.g. STOREPLEX_OUTPUT_FORMAT).
func Load(path, dir string) (Config, error) {
	v := viper.New()

	v.SetDefault("output.format", "text")
	v.SetDefault("output.verbose", false)
	v.SetDefault("test.filter", "")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix("STOREPLEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if !slices.Contains(Formats, c.Output.Format) {
		return Config{}, fmt.Errorf("invalid output.format %q: must be one of %v", c.Output.Format, Formats)
	}
	return c, nil
}
