package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dendrascience/wfs/disk"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const envVarPrefix = "WFS"

// Config holds the settings shared by every subcommand. Values are layered:
// defaults, then the YAML file, then WFS_* environment variables, then
// command-line flags.
type Config struct {
	LogLevel   string `envconfig:"LOG_LEVEL"   yaml:"log_level"`
	AllowOther bool   `envconfig:"ALLOW_OTHER" yaml:"allow_other"`
	FSName     string `envconfig:"FS_NAME"     yaml:"fs_name"`
	GrowChunk  int64  `envconfig:"GROW_CHUNK"  yaml:"grow_chunk"`
	ReadOnly   bool   `envconfig:"READ_ONLY"   yaml:"read_only"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		FSName:    "wfs",
		GrowChunk: disk.DefaultGrowChunk,
	}
}

// LoadConfig reads the YAML file at path, if path is not empty, over the
// defaults and then applies the environment.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("unmarshaling config file %s: %w", path, err)
		}
	}
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("parsing environment variables: %w", err)
	}
	return c, nil
}

// ApplyFlags overrides c with every flag the user set explicitly. Flags a
// command does not define are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	if changed(flags, "log-level") {
		if c.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	if changed(flags, "allow-other") {
		if c.AllowOther, err = flags.GetBool("allow-other"); err != nil {
			return err
		}
	}
	if changed(flags, "fs-name") {
		if c.FSName, err = flags.GetString("fs-name"); err != nil {
			return err
		}
	}
	if changed(flags, "grow-chunk") {
		if c.GrowChunk, err = flags.GetInt64("grow-chunk"); err != nil {
			return err
		}
	}
	if changed(flags, "read-only") {
		if c.ReadOnly, err = flags.GetBool("read-only"); err != nil {
			return err
		}
	}
	return nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level / %s_LOG_LEVEL: %w", envVarPrefix, err)
	}
	if c.GrowChunk <= 0 {
		return fmt.Errorf("grow_chunk / %s_GROW_CHUNK must be positive, got %d", envVarPrefix, c.GrowChunk)
	}
	if c.FSName == "" {
		return fmt.Errorf("fs_name / %s_FS_NAME must not be empty", envVarPrefix)
	}
	return nil
}

// configureLogging applies the configured level to the standard logger.
func configureLogging(c Config) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
