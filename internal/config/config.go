// Package config loads the composition settings from YAML, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds everything one composition needs. GameVersion and
// IntermediaryFile normally come from the hosting build.
type Config struct {
	// Coordinate is the quilt-mappings artifact, group:artifact:version.
	Coordinate string `yaml:"coordinate"`
	// Snapshot selects the snapshot channel for the hashed artifact.
	Snapshot         bool   `yaml:"snapshot,omitempty"`
	GameVersion      string `yaml:"game_version"`
	IntermediaryFile string `yaml:"intermediary_file"`
	CacheRoot        string `yaml:"cache_root"`
	// Repository is the root of a local maven-layout artifact directory.
	Repository string `yaml:"repository,omitempty"`
	LogLevel   string `yaml:"log_level,omitempty"`
}

// Environment variables overriding file settings.
const (
	EnvCoordinate       = "QM_COORDINATE"
	EnvSnapshot         = "QM_SNAPSHOT"
	EnvGameVersion      = "QM_GAME_VERSION"
	EnvIntermediaryFile = "QM_INTERMEDIARY_FILE"
	EnvCacheRoot        = "QM_CACHE_ROOT"
	EnvRepository       = "QM_REPOSITORY"
	EnvLogLevel         = "QM_LOG_LEVEL"
)

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a Config with only defaults set.
func Default() *Config {
	var cfg Config

	applyDefaults(&cfg)

	return &cfg
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.CacheRoot == "" {
		cfg.CacheRoot = defaultCacheRoot()
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = logrus.InfoLevel.String()
	}
}

func defaultCacheRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", "qm-layer")
	}

	return filepath.Join(dir, "qm-layer")
}

// LoadEnv reads the given .env files, if present, into the process
// environment and then applies QM_* overrides to cfg. With no files it
// tries ".env" in the working directory.
func LoadEnv(cfg *Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	overrideString(&cfg.Coordinate, EnvCoordinate)
	overrideString(&cfg.GameVersion, EnvGameVersion)
	overrideString(&cfg.IntermediaryFile, EnvIntermediaryFile)
	overrideString(&cfg.CacheRoot, EnvCacheRoot)
	overrideString(&cfg.Repository, EnvRepository)
	overrideString(&cfg.LogLevel, EnvLogLevel)

	if raw := strings.TrimSpace(os.Getenv(EnvSnapshot)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSnapshot, raw, err)
		}

		cfg.Snapshot = v
	}

	return nil
}

func overrideString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks that all required settings are present.
func (c *Config) Validate() error {
	var errs []error

	if c.Coordinate == "" {
		errs = append(errs, errors.New("coordinate is required"))
	} else if parts := strings.Split(c.Coordinate, ":"); len(parts) < 3 || slices.Contains(parts, "") {
		errs = append(errs, fmt.Errorf("coordinate %q is not group:artifact:version", c.Coordinate))
	}

	if c.GameVersion == "" {
		errs = append(errs, errors.New("game_version is required"))
	}

	if c.IntermediaryFile == "" {
		errs = append(errs, errors.New("intermediary_file is required"))
	}

	if c.CacheRoot == "" {
		errs = append(errs, errors.New("cache_root is required"))
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
