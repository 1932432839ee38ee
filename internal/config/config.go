// Package config loads and validates the project release configuration and
// sources the GitHub credential.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file name looked up in the repository
// root.
const DefaultFile = ".releaserc.yaml"

var ErrMissingToken = errors.New("GITHUB_TOKEN is not set")

type Config struct {
	Project ProjectConfig `yaml:"project" validate:"required"`
	Release ReleaseConfig `yaml:"release" validate:"required"`
}

type ProjectConfig struct {
	Type           string   `yaml:"type" validate:"required,oneof=monorepo single-package"`
	Environment    string   `yaml:"environment" validate:"required,oneof=nodejs python"`
	PackageManager string   `yaml:"package_manager"`
	Workspaces     []string `yaml:"workspaces" validate:"min=1"`
	Version        string   `yaml:"version" validate:"required"`
}

type ReleaseConfig struct {
	Strategy             string `yaml:"strategy" validate:"required,oneof=auto manual"`
	VersioningStrategy   string `yaml:"versioning_strategy" validate:"required,oneof=fixed independent"`
	PreReleaseIdentifier string `yaml:"pre_release_identifier"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return &cfg, nil
}

// Default is the starter configuration written by the init command.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Type:           "single-package",
			Environment:    "nodejs",
			PackageManager: "npm",
			Workspaces:     []string{"."},
			Version:        "0.1.0",
		},
		Release: ReleaseConfig{
			Strategy:           "auto",
			VersioningStrategy: "fixed",
		},
	}
}

// LoadToken returns the GitHub access token from the environment, loading a
// .env file first when one exists next to the working directory.
func LoadToken() (string, error) {
	_ = godotenv.Load()

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}
