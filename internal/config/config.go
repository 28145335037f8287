// Package config loads and validates run configuration for the qkdnet CLI.
// The qubit and scenario bounds here are boundary-layer limits for
// interactive runs; the core packages accept any positive counts.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pzverkov/qkdnet/internal/constants"
	"github.com/pzverkov/qkdnet/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is a full run configuration.
type Config struct {
	// NumQubits per link.
	NumQubits int `yaml:"numQubits" validate:"min=1,max=20"`

	// NumScenarios in a random batch.
	NumScenarios int `yaml:"numScenarios" validate:"min=1,max=10"`

	// NumReceivers in the simulated network.
	NumReceivers int `yaml:"numReceivers" validate:"min=1"`

	// Seed for reproducible runs. Zero draws a fresh entropy seed.
	Seed uint64 `yaml:"seed"`

	// Threshold is the QBER security threshold in percent. Zero selects
	// the standard 11%.
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=100"`

	// LogLevel and LogFormat configure the logger.
	LogLevel  string `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error silent"`
	LogFormat string `yaml:"logFormat" validate:"omitempty,oneof=text json"`

	// MetricsAddr, when set, serves Prometheus metrics on that address
	// for the duration of the run.
	MetricsAddr string `yaml:"metricsAddr"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		NumQubits:    constants.DefaultNumQubits,
		NumScenarios: constants.DefaultNumScenarios,
		NumReceivers: len(constants.DefaultReceivers),
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	ves, ok := err.(validator.ValidationErrors)
	if !ok || len(ves) == 0 {
		return err
	}

	// Surface the first violation as a typed configuration error so
	// callers can match the offending parameter.
	ve := ves[0]
	switch ve.StructField() {
	case "NumQubits":
		return errors.NewConfigError("numQubits", c.NumQubits, errors.ErrInvalidQubitCount)
	case "NumScenarios":
		return errors.NewConfigError("numScenarios", c.NumScenarios, errors.ErrInvalidScenarioCount)
	case "NumReceivers":
		return errors.NewConfigError("numReceivers", c.NumReceivers, errors.ErrNoReceivers)
	case "Threshold":
		return errors.NewConfigError("threshold", c.Threshold, errors.ErrInvalidThreshold)
	default:
		return errors.NewConfigError(ve.StructField(), ve.Value(), fmt.Errorf("failed %q validation", ve.Tag()))
	}
}
