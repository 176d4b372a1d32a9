// Package config loads the YAML configuration for the insight CLI and
// engine. Missing fields fall back to defaults; invalid values fail fast at
// load time.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	} `yaml:"log"`
	Forecast struct {
		HorizonMonths int `yaml:"horizon_months" default:"6" validate:"gte=1,lte=24"`
	} `yaml:"forecast"`
	CashFlow struct {
		HorizonMonths   int     `yaml:"horizon_months" default:"6" validate:"gte=1,lte=24"`
		StartingBalance float64 `yaml:"starting_balance" validate:"gte=0"`
	} `yaml:"cash_flow"`
	Clients struct {
		InactivityDays int `yaml:"inactivity_days" default:"90" validate:"gte=1"`
	} `yaml:"clients"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file, fills defaults and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}
