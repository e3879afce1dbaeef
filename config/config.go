// Package config loads the §6.3 YAML configuration controlling lot
// ordering strategy, wash-sale enforcement, and reporting scope.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gocryptotax/taxlots/lot"
)

const dateLayout = "2006/01/02"

// Config is the resolved §6.3 option set.
type Config struct {
	OrderingStrategy lot.Strategy
	WashRule         bool
	StartDate        *time.Time
	EndDate          *time.Time
	FilingYears      []int
	DefaultFiat      string
}

// rawConfig mirrors the on-disk YAML shape before strategy/date parsing.
type rawConfig struct {
	OrderingStrategy string `yaml:"ordering_strategy"`
	WashRule         *bool  `yaml:"wash_rule"`
	StartDate        string `yaml:"start_date"`
	EndDate          string `yaml:"end_date"`
	FilingYears      []int  `yaml:"filing_years"`
	DefaultFiat      string `yaml:"default_fiat"`
}

// Load reads a §6.3 configuration document from path. Unset keys take the
// same permissive defaults the source's read_config applies:
// ordering_strategy defaults to FIFO, wash_rule defaults to true.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg := Config{
		OrderingStrategy: lot.FIFO,
		WashRule:         true,
		DefaultFiat:      "USD",
		FilingYears:      raw.FilingYears,
	}
	if raw.OrderingStrategy != "" {
		strategy, err := lot.StrategyFromString(raw.OrderingStrategy)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.OrderingStrategy = strategy
	}
	if raw.WashRule != nil {
		cfg.WashRule = *raw.WashRule
	}
	if raw.DefaultFiat != "" {
		cfg.DefaultFiat = raw.DefaultFiat
	}
	if raw.StartDate != "" {
		t, err := time.Parse(dateLayout, raw.StartDate)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: unparsable start_date %q", path, raw.StartDate)
		}
		cfg.StartDate = &t
	}
	if raw.EndDate != "" {
		t, err := time.Parse(dateLayout, raw.EndDate)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: unparsable end_date %q", path, raw.EndDate)
		}
		cfg.EndDate = &t
	}

	return cfg, nil
}
