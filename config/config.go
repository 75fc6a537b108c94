// Package config loads the rate tables, category mapping and thresholds that
// drive the sync services.
package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"projectsync/standards"
)

// KeywordRule maps any category containing one of Keywords to Activity.
type KeywordRule struct {
	Activity standards.Activity `yaml:"activity"`
	Keywords []string           `yaml:"keywords"`
}

// Config is the full runtime configuration. Zero-valued fields in a loaded
// file keep their defaults.
type Config struct {
	Currency             string                        `yaml:"currency"`
	LaborRates           standards.LaborRates          `yaml:"labor_rates"`
	EquipmentRates       map[string]float64            `yaml:"equipment_rates"`
	DefaultEquipmentRate float64                       `yaml:"default_equipment_rate"`
	OverheadPercent      float64                       `yaml:"overhead_percent"`
	ContingencyPercent   float64                       `yaml:"contingency_percent"`
	DefaultActivity      standards.Activity            `yaml:"default_activity"`
	Categories           map[string]standards.Activity `yaml:"categories"`
	KeywordRules         []KeywordRule                 `yaml:"keyword_rules"`
	AutoApproveMaxDelay  int                           `yaml:"auto_approve_max_delay_days"`
	SyncWorkers          int                           `yaml:"sync_workers"`
	ResyncSchedule       string                        `yaml:"resync_schedule"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Currency:   "SAR",
		LaborRates: standards.DefaultLaborRates,
		EquipmentRates: map[string]float64{
			"concrete pump":       1500,
			"transit mixer":       800,
			"poker vibrator":      100,
			"bar bending machine": 250,
			"bar cutting machine": 200,
			"scaffolding":         150,
			"circular saw":        80,
			"mortar mixer":        200,
		},
		DefaultEquipmentRate: 500,
		OverheadPercent:      10,
		ContingencyPercent:   5,
		DefaultActivity:      standards.ActivityConcrete,
		Categories: map[string]standards.Activity{
			"concrete":       standards.ActivityConcrete,
			"concrete works": standards.ActivityConcrete,
			"أعمال خرسانية":  standards.ActivityConcrete,
			"خرسانة":         standards.ActivityConcrete,
			"steel":          standards.ActivitySteel,
			"reinforcement":  standards.ActivitySteel,
			"حديد التسليح":   standards.ActivitySteel,
			"formwork":       standards.ActivityFormwork,
			"أعمال الشدات":   standards.ActivityFormwork,
			"blockwork":      standards.ActivityBlockwork,
			"أعمال البلوك":   standards.ActivityBlockwork,
			"plastering":     standards.ActivityPlastering,
			"أعمال اللياسة":  standards.ActivityPlastering,
		},
		KeywordRules: []KeywordRule{
			{Activity: standards.ActivityConcrete, Keywords: []string{"خرسان", "concrete"}},
			{Activity: standards.ActivitySteel, Keywords: []string{"حديد", "تسليح", "steel", "rebar"}},
			{Activity: standards.ActivityFormwork, Keywords: []string{"شدات", "نجارة", "formwork", "shuttering"}},
			{Activity: standards.ActivityBlockwork, Keywords: []string{"بلوك", "مباني", "block", "masonry"}},
			{Activity: standards.ActivityPlastering, Keywords: []string{"لياسة", "بياض", "plaster"}},
		},
		AutoApproveMaxDelay: 1,
		SyncWorkers:         4,
		ResyncSchedule:      "0 2 * * *",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// EquipmentRate returns the day rate for an equipment type, falling back to
// DefaultEquipmentRate.
func (c Config) EquipmentRate(equipmentType string) float64 {
	if rate, ok := c.EquipmentRates[equipmentType]; ok {
		return rate
	}
	return c.DefaultEquipmentRate
}

// Validate checks the configuration for values the services cannot use.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Currency, validation.Required),
		validation.Field(&c.LaborRates, validation.By(nonNegativeLaborRates)),
		validation.Field(&c.EquipmentRates, validation.Each(validation.Min(0.0))),
		validation.Field(&c.DefaultEquipmentRate, validation.Min(0.0)),
		validation.Field(&c.OverheadPercent, validation.Min(0.0)),
		validation.Field(&c.ContingencyPercent, validation.Min(0.0)),
		validation.Field(&c.DefaultActivity, validation.Required, validation.By(knownActivity)),
		validation.Field(&c.Categories, validation.Each(validation.By(knownActivity))),
		validation.Field(&c.KeywordRules, validation.Each(validation.By(validKeywordRule))),
		validation.Field(&c.AutoApproveMaxDelay, validation.Min(0)),
		validation.Field(&c.SyncWorkers, validation.Required, validation.Min(1)),
	)
}

func knownActivity(value interface{}) error {
	activity, _ := value.(standards.Activity)
	if !activity.IsKnown() {
		return fmt.Errorf("unknown activity %q", activity)
	}
	return nil
}

func validKeywordRule(value interface{}) error {
	rule, _ := value.(KeywordRule)
	if err := knownActivity(rule.Activity); err != nil {
		return err
	}
	if len(rule.Keywords) == 0 {
		return fmt.Errorf("rule for %q has no keywords", rule.Activity)
	}
	return nil
}

func nonNegativeLaborRates(value interface{}) error {
	rates, _ := value.(standards.LaborRates)
	if rates.Skilled < 0 || rates.Unskilled < 0 || rates.Supervisor < 0 {
		return fmt.Errorf("labor rates must not be negative")
	}
	return nil
}
