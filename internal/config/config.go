package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ssmixtwins/ssmixtwins/internal/ssmix"
	"github.com/ssmixtwins/ssmixtwins/internal/timeline"
)

// Config holds one generation run's settings. Values come from
// environment variables or an optional .env file; command line flags
// override both.
type Config struct {
	SourceDir  string `mapstructure:"SOURCE_DIR"`
	OutputDir  string `mapstructure:"OUTPUT_DIR"`
	Encoding   string `mapstructure:"ENCODING"`
	Workers    int    `mapstructure:"WORKERS"`
	Seed       int64  `mapstructure:"SEED"`
	Physicians int    `mapstructure:"PHYSICIANS"`
	PoolsFile  string `mapstructure:"POOLS_FILE"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	VisitReassignChance     float64 `mapstructure:"VISIT_REASSIGN_CHANCE"`
	AdmissionReassignChance float64 `mapstructure:"ADMISSION_REASSIGN_CHANCE"`
	PrimaryRequesterBias    float64 `mapstructure:"PRIMARY_REQUESTER_BIAS"`
	VisitLeadMinMinutes     int     `mapstructure:"VISIT_LEAD_MIN_MINUTES"`
	VisitLeadMaxMinutes     int     `mapstructure:"VISIT_LEAD_MAX_MINUTES"`
	FragmentMinComponents   int     `mapstructure:"FRAGMENT_MIN_COMPONENTS"`
	FragmentDivisor         int     `mapstructure:"FRAGMENT_DIVISOR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	def := timeline.DefaultPolicy()

	// Defaults
	v.SetDefault("ENCODING", string(ssmix.EncodingISO2022JP))
	v.SetDefault("WORKERS", 1)
	v.SetDefault("SEED", 1)
	v.SetDefault("PHYSICIANS", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VISIT_REASSIGN_CHANCE", def.VisitReassignChance)
	v.SetDefault("ADMISSION_REASSIGN_CHANCE", def.AdmissionReassignChance)
	v.SetDefault("PRIMARY_REQUESTER_BIAS", def.PrimaryRequesterBias)
	v.SetDefault("VISIT_LEAD_MIN_MINUTES", def.VisitLeadMinMinutes)
	v.SetDefault("VISIT_LEAD_MAX_MINUTES", def.VisitLeadMaxMinutes)
	v.SetDefault("FRAGMENT_MIN_COMPONENTS", def.FragmentMinComponents)
	v.SetDefault("FRAGMENT_DIVISOR", def.FragmentDivisor)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("SOURCE_DIR")
	v.BindEnv("OUTPUT_DIR")
	v.BindEnv("ENCODING")
	v.BindEnv("WORKERS")
	v.BindEnv("SEED")
	v.BindEnv("PHYSICIANS")
	v.BindEnv("POOLS_FILE")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("VISIT_REASSIGN_CHANCE")
	v.BindEnv("ADMISSION_REASSIGN_CHANCE")
	v.BindEnv("PRIMARY_REQUESTER_BIAS")
	v.BindEnv("VISIT_LEAD_MIN_MINUTES")
	v.BindEnv("VISIT_LEAD_MAX_MINUTES")
	v.BindEnv("FRAGMENT_MIN_COMPONENTS")
	v.BindEnv("FRAGMENT_DIVISOR")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Policy builds the replay policy from the configured knobs.
func (c *Config) Policy() timeline.Policy {
	return timeline.Policy{
		VisitReassignChance:     c.VisitReassignChance,
		AdmissionReassignChance: c.AdmissionReassignChance,
		PrimaryRequesterBias:    c.PrimaryRequesterBias,
		VisitLeadMinMinutes:     c.VisitLeadMinMinutes,
		VisitLeadMaxMinutes:     c.VisitLeadMaxMinutes,
		FragmentMinComponents:   c.FragmentMinComponents,
		FragmentDivisor:         c.FragmentDivisor,
	}
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("SOURCE_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if _, err := ssmix.ParseEncoding(c.Encoding); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.Physicians < 1 {
		return fmt.Errorf("PHYSICIANS must be at least 1, got %d", c.Physicians)
	}
	if c.VisitReassignChance < 0 || c.VisitReassignChance > 1 {
		return fmt.Errorf("VISIT_REASSIGN_CHANCE must be in [0, 1], got %g", c.VisitReassignChance)
	}
	if c.AdmissionReassignChance < 0 || c.AdmissionReassignChance > 1 {
		return fmt.Errorf("ADMISSION_REASSIGN_CHANCE must be in [0, 1], got %g", c.AdmissionReassignChance)
	}
	if c.PrimaryRequesterBias < 0 || c.PrimaryRequesterBias > 1 {
		return fmt.Errorf("PRIMARY_REQUESTER_BIAS must be in [0, 1], got %g", c.PrimaryRequesterBias)
	}
	if c.VisitLeadMinMinutes < 0 || c.VisitLeadMaxMinutes <= c.VisitLeadMinMinutes {
		return fmt.Errorf("visit lead window %d-%d minutes is not a valid range",
			c.VisitLeadMinMinutes, c.VisitLeadMaxMinutes)
	}
	if c.FragmentMinComponents < 1 {
		return fmt.Errorf("FRAGMENT_MIN_COMPONENTS must be at least 1, got %d", c.FragmentMinComponents)
	}
	if c.FragmentDivisor < 1 {
		return fmt.Errorf("FRAGMENT_DIVISOR must be at least 1, got %d", c.FragmentDivisor)
	}
	return nil
}
