package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "HISTORYCAL_CONFIG"
	databaseDSNEnv  = "DATABASE_DSN"
	googleCredsEnv  = "GOOGLE_CREDENTIALS_FILE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Storage   StorageConfig   `yaml:"storage"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when cycles run. When a cron expression is
// set it wins over the fixed interval.
type SchedulerConfig struct {
	Interval       time.Duration  `yaml:"interval"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// StorageConfig selects where delivered-ID state lives: a directory of
// JSON files by default, or Postgres when a DSN is set.
type StorageConfig struct {
	Dir string `yaml:"dir"`
	DSN string `yaml:"dsn"`
}

// CalendarConfig wires the delivery sink.
type CalendarConfig struct {
	CredentialsFile   string `yaml:"credentialsFile"`
	DefaultCalendarID string `yaml:"defaultCalendarId"`
	DryRun            bool   `yaml:"dryRun"`
}

// SourceConfig describes one history provider instance.
type SourceConfig struct {
	Name       string            `yaml:"name"`
	URL        string            `yaml:"url"`
	CalendarID string            `yaml:"calendarId"`
	Headers    map[string]string `yaml:"headers"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(googleCredsEnv); v != "" {
		c.Calendar.CredentialsFile = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Scheduler.Interval != 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Storage.Dir != "" {
		base.Storage.Dir = override.Storage.Dir
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.Calendar.CredentialsFile != "" {
		base.Calendar.CredentialsFile = override.Calendar.CredentialsFile
	}
	if override.Calendar.DefaultCalendarID != "" {
		base.Calendar.DefaultCalendarID = override.Calendar.DefaultCalendarID
	}
	if override.Calendar.DryRun {
		base.Calendar.DryRun = true
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Interval: time.Hour, Timezone: defaultTimezone, location: tz},
		Storage:   StorageConfig{Dir: "state"},
		Calendar:  CalendarConfig{DefaultCalendarID: "primary"},
		Sources:   nil,
	}
}
