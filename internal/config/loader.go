package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	envConfigFile = "DASHBOARD_CONFIG"
	envEnvFile    = "DASHBOARD_ENV_FILE"
)

// Config captures configuration values for the dashboard service and CLI.
type Config struct {
	HTTPPort         int    `yaml:"http_port" env:"DASHBOARD_HTTP_PORT" validate:"min=1,max=65535"`
	DataDir          string `yaml:"data_dir" env:"DASHBOARD_DATA_DIR" validate:"required"`
	Timezone         string `yaml:"timezone" env:"DASHBOARD_TIMEZONE" validate:"required,tzname"`
	TimelineDays     int    `yaml:"timeline_days" env:"DASHBOARD_TIMELINE_DAYS" validate:"min=1,ltefield=MaxTimelineDays"`
	MaxTimelineDays  int    `yaml:"max_timeline_days" env:"DASHBOARD_MAX_TIMELINE_DAYS" validate:"min=1,max=366"`
	RolloverCron     string `yaml:"rollover_cron" env:"DASHBOARD_ROLLOVER_CRON" validate:"omitempty,cronspec"`
	ActivityLogLimit int    `yaml:"activity_log_limit" env:"DASHBOARD_ACTIVITY_LOG_LIMIT" validate:"min=0"`
	LogLevel         string `yaml:"log_level" env:"DASHBOARD_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat        string `yaml:"log_format" env:"DASHBOARD_LOG_FORMAT" validate:"omitempty,oneof=json text"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		HTTPPort:         8080,
		DataDir:          "./data",
		Timezone:         "Local",
		TimelineDays:     7,
		MaxTimelineDays:  62,
		RolloverCron:     "5 0 * * *",
		ActivityLogLimit: 5000,
		LogLevel:         "info",
		LogFormat:        "json",
	}
}

// Location resolves Timezone. "Local" maps to the process time zone.
func (c Config) Location() (*time.Location, error) {
	return loadLocation(c.Timezone)
}

// Load builds the configuration from defaults, an optional .env file named by
// DASHBOARD_ENV_FILE, an optional YAML file named by DASHBOARD_CONFIG and
// finally the process environment. Later layers win.
func Load() (Config, error) {
	if envFile := strings.TrimSpace(os.Getenv(envEnvFile)); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)
	intVar := func(key string, target *int) {
		raw, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(raw) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			invalid = append(invalid, key)
			return
		}
		*target = n
	}
	stringVar := func(key string, target *string) {
		if raw, ok := os.LookupEnv(key); ok {
			*target = strings.TrimSpace(raw)
		}
	}

	intVar("DASHBOARD_HTTP_PORT", &cfg.HTTPPort)
	stringVar("DASHBOARD_DATA_DIR", &cfg.DataDir)
	stringVar("DASHBOARD_TIMEZONE", &cfg.Timezone)
	intVar("DASHBOARD_TIMELINE_DAYS", &cfg.TimelineDays)
	intVar("DASHBOARD_MAX_TIMELINE_DAYS", &cfg.MaxTimelineDays)
	stringVar("DASHBOARD_ROLLOVER_CRON", &cfg.RolloverCron)
	intVar("DASHBOARD_ACTIVITY_LOG_LIMIT", &cfg.ActivityLogLimit)
	stringVar("DASHBOARD_LOG_LEVEL", &cfg.LogLevel)
	stringVar("DASHBOARD_LOG_FORMAT", &cfg.LogFormat)

	missing, badValues := Validate(cfg)
	invalid = appendUnique(invalid, badValues...)

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration values are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("configuration values are invalid: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Validate checks cfg and returns the environment variable names of missing
// and invalid values.
func Validate(cfg Config) (missing, invalid []string) {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, []string{err.Error()}
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = appendUnique(missing, fe.Field())
			continue
		}
		invalid = appendUnique(invalid, fe.Field())
	}
	return missing, invalid
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("tzname", func(fl validator.FieldLevel) bool {
		_, err := loadLocation(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	return v
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func appendUnique(list []string, values ...string) []string {
	for _, value := range values {
		found := false
		for _, existing := range list {
			if existing == value {
				found = true
				break
			}
		}
		if !found {
			list = append(list, value)
		}
	}
	return list
}
