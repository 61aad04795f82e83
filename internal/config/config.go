package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMonthlyLeaveQuota = 60
	DefaultRefreshTimeout    = 15 * time.Second
	DefaultHTTPAddr          = ":8080"
	DefaultLogDir            = "logs"
	DefaultPersonnelTab      = "Efetivo"
)

var DefaultAdminTeams = []string{"ALFA", "BRAVO", "CHARLIE"}

// HolidayRule is a recurring holiday expanded per year into the holiday calendar
type HolidayRule struct {
	Name  string `yaml:"name" validate:"required"`
	RRule string `yaml:"rrule" validate:"required"`
	// Optional marks the rule as a ponto facultativo rather than a holiday
	Optional bool `yaml:"optional,omitempty"`
}

// RotationStart is a static fallback for the team on duty on January 1
type RotationStart struct {
	Unit string `yaml:"unit" validate:"required"`
	Year int    `yaml:"year" validate:"required,min=1"`
	Team string `yaml:"team" validate:"required"`
}

// SheetsConfig locates the Google spreadsheet used for publishing and the personnel registry
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID"`
	PersonnelTab  string `yaml:"personnelTab,omitempty"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL        string          `yaml:"databaseURL" validate:"required"`
	RedisAddr          string          `yaml:"redisAddr,omitempty" validate:"omitempty,hostname_port"`
	RedisPassword      string          `yaml:"redisPassword,omitempty"`
	RedisDB            int             `yaml:"redisDB,omitempty" validate:"min=0"`
	MonthlyLeaveQuota  int             `yaml:"monthlyLeaveQuota,omitempty" validate:"min=0"`
	RefreshTimeout     time.Duration   `yaml:"refreshTimeout,omitempty" validate:"min=0"`
	HTTPAddr           string          `yaml:"httpAddr,omitempty"`
	AllowedOrigins     []string        `yaml:"allowedOrigins,omitempty"`
	LogDir             string          `yaml:"logDir,omitempty"`
	AdminTeams         []string        `yaml:"adminTeams,omitempty" validate:"omitempty,min=1,dive,required"`
	ExtraHolidays      []string        `yaml:"extraHolidays,omitempty" validate:"dive,datetime=2006-01-02"`
	PontosFacultativos []string        `yaml:"pontosFacultativos,omitempty" validate:"dive,datetime=2006-01-02"`
	HolidayRules       []HolidayRule   `yaml:"holidayRules,omitempty" validate:"dive"`
	RotationStarts     []RotationStart `yaml:"rotationStarts,omitempty" validate:"dive"`
	Sheets             SheetsConfig    `yaml:"sheets,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from escala_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" looks for "escala_config.test.yaml" before "escala_config.yaml".
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findFile("escala_config", ".yaml", env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.HolidayRules {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.MonthlyLeaveQuota == 0 {
		c.MonthlyLeaveQuota = DefaultMonthlyLeaveQuota
	}
	if c.RefreshTimeout == 0 {
		c.RefreshTimeout = DefaultRefreshTimeout
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir
	}
	if len(c.AdminTeams) == 0 {
		c.AdminTeams = append([]string(nil), DefaultAdminTeams...)
	}
	if c.Sheets.PersonnelTab == "" {
		c.Sheets.PersonnelTab = DefaultPersonnelTab
	}
}

// findFile looks for <base><ext> in the current directory, then in the home directory.
// With env set, <base>.<env><ext> wins over the plain name in the same directory.
func findFile(base, ext, env string) (string, error) {
	names := []string{base + ext}
	if env != "" {
		names = append([]string{base + "." + env + ext}, names...)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, dir := range []string{".", homeDir} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", names[0])
}
