package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "sheetclean/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
// Only GOOGLE_CREDENTIALS_JSON, SHEET_ID and STUDENT_NUMBER are also looked up
// without the prefix.
const EnvPrefix = "SHEETCLEAN"

// ConfigFileEnv names the variable pointing at an optional YAML config file.
const ConfigFileEnv = "SHEETCLEAN_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Spreadsheet SpreadsheetConfig `yaml:"remote" envconfig:"REMOTE"`
	Generator   GeneratorConfig   `yaml:"generator" envconfig:"GENERATOR"`
	Paths       PathsConfig       `yaml:"paths" envconfig:"PATHS"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// SpreadsheetConfig holds the raw spreadsheet settings. Use Config.Remote to
// get the resolved Configured/Unconfigured value.
type SpreadsheetConfig struct {
	Credentials string `yaml:"credentials" envconfig:"GOOGLE_CREDENTIALS_JSON"`
	SheetID     string `yaml:"sheet_id" envconfig:"SHEET_ID"`
}

// GeneratorConfig controls the external data-generation step
type GeneratorConfig struct {
	Enabled       bool   `yaml:"enabled" split_words:"true"`
	Command       string `yaml:"command" split_words:"true" validate:"required_if=Enabled true"`
	Script        string `yaml:"script" split_words:"true" validate:"required_if=Enabled true"`
	StudentNumber int    `yaml:"student_number" envconfig:"STUDENT_NUMBER" validate:"gte=0"`
	Dir           string `yaml:"dir" split_words:"true"`
}

// OutputFile returns the file the generator writes for the configured student number
func (g GeneratorConfig) OutputFile() string {
	return fmt.Sprintf("data_student_%d.csv", g.StudentNumber)
}

// PathsConfig contains the local files read and written by a run
type PathsConfig struct {
	Input      string `yaml:"input" split_words:"true" validate:"required"`
	Output     string `yaml:"output" split_words:"true" validate:"required"`
	Report     string `yaml:"report" split_words:"true" validate:"required"`
	XLSXOutput string `yaml:"xlsx_output" split_words:"true"`
	Metrics    string `yaml:"metrics" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" split_words:"true" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" split_words:"true" validate:"oneof=none stdout"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads variables from .env files without overriding ones already
// set in the process environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return apperrors.NewConfigError("failed to load env file", err).WithContext("file", file)
		}
	}
	return nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewValidationError("config validation failed", err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file, or "" when there is none
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"sheetclean.yaml",
		"configs/sheetclean.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Enabled:       false,
			Command:       "python",
			Script:        "generator_danych.py",
			StudentNumber: 28192,
		},
		Paths: PathsConfig{
			Input:  "data.csv",
			Output: "cleaned_data.csv",
			Report: "report.txt",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "log.txt",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "sheetclean",
			TraceExporter: "none",
		},
	}
}
