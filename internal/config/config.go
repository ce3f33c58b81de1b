package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Model     ModelConfig     `yaml:"model"`
	Predictor PredictorConfig `yaml:"predictor"`
	Report    ReportConfig    `yaml:"report"`
	Log       LogConfig       `yaml:"log"`
}

// DataConfig holds the historical data source
type DataConfig struct {
	File string `yaml:"file" default:"output_data/historical_data.txt" validate:"required"`
}

// ModelConfig holds training settings
type ModelConfig struct {
	// FlatEpsilon treats close-to-close changes within +/- epsilon as FLAT.
	// Zero keeps strict equality.
	FlatEpsilon float64 `yaml:"flat_epsilon" default:"0" validate:"gte=0"`
}

// PredictorConfig holds prediction settings
type PredictorConfig struct {
	MinDayCandles       int     `yaml:"min_day_candles" default:"10" validate:"gte=3"`
	HighVolatilityPct   float64 `yaml:"high_volatility_pct" default:"2.0" validate:"gtfield=MediumVolatilityPct"`
	MediumVolatilityPct float64 `yaml:"medium_volatility_pct" default:"1.0" validate:"gt=0"`
}

// ReportConfig holds transcript output settings
type ReportConfig struct {
	Dir string `yaml:"dir" default:"results" validate:"required"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

var validate = validator.New()

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Tags are static, so this only fires on a programming error.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Use defaults if file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Override with environment variables if set
	if v := os.Getenv("MARKOV_DATA_FILE"); v != "" {
		cfg.Data.File = v
	}
	if v := os.Getenv("MARKOV_RESULTS_DIR"); v != "" {
		cfg.Report.Dir = v
	}
	if v := os.Getenv("MARKOV_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
