// Package config loads the service configuration: defaults, then an
// optional YAML file, then MATHSOLVER_* environment overrides, then
// validation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/mathsolver/adapter"
	"github.com/njchilds90/mathsolver/symbolic"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Graph      GraphConfig      `yaml:"graph"`
	Solve      SolveConfig      `yaml:"solve"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,listenaddr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins" validate:"dive,url"`
}

type LogConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Encoding string `yaml:"encoding" validate:"oneof=json console"`
}

type ClassifierConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
}

// GraphConfig is the sampling window for graphed responses.
type GraphConfig struct {
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max" validate:"gtfield=Min"`
	Intervals int     `yaml:"intervals" validate:"gt=0,lte=10000"`
}

type SolveConfig struct {
	SearchRange float64 `yaml:"search_range" validate:"gt=0"`
	Tolerance   float64 `yaml:"tolerance" validate:"gt=0"`
	MaxIter     int     `yaml:"max_iter" validate:"gt=0"`
}

// Default returns the configuration used when no file or environment
// override is given.
func Default() Config {
	so := symbolic.DefaultSolveOptions()
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
				"http://localhost:5174",
				"http://127.0.0.1:5174",
			},
		},
		Log:        LogConfig{Level: "info", Encoding: "json"},
		Classifier: ClassifierConfig{Enabled: true, Path: "models/classifier.json"},
		Graph:      GraphConfig{Min: -5, Max: 5, Intervals: 400},
		Solve:      SolveConfig{SearchRange: so.SearchRange, Tolerance: so.Tolerance, MaxIter: so.MaxIter},
	}
}

// Environment variables read by Load.
const (
	EnvAddr              = "MATHSOLVER_ADDR"
	EnvLogLevel          = "MATHSOLVER_LOG_LEVEL"
	EnvClassifierPath    = "MATHSOLVER_CLASSIFIER_PATH"
	EnvClassifierEnabled = "MATHSOLVER_CLASSIFIER_ENABLED"
)

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. Unknown keys in the file are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvClassifierPath); ok {
		c.Classifier.Path = v
	}
	if v, ok := lookup(EnvClassifierEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvClassifierEnabled, err)
		}
		c.Classifier.Enabled = b
	}
	return nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("listenaddr", func(fl validator.FieldLevel) bool {
		_, port, err := net.SplitHostPort(fl.Field().String())
		if err != nil {
			return false
		}
		n, err := strconv.Atoi(port)
		return err == nil && n >= 0 && n <= 65535
	})
	return v
}()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Adapter converts the graph and solve sections into adapter options.
func (c Config) Adapter() adapter.Config {
	return adapter.Config{
		GraphMin:       c.Graph.Min,
		GraphMax:       c.Graph.Max,
		GraphIntervals: c.Graph.Intervals,
		Solve: symbolic.SolveOptions{
			SearchRange: c.Solve.SearchRange,
			Tolerance:   c.Solve.Tolerance,
			MaxIter:     c.Solve.MaxIter,
		},
	}
}
