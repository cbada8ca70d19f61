// Package config loads the run configuration of the ybus command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-ybus/pkg/matrix"
	"github.com/edp1096/toy-ybus/pkg/system"
)

type Config struct {
	Reuse       string `yaml:"reuse" validate:"reusetier"`
	Format      string `yaml:"format" validate:"omitempty,oneof=complex real"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Zones       int    `yaml:"zones" validate:"gte=0,lte=4096"`
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,listenaddr"`
	Plot        string `yaml:"plot" validate:"omitempty,endswith=.png|endswith=.svg|endswith=.pdf"`
	Concurrency int    `yaml:"concurrency" validate:"gte=1,lte=256"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("reusetier", func(fl validator.FieldLevel) bool {
		_, err := system.ParseReuseTier(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("listenaddr", func(fl validator.FieldLevel) bool {
		_, port, err := net.SplitHostPort(fl.Field().String())
		if err != nil {
			return false
		}
		p, err := strconv.Atoi(port)
		return err == nil && p >= 0 && p <= 65535
	})
}

func Default() *Config {
	return &Config{
		Reuse:       "numeric",
		Format:      "complex",
		LogLevel:    "warn",
		Concurrency: 4,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %v", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) ReuseTier() system.ReuseTier {
	tier, _ := system.ParseReuseTier(c.Reuse)
	return tier
}

func (c *Config) MatrixFormat() matrix.Format {
	format, _ := matrix.ParseFormat(c.Format)
	return format
}

func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}
