package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "QFORECAST"

var ErrNoInput = errors.New("no input file")

// Config is the merged configuration of flags, QFORECAST_ environment variables and an
// optional qforecast.yaml
type Config struct {
	Input           string  `mapstructure:"input"`
	Output          string  `mapstructure:"output"`
	Format          string  `mapstructure:"format"`
	Periods         int     `mapstructure:"periods"`
	Plot            string  `mapstructure:"plot"`
	Calendar        bool    `mapstructure:"calendar"`
	ShowModels      bool    `mapstructure:"show-models"`
	PolynomialOrder int     `mapstructure:"polynomial-order"`
	IntervalZScore  float64 `mapstructure:"interval-zscore"`
	LogLevel        string  `mapstructure:"log-level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("format", "json")
	v.SetDefault("periods", 4)
	v.SetDefault("polynomial-order", 2)
	v.SetDefault("interval-zscore", 1.96)
	v.SetDefault("log-level", "info")
}

// loadConfig layers flags over environment variables over the config file over defaults
func loadConfig(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("qforecast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("unable to bind flags, %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if cfg.Input == "" {
		return nil, ErrNoInput
	}
	return &cfg, nil
}

func (c *Config) slogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
