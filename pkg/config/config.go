// Package config loads the settings of the stored value debit tool.
package config

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"github.com/gregLibert/calypso-sv/pkg/calypso"
)

// Config is the complete tool configuration.
type Config struct {
	Card CardConfig `yaml:"card"`
	SAM  SAMConfig  `yaml:"sam"`
	SV   SVConfig   `yaml:"sv"`
	Log  LogConfig  `yaml:"log"`
}

// CardConfig selects the card reader and the Calypso application.
type CardConfig struct {
	Reader string `yaml:"reader"` // empty: first reader
	AID    string `yaml:"aid"`
}

// SAMConfig selects the SAM reader.
type SAMConfig struct {
	Reader string `yaml:"reader"` // empty: second reader
}

// SVConfig holds the debit parameters.
type SVConfig struct {
	Amount int `yaml:"amount"`
}

// LogConfig holds logging settings. Without File, logs go to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $CALYPSO_CONFIG when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CALYPSO_CONFIG")
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Card: CardConfig{AID: "315449432E494341"},
		SV:   SVConfig{Amount: 1},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CALYPSO_CARD_READER"); v != "" {
		cfg.Card.Reader = v
	}
	if v := os.Getenv("CALYPSO_SAM_READER"); v != "" {
		cfg.SAM.Reader = v
	}
	if v := os.Getenv("CALYPSO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CALYPSO_SV_AMOUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CALYPSO_SV_AMOUNT: %w", err)
		}
		cfg.SV.Amount = n
	}
	return nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if _, err := c.AIDBytes(); err != nil {
		return err
	}
	if c.SV.Amount < 0 || c.SV.Amount > calypso.MaxSvAmount {
		return fmt.Errorf("sv.amount %d outside [0, %d]", c.SV.Amount, calypso.MaxSvAmount)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}

// AIDBytes decodes the card application identifier (5 to 16 bytes).
func (c *Config) AIDBytes() ([]byte, error) {
	aid, err := hex.DecodeString(c.Card.AID)
	if err != nil {
		return nil, fmt.Errorf("card.aid: %w", err)
	}
	if len(aid) < 5 || len(aid) > 16 {
		return nil, fmt.Errorf("card.aid: %d bytes, want 5 to 16", len(aid))
	}
	return aid, nil
}

// Output returns the log destination: a rotated file when File is set,
// stderr otherwise.
func (l LogConfig) Output() io.Writer {
	if l.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   l.File,
		MaxSize:    l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// Apply configures logger with the level and output of l.
func (l LogConfig) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetOutput(l.Output())
	return nil
}
