package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"betkeeper/internal/types"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Storage struct {
		Backend             string `yaml:"backend"` // "sqlite" or "file"
		Path                string `yaml:"path"`
		BackupRetentionDays int    `yaml:"backup_retention_days"`
	} `yaml:"storage"`
	Bankroll struct {
		Initial         float64 `yaml:"initial"`
		FlatStake       float64 `yaml:"flat_stake"`
		PercentageStake float64 `yaml:"percentage_stake"`
		Strategy        string  `yaml:"strategy"`
	} `yaml:"bankroll"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Storage.Backend != "sqlite" && c.Storage.Backend != "file" {
		return fmt.Errorf("storage.backend must be 'sqlite' or 'file', got '%s'", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}
	if c.Bankroll.Initial <= 0 {
		return fmt.Errorf("bankroll.initial must be positive, got %.2f", c.Bankroll.Initial)
	}
	if c.Bankroll.FlatStake <= 0 {
		return fmt.Errorf("bankroll.flat_stake must be positive, got %.2f", c.Bankroll.FlatStake)
	}
	if c.Bankroll.PercentageStake <= 0 || c.Bankroll.PercentageStake > 100 {
		return fmt.Errorf("bankroll.percentage_stake must be between 0-100, got %.2f", c.Bankroll.PercentageStake)
	}
	return nil
}

// SeedProfile is the bankroll profile used on first run, before
// anything has been persisted.
func (c *Config) SeedProfile() types.BankrollProfile {
	return types.BankrollProfile{
		Initial:         c.Bankroll.Initial,
		Current:         c.Bankroll.Initial,
		Strategy:        types.ParseStrategy(c.Bankroll.Strategy),
		FlatStake:       c.Bankroll.FlatStake,
		PercentageStake: c.Bankroll.PercentageStake,
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Path == "" {
		if c.Storage.Backend == "sqlite" {
			c.Storage.Path = "data/betkeeper.db"
		} else {
			c.Storage.Path = "data/bankroll.json"
		}
	}
	if c.Storage.BackupRetentionDays == 0 {
		c.Storage.BackupRetentionDays = 14
	}
	if c.Bankroll.Initial == 0 {
		c.Bankroll.Initial = 100
	}
	if c.Bankroll.FlatStake == 0 {
		c.Bankroll.FlatStake = 10
	}
	if c.Bankroll.PercentageStake == 0 {
		c.Bankroll.PercentageStake = 5
	}
	if c.Bankroll.Strategy == "" {
		c.Bankroll.Strategy = "flat"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
