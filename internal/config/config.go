// Package config loads studyloop settings from a YAML file, then applies
// STUDYLOOP_* environment overrides. Command-line flags are applied last by
// the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyloop/internal/llm"
)

type Config struct {
	// DB is the SQLite database path. Empty means store.DefaultDBPath.
	DB   string `yaml:"db"`
	User string `yaml:"user"`

	Log struct {
		Mode  string `yaml:"mode"`
		Level string `yaml:"level"`
	} `yaml:"log"`

	LLM llm.Config `yaml:"llm"`

	Redis struct {
		// Addr empty keeps the leaderboard in memory.
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Practice struct {
		QuestionCount int           `yaml:"question_count"`
		RevisionSize  int           `yaml:"revision_size"`
		TimeLimit     time.Duration `yaml:"time_limit"`
		DedupeOnWrite bool          `yaml:"dedupe_on_write"`
		// QuestionBank is a YAML file used when no LLM is configured or
		// generation fails.
		QuestionBank string `yaml:"question_bank"`
	} `yaml:"practice"`

	Rewards struct {
		PerfectBonus  int `yaml:"perfect_bonus"`
		RevisionBonus int `yaml:"revision_bonus"`
	} `yaml:"rewards"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.User = "local"
	c.Log.Mode = "dev"
	c.Log.Level = "warn"
	c.LLM = llm.DefaultConfig()
	c.Practice.QuestionCount = 10
	c.Practice.RevisionSize = 10
	c.Practice.TimeLimit = 15 * time.Minute
	c.Rewards.PerfectBonus = 10
	c.Rewards.RevisionBonus = 2
	return c
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. A missing file is not an error when optional is
// true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && optional:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from STUDYLOOP_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("STUDYLOOP_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("STUDYLOOP_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("STUDYLOOP_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("STUDYLOOP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STUDYLOOP_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("STUDYLOOP_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("STUDYLOOP_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	if v := os.Getenv("STUDYLOOP_QUESTION_BANK"); v != "" {
		c.Practice.QuestionBank = v
	}
	c.LLM.ApplyEnv()
}

// Validate checks settings that would otherwise fail deep inside a command.
// LLM credentials are checked when a provider is built, since offline
// commands never need them.
func (c Config) Validate() error {
	if c.User == "" {
		return fmt.Errorf("user must not be empty")
	}
	if c.Practice.QuestionCount <= 0 {
		return fmt.Errorf("practice.question_count must be positive, got %d", c.Practice.QuestionCount)
	}
	if c.Practice.RevisionSize <= 0 {
		return fmt.Errorf("practice.revision_size must be positive, got %d", c.Practice.RevisionSize)
	}
	if c.Rewards.PerfectBonus < 0 || c.Rewards.RevisionBonus < 0 {
		return fmt.Errorf("reward bonuses must not be negative")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/studyloop/config.yaml.
func DefaultPath() (string, error) {
	if v := os.Getenv("STUDYLOOP_CONFIG"); v != "" {
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "studyloop", "config.yaml"), nil
}
