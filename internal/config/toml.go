// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Nil fields are unset.
type FileConfig struct {
	Quiz   QuizConfig   `toml:"quiz"`
	Movies MoviesConfig `toml:"movies"`
	Trivia TriviaConfig `toml:"trivia"`
	Bank   BankConfig   `toml:"bank"`
	Stats  StatsConfig  `toml:"stats"`
	Log    LogConfig    `toml:"log"`
}

// QuizConfig maps session settings.
type QuizConfig struct {
	Source      *string   `toml:"source"`
	Questions   *int      `toml:"questions"`
	RevealDelay *Duration `toml:"reveal-delay"`
}

// MoviesConfig maps the Top-250 movie source.
type MoviesConfig struct {
	URL    *string `toml:"url"`
	APIKey *string `toml:"api-key"`
	File   *string `toml:"file"`
}

// TriviaConfig maps the OpenTriviaDB source.
type TriviaConfig struct {
	URL      *string `toml:"url"`
	Category *int    `toml:"category"`
}

// BankConfig maps the local question bank.
type BankConfig struct {
	Path *string `toml:"path"`
}

// StatsConfig maps the statistics backend.
type StatsConfig struct {
	Backend     *string `toml:"backend"`
	Path        *string `toml:"path"`
	RedisAddr   *string `toml:"redis-addr"`
	RedisDB     *int    `toml:"redis-db"`
	RedisPrefix *string `toml:"redis-prefix"`
}

// LogConfig maps diagnostics output.
type LogConfig struct {
	Mode *string `toml:"mode"`
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
