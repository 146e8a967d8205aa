package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LaurentStar/hourly-coup/go/internal/agents"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Config is the YAML server configuration: agent bindings and the default
// phase durations applied to sessions that do not override them.
type Config struct {
	Agents struct {
		TimeoutSeconds int               `yaml:"timeout_seconds"`
		Players        map[string]string `yaml:"players"`
	} `yaml:"agents"`
	Durations *models.PhaseDurations `yaml:"durations"`
}

// AgentConfig converts the YAML section into the runner's config.
func (c *Config) AgentConfig() agents.Config {
	return agents.Config{
		Timeout: time.Duration(c.Agents.TimeoutSeconds) * time.Second,
		Players: c.Agents.Players,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}
