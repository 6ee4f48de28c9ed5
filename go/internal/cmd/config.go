package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the yaml configuration for the gateway binary. Every field has
// a default so the binary runs without a config file.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Nats struct {
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		ConsumerName  string `yaml:"consumer_name"`
		SubjectFilter string `yaml:"subject_filter"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
	Session struct {
		UpdateIntervalSec int `yaml:"update_interval_sec"`
	} `yaml:"session"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config
	config.Server.Port = getEnv("PORT", "8080")
	config.Nats.URL = getEnv("NATS_URL", "nats://localhost:4222")
	config.Nats.StreamName = "SESSION_EVENTS"
	config.Nats.ConsumerName = "session-gateway"
	config.Nats.SubjectFilter = "session.events.>"
	config.Nats.SubjectPrefix = "session.events"
	config.Session.UpdateIntervalSec = 5

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional; env and defaults apply.
			return &config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// UpdateInterval converts the configured report interval to a duration
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.Session.UpdateIntervalSec) * time.Second
}
