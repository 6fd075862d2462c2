// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Remote struct {
		BaseURL string `json:"base_url"`
		Repo    string `json:"repo"`
		Token   string `json:"token"`
	} `json:"remote"`

	// Branch is the default commit target; BaseBranch is its start
	// point when it does not exist remotely yet.
	Branch     string `json:"branch"`
	BaseBranch string `json:"base_branch"`

	Cache struct {
		Path string `json:"path"`
	} `json:"cache"`

	LogLevel string `json:"log_level"` // debug, info, warn, error
}

// DefaultPath resolves the config file location from the environment.
func DefaultPath() string {
	if path := os.Getenv("TREESTAGE_CONFIG"); path != "" {
		return path
	}
	return "config.json"
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}

	if config.Remote.BaseURL == "" {
		return nil, fmt.Errorf("remote.base_url is required")
	}
	if config.Remote.Repo == "" {
		return nil, fmt.Errorf("remote.repo is required")
	}
	if config.Branch == "" {
		config.Branch = "main"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return &config, nil
}
