// Package agent samples the active desktop window during a focus session and
// reports it to the pipeline server.
package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL       = "http://localhost:8080"
	defaultSampleInterval  = 2 * time.Second
	defaultDuration        = 30 * time.Minute
	defaultHeartbeat       = 30 * time.Second
	defaultTaskDescription = "Focus session"
)

var ErrUsernameRequired = errors.New("username is required")

type Config struct {
	ServerURL         string        `yaml:"server_url"`
	Username          string        `yaml:"username"`
	TaskDescription   string        `yaml:"task_description"`
	Keywords          []string      `yaml:"keywords"`
	Duration          time.Duration `yaml:"duration"`
	SampleInterval    time.Duration `yaml:"sample_interval"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	// IncludeProcess prefixes titles with the owning process name.
	IncludeProcess bool `yaml:"include_process"`
	// Live subscribes to pushed alerts for the duration of a session.
	Live bool `yaml:"live"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".focusguard", "agent.yaml")
	}
	return filepath.Join(home, ".focusguard", "agent.yaml")
}

func DefaultConfig() Config {
	return Config{
		ServerURL:         defaultServerURL,
		TaskDescription:   defaultTaskDescription,
		Duration:          defaultDuration,
		SampleInterval:    defaultSampleInterval,
		HeartbeatInterval: defaultHeartbeat,
		IncludeProcess:    true,
		Live:              true,
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read agent config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse agent config %s: %w", path, err)
	}

	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ServerURL == "" {
		c.ServerURL = d.ServerURL
	}
	if c.TaskDescription == "" {
		c.TaskDescription = d.TaskDescription
	}
	if c.Duration <= 0 {
		c.Duration = d.Duration
	}
	if c.SampleInterval <= 0 {
		c.SampleInterval = d.SampleInterval
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return c
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrUsernameRequired
	}
	return nil
}

// LiveURL is the websocket endpoint for the configured server.
func (c Config) LiveURL() string {
	u := c.ServerURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws/" + c.Username
}
