// Package projectconfig provides the ProjectConfig struct and loader for
// .leadgen.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth. New() references them and no other code should duplicate them.
const (
	DefaultGatewayURL = "http://localhost:8000"
	DefaultAgent      = "lead_generation_orchestrator"

	DefaultResultsDir = "results/"

	DefaultServerPort = 3000

	DefaultSubmitTimeoutSec = 30
	DefaultIdleTimeoutSec   = 0 // disabled
)

// GatewayConfig holds the agent-gateway endpoint settings.
type GatewayConfig struct {
	URL   string `yaml:"url,omitempty"`
	Agent string `yaml:"agent,omitempty"`
	// SubmitTimeout bounds the task-submission request, in seconds.
	SubmitTimeout int `yaml:"submit_timeout,omitempty"`
	// IdleTimeout bounds the gap between stream events, in seconds.
	// Zero disables the watchdog.
	IdleTimeout int `yaml:"idle_timeout,omitempty"`
}

// ResultsConfig holds transcript persistence settings.
type ResultsConfig struct {
	Dir string `yaml:"dir,omitempty"`
	// Compress switches saved transcripts to gzip archives.
	Compress *bool `yaml:"compress,omitempty"`
}

// ServerConfig holds demo web-frontend settings.
type ServerConfig struct {
	Port      int   `yaml:"port,omitempty"`
	NoBrowser *bool `yaml:"no_browser,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .leadgen.yaml.
type ProjectConfig struct {
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Results ResultsConfig `yaml:"results,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Gateway: GatewayConfig{
			URL:           DefaultGatewayURL,
			Agent:         DefaultAgent,
			SubmitTimeout: DefaultSubmitTimeoutSec,
			IdleTimeout:   DefaultIdleTimeoutSec,
		},
		Results: ResultsConfig{
			Dir:      DefaultResultsDir,
			Compress: boolPtr(false),
		},
		Server: ServerConfig{
			Port:      DefaultServerPort,
			NoBrowser: boolPtr(false),
		},
	}
}

// Load finds .leadgen.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found, use defaults
		}
		return nil, fmt.Errorf("loading .leadgen.yaml: %w", err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .leadgen.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .leadgen.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".leadgen.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Gateway.URL != "" {
		dst.Gateway.URL = src.Gateway.URL
	}
	if src.Gateway.Agent != "" {
		dst.Gateway.Agent = src.Gateway.Agent
	}
	if src.Gateway.SubmitTimeout != 0 {
		dst.Gateway.SubmitTimeout = src.Gateway.SubmitTimeout
	}
	if src.Gateway.IdleTimeout != 0 {
		dst.Gateway.IdleTimeout = src.Gateway.IdleTimeout
	}

	if src.Results.Dir != "" {
		dst.Results.Dir = src.Results.Dir
	}
	if src.Results.Compress != nil {
		dst.Results.Compress = src.Results.Compress
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.NoBrowser != nil {
		dst.Server.NoBrowser = src.Server.NoBrowser
	}
}

func boolPtr(b bool) *bool {
	return &b
}
