package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Input  string   `yaml:"input" json:"input"`
	Output string   `yaml:"output" json:"output"`
	Format string   `yaml:"format" json:"format"`
	URLs   []string `yaml:"urls" json:"urls"`

	Fetch struct {
		Timeout      string `yaml:"timeout" json:"timeout"`
		UserAgent    string `yaml:"userAgent" json:"userAgent"`
		MaxBodyBytes int64  `yaml:"maxBodyBytes" json:"maxBodyBytes"`
		Concurrency  int    `yaml:"concurrency" json:"concurrency"`
	} `yaml:"fetch" json:"fetch"`

	FailFast bool `yaml:"failFast" json:"failFast"`
	Verbose  bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset in cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.Format == "" && fc.Format != "" {
		cfg.Format = strings.ToLower(fc.Format)
	}
	if len(cfg.Inputs) == 0 && len(fc.URLs) > 0 {
		cfg.Inputs = append([]string{}, fc.URLs...)
	}
	if cfg.Timeout == 0 && fc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("fetch.timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.MaxBodyBytes == 0 && fc.Fetch.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = fc.Fetch.MaxBodyBytes
	}
	if cfg.Concurrency == 0 && fc.Fetch.Concurrency > 0 {
		cfg.Concurrency = fc.Fetch.Concurrency
	}
	if !cfg.FailFast && fc.FailFast {
		cfg.FailFast = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}

// ValidateConfig performs basic validation of a fully merged Config.
func ValidateConfig(cfg Config) error {
	var errs []error
	if len(cfg.Inputs) == 0 && strings.TrimSpace(cfg.InputPath) == "" {
		errs = append(errs, errors.New("no URLs given: pass URLs as arguments or use -input"))
	}
	switch cfg.Format {
	case "", FormatJSONL, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("format must be %q or %q, got %q", FormatJSONL, FormatJSON, cfg.Format))
	}
	if cfg.Timeout < 0 {
		errs = append(errs, errors.New("timeout must be >= 0"))
	}
	if cfg.Concurrency < 0 {
		errs = append(errs, errors.New("concurrency must be >= 0"))
	}
	return errors.Join(errs...)
}
