// Package config resolves runtime settings from, in order of
// precedence: built-in defaults, the YAML config file, environment
// variables, CLI flags. Every resolved value remembers where it came
// from so `parentcal config` can show provenance.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath     string
	CLIDBPath      string
	CLITimezone    string
	CLIRegion      string
	CLIThreshold   string
	CLIOCREndpoint string
	CLIWebhookURL  string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath              ResolvedValue `json:"db_path"`
	Timezone            ResolvedValue `json:"timezone"`
	DefaultRegion       ResolvedValue `json:"default_region"`
	ConfidenceThreshold ResolvedValue `json:"confidence_threshold"`
	OCREndpoint         ResolvedValue `json:"ocr_endpoint"`
	WebhookURL          ResolvedValue `json:"webhook_url"`
}

type fileConfig struct {
	DBPath              string `yaml:"db_path"`
	Timezone            string `yaml:"timezone"`
	DefaultRegion       string `yaml:"default_region"`
	ConfidenceThreshold string `yaml:"confidence_threshold"`
	OCR                 struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"ocr"`
	Webhook struct {
		URL string `yaml:"url"`
	} `yaml:"webhook"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".parentcal", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:          path,
		DBPath:              ResolvedValue{Value: "~/.parentcal/parentcal.db", Source: SourceDefault, From: "built-in default"},
		Timezone:            ResolvedValue{Value: "Local", Source: SourceDefault, From: "built-in default"},
		DefaultRegion:       ResolvedValue{Value: "US", Source: SourceDefault, From: "built-in default"},
		ConfidenceThreshold: ResolvedValue{Value: "0.5", Source: SourceDefault, From: "built-in default"},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.Timezone, cfg.Timezone, SourceConfig, path)
		apply(&out.DefaultRegion, cfg.DefaultRegion, SourceConfig, path)
		apply(&out.ConfidenceThreshold, cfg.ConfidenceThreshold, SourceConfig, path)
		apply(&out.OCREndpoint, cfg.OCR.Endpoint, SourceConfig, path)
		apply(&out.WebhookURL, cfg.Webhook.URL, SourceConfig, path)
	}

	applyEnv(&out.DBPath, "PARENTCAL_DB")
	applyEnv(&out.DBPath, "PARENTCAL_DB_PATH")
	applyEnv(&out.Timezone, "PARENTCAL_TZ")
	applyEnv(&out.DefaultRegion, "PARENTCAL_REGION")
	applyEnv(&out.ConfidenceThreshold, "PARENTCAL_CONFIDENCE_THRESHOLD")
	applyEnv(&out.OCREndpoint, "PARENTCAL_OCR_ENDPOINT")
	applyEnv(&out.WebhookURL, "PARENTCAL_WEBHOOK_URL")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.Timezone, opts.CLITimezone, SourceCLI, "--tz")
	apply(&out.DefaultRegion, opts.CLIRegion, SourceCLI, "--region")
	apply(&out.ConfidenceThreshold, opts.CLIThreshold, SourceCLI, "--threshold")
	apply(&out.OCREndpoint, opts.CLIOCREndpoint, SourceCLI, "--ocr-endpoint")
	apply(&out.WebhookURL, opts.CLIWebhookURL, SourceCLI, "--webhook")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// Threshold parses the resolved confidence threshold.
func (r ResolvedConfig) Threshold() (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.ConfidenceThreshold.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing confidence threshold %q: %w", r.ConfidenceThreshold.Value, err)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("confidence threshold %v out of range [0,1]", v)
	}
	return v, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
