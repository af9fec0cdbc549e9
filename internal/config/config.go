/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type LayoutConfig struct {
	ShrinkStep         float32 `yaml:"shrink_step"`
	MinShrinkFactor    float32 `yaml:"min_shrink_factor"`
	HighlightPadTop    float64 `yaml:"highlight_pad_top"`
	HighlightPadBottom float64 `yaml:"highlight_pad_bottom"`
	Workers            int     `yaml:"workers"`
}

// FontsConfig holds optional TrueType files replacing the built-in Go fonts.
type FontsConfig struct {
	Family     string `yaml:"family"`
	Regular    string `yaml:"regular"`
	Bold       string `yaml:"bold"`
	Italic     string `yaml:"italic"`
	BoldItalic string `yaml:"bold_italic"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Rules         string        `yaml:"rules"` // ruleset file; empty means built-in
	Layout        LayoutConfig  `yaml:"layout"`
	Fonts         FontsConfig   `yaml:"fonts"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Layout: LayoutConfig{
			ShrinkStep:         1,
			MinShrinkFactor:    0.5,
			HighlightPadTop:    10,
			HighlightPadBottom: 3,
			Workers:            runtime.NumCPU(),
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile = "CSM_CONFIG"
	EnvRules      = "CSM_RULES"
	EnvShrinkStep = "CSM_SHRINK_STEP"
	EnvMinShrink  = "CSM_MIN_SHRINK"
	EnvWorkers    = "CSM_WORKERS"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "CSM_LOG_LEVEL"
	EnvLogFormat = "CSM_LOG_FORMAT"
	EnvLogSource = "CSM_LOG_SOURCE"
	EnvLogFile   = "CSM_LOG_FILE"
)

// ConfigPath returns the per-user config file path. CSM_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Cardsmith")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Cardsmith")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "cardsmith")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file. A missing file yields the defaults;
// a malformed one is an error.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Rules); v != "" {
		dst.Rules = v
	}
	// layout: zero means "keep default"
	if src.Layout.ShrinkStep > 0 {
		dst.Layout.ShrinkStep = src.Layout.ShrinkStep
	}
	if src.Layout.MinShrinkFactor > 0 && src.Layout.MinShrinkFactor <= 1 {
		dst.Layout.MinShrinkFactor = src.Layout.MinShrinkFactor
	}
	if src.Layout.HighlightPadTop != 0 {
		dst.Layout.HighlightPadTop = src.Layout.HighlightPadTop
	}
	if src.Layout.HighlightPadBottom != 0 {
		dst.Layout.HighlightPadBottom = src.Layout.HighlightPadBottom
	}
	if src.Layout.Workers > 0 {
		dst.Layout.Workers = src.Layout.Workers
	}
	// fonts
	if v := strings.TrimSpace(src.Fonts.Family); v != "" {
		dst.Fonts.Family = v
	}
	if v := strings.TrimSpace(src.Fonts.Regular); v != "" {
		dst.Fonts.Regular = v
	}
	if v := strings.TrimSpace(src.Fonts.Bold); v != "" {
		dst.Fonts.Bold = v
	}
	if v := strings.TrimSpace(src.Fonts.Italic); v != "" {
		dst.Fonts.Italic = v
	}
	if v := strings.TrimSpace(src.Fonts.BoldItalic); v != "" {
		dst.Fonts.BoldItalic = v
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRules)); v != "" {
		cfg.Rules = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvShrinkStep)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			cfg.Layout.ShrinkStep = float32(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMinShrink)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 && f <= 1 {
			cfg.Layout.MinShrinkFactor = float32(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Layout.Workers = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "rules":
		env = EnvRules
	case "layout.shrink_step":
		env = EnvShrinkStep
	case "layout.min_shrink_factor":
		env = EnvMinShrink
	case "layout.workers":
		env = EnvWorkers
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// HasFonts reports whether any custom font file is configured.
func (f FontsConfig) HasFonts() bool {
	return f.Regular != "" || f.Bold != "" || f.Italic != "" || f.BoldItalic != ""
}
