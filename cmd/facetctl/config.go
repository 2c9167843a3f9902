package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/reglet-dev/facet/application/validation"
	"github.com/reglet-dev/facet/domain/entities"
)

// facetctl config.toml key mapping.
type fileConfig struct {
	StatePath       string   `toml:"state_path"`
	LogLevel        string   `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat       string   `toml:"log_format" validate:"omitempty,oneof=text json"`
	MetricsTextfile string   `toml:"metrics_textfile"`
	WasmDir         string   `toml:"wasm_dir"`
	AssumeYes       bool     `toml:"assume_yes"`
	CriticalModules []string `toml:"critical_modules" validate:"dive,moduleid"`
	BroadThreshold  int      `toml:"broad_threshold" validate:"gte=0"`
}

// config is the resolved CLI configuration.
type config struct {
	StatePath       string
	LogLevel        string
	LogFormat       string
	MetricsTextfile string
	WasmDir         string
	AssumeYes       bool
	CriticalModules []entities.ModuleID
	BroadThreshold  int
}

func defaultConfig() config {
	statePath := ".facet/state.yaml"
	if home, err := os.UserHomeDir(); err == nil {
		statePath = filepath.Join(home, ".facet", "state.yaml")
	}
	return config{
		StatePath:      statePath,
		LogLevel:       "warn",
		LogFormat:      "text",
		BroadThreshold: entities.DefaultBroadThreshold,
	}
}

// loadConfig overlays the keys defined in path onto the defaults. An empty
// path returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load facetctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load facetctl config: unknown key %q", undecoded[0].String())
	}
	raw.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	raw.LogFormat = strings.ToLower(strings.TrimSpace(raw.LogFormat))
	if err := validation.ValidateStruct(raw); err != nil {
		return config{}, fmt.Errorf("load facetctl config %s: %w", path, err)
	}

	if meta.IsDefined("state_path") {
		cfg.StatePath = strings.TrimSpace(raw.StatePath)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = raw.LogFormat
	}
	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}
	if meta.IsDefined("wasm_dir") {
		cfg.WasmDir = strings.TrimSpace(raw.WasmDir)
	}
	if meta.IsDefined("assume_yes") {
		cfg.AssumeYes = raw.AssumeYes
	}
	if meta.IsDefined("critical_modules") {
		cfg.CriticalModules = make([]entities.ModuleID, len(raw.CriticalModules))
		for i, m := range raw.CriticalModules {
			cfg.CriticalModules[i] = entities.ModuleID(m)
		}
	}
	if meta.IsDefined("broad_threshold") {
		cfg.BroadThreshold = raw.BroadThreshold
	}
	return cfg, nil
}

// parseVars turns repeated key=value flags into template variables.
func parseVars(sets []string) (map[string]any, error) {
	vars := make(map[string]any, len(sets))
	for _, s := range sets {
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: want key=value", s)
		}
		vars[k] = v
	}
	return vars, nil
}
