package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/hivewatch/beedash/settings"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "/app/config.yaml"
	localConfigName   = "config.local.yaml"
	configSection     = "beedash"
)

// loadConfig reads the beedash section of config.yaml, with config.local.yaml
// from the same directory merged on top. Without any config file the zero
// Config is returned and defaults apply later.
func loadConfig(explicit string) (settings.Config, string, error) {
	var cfg settings.Config

	configPath := explicit
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return cfg, "", fmt.Errorf("config: %w", err)
		}
	} else {
		configPath = firstExistingPath(defaultConfigPath, "./config.yaml", "../config.yaml")
	}
	if configPath == "" {
		return cfg, "", nil
	}

	configMap, err := readYAML(configPath)
	if err != nil {
		return cfg, "", err
	}
	localPath := filepath.Join(filepath.Dir(configPath), localConfigName)
	if _, err := os.Stat(localPath); err == nil {
		overrides, err := readYAML(localPath)
		if err != nil {
			return cfg, "", err
		}
		merged, ok := mergeConfig(configMap, overrides).(map[string]interface{})
		if !ok {
			return cfg, "", fmt.Errorf("merged config is not a map")
		}
		configMap = merged
	}

	section := getMap(configMap, configSection)
	if section == nil {
		section = map[string]interface{}{}
	}
	payload, err := json.Marshal(section)
	if err != nil {
		return cfg, "", fmt.Errorf("encode %s config: %w", configSection, err)
	}
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return cfg, "", fmt.Errorf("decode %s config: %w", configSection, err)
	}
	return cfg, configPath, nil
}

func readYAML(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func firstExistingPath(paths ...string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// mergeConfig overlays override onto base. Maps merge key by key; empty
// strings and empty lists in override keep the base value.
func mergeConfig(base, override interface{}) interface{} {
	if override == nil {
		return base
	}

	switch overrideTyped := override.(type) {
	case map[string]interface{}:
		baseMap, ok := base.(map[string]interface{})
		if !ok {
			baseMap = map[string]interface{}{}
		}
		result := map[string]interface{}{}
		for key, value := range baseMap {
			result[key] = value
		}
		for key, value := range overrideTyped {
			result[key] = mergeConfig(result[key], value)
		}
		return result
	case []interface{}:
		if len(overrideTyped) == 0 {
			return base
		}
		return overrideTyped
	case string:
		if overrideTyped == "" {
			return base
		}
		return overrideTyped
	default:
		return override
	}
}

func getMap(source map[string]interface{}, key string) map[string]interface{} {
	if source == nil {
		return nil
	}
	if typed, ok := source[key].(map[string]interface{}); ok {
		return typed
	}
	return nil
}
