package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveGlobal writes a key to the global config file, creating it if
// needed. Only keys known to Defaults are accepted.
func SaveGlobal(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".config", GlobalConfigDir, "config.yaml")

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return upsertKey(path, key, value, 0o600)
}

// SaveLocal writes a key to .grove.yaml in the repository root.
func SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("not inside a git repository")
	}
	if err := validateKey(key); err != nil {
		return err
	}
	// Local config is shared with the team and should be readable.
	return upsertKey(filepath.Join(gitRoot, LocalConfigName), key, value, 0o644)
}

// DeleteGlobal removes a key from the global config. Missing files and
// keys are fine.
func DeleteGlobal(key string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".config", GlobalConfigDir, "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil
	}
	delete(existing, key)

	out, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

func validateKey(key string) error {
	if _, ok := Defaults[key]; ok {
		return nil
	}
	keys := make([]string, 0, len(Defaults))
	for k := range Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown config key: %s\n\nValid keys: %s", key, strings.Join(keys, ", "))
}

func upsertKey(path, key, value string, perm os.FileMode) error {
	var existing map[string]any
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &existing)
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	existing[key] = parseValue(value)

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue converts booleans so they serialize unquoted.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
