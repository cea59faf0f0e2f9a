//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultFormat = "text"
)

// Config holds the portlist configuration.
type Config struct {
	DevFolder string   `json:"dev_folder,omitempty"`
	SysFolder string   `json:"sys_folder,omitempty"`
	Patterns  []string `json:"patterns,omitempty"`
	Format    string   `json:"format,omitempty"`
	USBOnly   bool     `json:"usb_only,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Format: DefaultFormat,
	}
}

// GlobalPath returns the path of the per-user config file.
func GlobalPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "portlist", "config.json"), nil
}

// Load reads and merges the global config and the file at path, if not empty.
// Order: defaults → global (<user config dir>/portlist/config.json) → path.
// A missing global file is ignored, a missing or malformed file at path is
// an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if global, err := GlobalPath(); err == nil {
		if err := mergeFromFile(&cfg, global); err != nil && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if path != "" {
		if err := mergeFromFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save writes the config to path, creating the parent folder if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if fileCfg.DevFolder != "" {
		cfg.DevFolder = fileCfg.DevFolder
	}
	if fileCfg.SysFolder != "" {
		cfg.SysFolder = fileCfg.SysFolder
	}
	if len(fileCfg.Patterns) > 0 {
		cfg.Patterns = fileCfg.Patterns
	}
	if fileCfg.Format != "" {
		cfg.Format = fileCfg.Format
	}
	if fileCfg.USBOnly {
		cfg.USBOnly = true
	}
	return nil
}
