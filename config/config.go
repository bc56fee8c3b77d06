// Copyright (c) 2026 The PrizePool developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package config handles configuration for products embedding the prize pool
// ledger. Configuration is stored as a plain text file of key=value lines.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config holds the ledger configuration.
type Config struct {
	DataDir    string // base directory for persistent state
	LedgerFile string // bbolt pool store path, relative to DataDir if not absolute
	Resolver   string // DNSSEC upstream resolver (host:port), empty = system resolver
	LogLevel   string // debug, info, warn, error
	StrictMode bool   // enforce the strict pool lifecycle table
}

// DefaultConfig returns the configuration defaults. The data directory is
// {home}/.prizepool.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:    filepath.Join(home, ".prizepool"),
		LedgerFile: "pools.db",
		Resolver:   "",
		LogLevel:   "info",
		StrictMode: false,
	}
}

// LedgerPath returns the absolute pool store path.
func (c Config) LedgerPath() string {
	if filepath.IsAbs(c.LedgerFile) {
		return c.LedgerFile
	}
	return filepath.Join(c.DataDir, c.LedgerFile)
}

// LoadConfig reads a configuration file of key=value lines. Unknown keys are
// rejected; missing keys keep their defaults. Lines starting with '#' and
// blank lines are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, ErrConfigNotFound
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, i+1, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "ledgerfile":
			cfg.LedgerFile = value
		case "resolver":
			cfg.Resolver = value
		case "loglevel":
			cfg.LogLevel = value
		case "strictmode":
			switch strings.ToLower(value) {
			case "true", "1", "yes":
				cfg.StrictMode = true
			case "false", "0", "no":
				cfg.StrictMode = false
			default:
				return cfg, fmt.Errorf("%w: line %d: strictmode %q", ErrInvalidConfigLine, i+1, value)
			}
		default:
			return cfg, fmt.Errorf("%w: line %d: unknown key %q", ErrInvalidConfigLine, i+1, key)
		}
	}

	return cfg, nil
}

// SaveConfig writes the configuration as key=value lines, creating parent
// directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	entries := map[string]string{
		"datadir":    cfg.DataDir,
		"ledgerfile": cfg.LedgerFile,
		"resolver":   cfg.Resolver,
		"loglevel":   cfg.LogLevel,
		"strictmode": fmt.Sprintf("%t", cfg.StrictMode),
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, entries[k])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
