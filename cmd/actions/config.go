package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds the actions CLI configuration. Later layers win: defaults,
// ~/.teams-ai/settings.json, TEAMS_AI_* variables, then command-line flags.
type Config struct {
	LogLevel string `json:"log_level"`
	Format   string `json:"format"` // function | mcp | actions
	Strict   bool   `json:"strict"`
}

const envPrefix = "TEAMS_AI_"

// envBindings maps a variable name, minus envPrefix, onto the field it sets.
var envBindings = map[string]func(*Config, string){
	"LOG_LEVEL": func(c *Config, v string) { c.LogLevel = v },
	"FORMAT":    func(c *Config, v string) { c.Format = v },
	"STRICT": func(c *Config, v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Strict = b
		}
	},
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Format:   formatFunction,
	}
}

func settingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".teams-ai", "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()
	cfg.applySettings(settingsPath())
	cfg.applyEnv(os.LookupEnv)
	return cfg
}

// applySettings overlays the settings file. A missing or malformed file
// leaves c untouched.
func (c *Config) applySettings(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	overlay := *c
	if err := json.Unmarshal(data, &overlay); err != nil {
		return
	}
	*c = overlay
}

// applyEnv overrides fields from non-empty variables. Unparsable booleans
// are ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for name, apply := range envBindings {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			apply(c, v)
		}
	}
}
