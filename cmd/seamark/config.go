package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all seamark server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	LogLevel      string `json:"log_level"`
	ChromePath    string `json:"chrome_path"`
	MaxPages      int    `json:"max_pages"`
	DeadlineMs    int    `json:"deadline_ms"`
	MaxDeadlineMs int    `json:"max_deadline_ms"`
	ArtifactTTLMs int    `json:"artifact_ttl_ms"`
	InlineLimit   int    `json:"inline_limit"`
	MermaidSource string `json:"mermaid_source"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:      "info",
		MaxPages:      4,
		DeadlineMs:    30_000,
		MaxDeadlineMs: 120_000,
		ArtifactTTLMs: 900_000,
		InlineLimit:   1 << 20,
	}
}

func seamarkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seamark"
	}
	return filepath.Join(home, ".seamark")
}

func settingsPath() string {
	return filepath.Join(seamarkDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("SEAMARK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SEAMARK_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SEAMARK_MERMAID_SOURCE"); v != "" {
		cfg.MermaidSource = v
	}
	setIntEnv("SEAMARK_MAX_PAGES", &cfg.MaxPages)
	setIntEnv("SEAMARK_DEADLINE_MS", &cfg.DeadlineMs)
	setIntEnv("SEAMARK_MAX_DEADLINE_MS", &cfg.MaxDeadlineMs)
	setIntEnv("SEAMARK_ARTIFACT_TTL_MS", &cfg.ArtifactTTLMs)
	setIntEnv("SEAMARK_INLINE_LIMIT", &cfg.InlineLimit)

	return cfg
}

func setIntEnv(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
