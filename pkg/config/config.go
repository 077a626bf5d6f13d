// Package config loads .env files and reads environment values with defaults.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads a .env file if present. Missing files are not an error; deployed
// environments inject real env vars instead.
func Load() {
	_ = godotenv.Load()
}

func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetList splits a comma-separated env value, trimming blanks.
func GetList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
