package config

import (
	"os"

	"github.com/joho/godotenv"
)

// dotenvCandidates in priority order: .env.local overrides .env.
var dotenvCandidates = []string{".env.local", ".env"}

// LoadDotEnv loads env files before the YAML config is parsed.
// godotenv.Load never overwrites variables that are already set, so
// real OS environment wins over .env.local, which wins over .env.
// Returns the files that were found and loaded.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range dotenvCandidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) == 0 {
		return nil
	}
	_ = godotenv.Load(loaded...)
	return loaded
}
