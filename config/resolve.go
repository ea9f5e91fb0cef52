package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Lookup resolves a string setting from an explicit value, then a process
// environment variable, then a hard-coded fallback.
func Lookup(explicit, envVar, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if envVar != "" {
		if value := os.Getenv(envVar); value != "" {
			return value
		}
	}
	return fallback
}

// LookupInt resolves an integer setting with the same precedence as Lookup.
// A malformed environment value is an error rather than a silent fallback.
func LookupInt(explicit int, envVar string, fallback int) (int, error) {
	if explicit != 0 {
		return explicit, nil
	}
	if envVar != "" {
		if value := os.Getenv(envVar); value != "" {
			n, err := strconv.Atoi(value)
			if err != nil {
				return 0, fmt.Errorf("config: %s: %w", envVar, err)
			}
			return n, nil
		}
	}
	return fallback, nil
}

// LookupSeconds resolves a duration expressed as seconds in the environment
// variable, with the same precedence as Lookup.
func LookupSeconds(explicit time.Duration, envVar string, fallback time.Duration) (time.Duration, error) {
	if explicit > 0 {
		return explicit, nil
	}
	if envVar != "" {
		if value := os.Getenv(envVar); value != "" {
			seconds, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return 0, fmt.Errorf("config: %s: %w", envVar, err)
			}
			return time.Duration(seconds * float64(time.Second)), nil
		}
	}
	return fallback, nil
}
