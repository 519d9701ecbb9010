package singleinstance

import (
	"os"
	"strconv"
)

const (
	// PortEnvVar overrides the loopback port the guard binds.
	PortEnvVar  = "INTERACTIVE_SCRAPER_PORT"
	defaultPort = 49611
)

// ConfiguredPort returns the guard port, falling back to the default when the variable is
// unset or invalid. Values are clamped to [1024, 65535].
func ConfiguredPort() int {
	port := defaultPort
	if v := os.Getenv(PortEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	if port < 1024 {
		port = 1024
	}
	if port > 65535 {
		port = 65535
	}
	return port
}
