package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvFileEnvVar = "INTERACTIVE_SCRAPER_ENV"

	DefaultBrowserURL = "http://localhost:9222"
	DefaultModifier   = "Alt"
	DefaultLogLevel   = "info"
	DefaultLogFile    = "interactive_scraper.log"
)

// LoadOptions carries command-line overrides. Non-nil/non-empty values win over
// everything read from .env or the environment.
type LoadOptions struct {
	EnvPathOverride    string
	BrowserURLOverride *string
	StartURLOverride   string
	HeadlessOverride   *bool
	ModifierOverride   string
	CopyOverride       *bool
	LogLevelOverride   string
}

type Config struct {
	// BrowserURL is the DevTools endpoint of an already running browser.
	// Empty means a local browser is launched.
	BrowserURL        string
	StartURL          string
	Headless          bool
	Modifier          string
	// GadgetScriptURL overrides where SelectorGadget is loaded from. Empty uses the public build.
	GadgetScriptURL   string
	CopySelector      bool
	EnableFileLogging bool
	LogLevel          string
	LogFile           string
	EnvPath           string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) explicit --env path
	// 2) .env in the application (executable) directory
	// 3) INTERACTIVE_SCRAPER_ENV as a path to a config file
	envPath := resolveEnvPath(opts.EnvPathOverride)
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, err
		}
	}

	browserURL := DefaultBrowserURL
	if v, ok := os.LookupEnv("BROWSER_URL"); ok {
		browserURL = strings.TrimSpace(v)
	}
	if opts.BrowserURLOverride != nil {
		browserURL = strings.TrimSpace(*opts.BrowserURLOverride)
	}

	cfg := &Config{
		BrowserURL:        browserURL,
		StartURL:          getEnvWithDefault("START_URL", ""),
		Headless:          envBool("HEADLESS"),
		Modifier:          getEnvWithDefault("HOTKEY_MODIFIER", DefaultModifier),
		GadgetScriptURL:   getEnvWithDefault("GADGET_SCRIPT_URL", ""),
		CopySelector:      envBool("COPY_SELECTOR"),
		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", DefaultLogLevel),
		LogFile:           getEnvWithDefault("LOG_FILE", DefaultLogFile),
		EnvPath:           envPath,
	}

	if v := strings.TrimSpace(opts.StartURLOverride); v != "" {
		cfg.StartURL = v
	}
	if opts.HeadlessOverride != nil {
		cfg.Headless = *opts.HeadlessOverride
	}
	if v := strings.TrimSpace(opts.ModifierOverride); v != "" {
		cfg.Modifier = v
	}
	if opts.CopyOverride != nil {
		cfg.CopySelector = *opts.CopyOverride
	}
	if v := strings.TrimSpace(opts.LogLevelOverride); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

func resolveEnvPath(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
