package config

import (
	"os"
	"path/filepath"
	"testing"
)

var configKeys = []string{
	"BROWSER_URL",
	"START_URL",
	"HEADLESS",
	"HOTKEY_MODIFIER",
	"GADGET_SCRIPT_URL",
	"COPY_SELECTOR",
	"ENABLE_FILE_LOGGING",
	"LOG_LEVEL",
	"LOG_FILE",
	EnvFileEnvVar,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.BrowserURL != DefaultBrowserURL {
		t.Errorf("Expected BrowserURL %q, got %q", DefaultBrowserURL, cfg.BrowserURL)
	}
	if cfg.Modifier != "Alt" {
		t.Errorf("Expected Modifier 'Alt', got '%s'", cfg.Modifier)
	}
	if cfg.GadgetScriptURL != "" {
		t.Errorf("Expected empty gadget URL, got '%s'", cfg.GadgetScriptURL)
	}
	if cfg.Headless || cfg.CopySelector || cfg.EnableFileLogging {
		t.Errorf("Expected boolean flags to default to false, got %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel 'info', got '%s'", cfg.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	os.Setenv("BROWSER_URL", "ws://127.0.0.1:9333/devtools/browser/abc")
	os.Setenv("START_URL", "https://example.com")
	os.Setenv("HEADLESS", "true")
	os.Setenv("HOTKEY_MODIFIER", "Ctrl")
	os.Setenv("COPY_SELECTOR", "1")
	os.Setenv("ENABLE_FILE_LOGGING", "TRUE")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.BrowserURL != "ws://127.0.0.1:9333/devtools/browser/abc" {
		t.Errorf("Unexpected BrowserURL '%s'", cfg.BrowserURL)
	}
	if cfg.StartURL != "https://example.com" {
		t.Errorf("Expected StartURL 'https://example.com', got '%s'", cfg.StartURL)
	}
	if !cfg.Headless {
		t.Errorf("Expected Headless to be true")
	}
	if cfg.Modifier != "Ctrl" {
		t.Errorf("Expected Modifier 'Ctrl', got '%s'", cfg.Modifier)
	}
	if !cfg.CopySelector {
		t.Errorf("Expected CopySelector to be true")
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel 'debug', got '%s'", cfg.LogLevel)
	}
}

func TestEmptyBrowserURLMeansLaunch(t *testing.T) {
	clearEnv(t)
	os.Setenv("BROWSER_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.BrowserURL != "" {
		t.Errorf("Expected empty BrowserURL, got '%s'", cfg.BrowserURL)
	}
}

func TestLoadWithOptionsOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("HOTKEY_MODIFIER", "Shift")
	os.Setenv("HEADLESS", "true")

	browserURL := "http://10.0.0.5:9222"
	headless := false
	copySel := true
	cfg, err := LoadWithOptions(LoadOptions{
		BrowserURLOverride: &browserURL,
		StartURLOverride:   "https://example.org",
		HeadlessOverride:   &headless,
		ModifierOverride:   "Win",
		CopyOverride:       &copySel,
		LogLevelOverride:   "warn",
	})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.BrowserURL != browserURL {
		t.Errorf("Expected BrowserURL override, got '%s'", cfg.BrowserURL)
	}
	if cfg.StartURL != "https://example.org" {
		t.Errorf("Expected StartURL override, got '%s'", cfg.StartURL)
	}
	if cfg.Headless {
		t.Errorf("Expected Headless override to false")
	}
	if cfg.Modifier != "Win" {
		t.Errorf("Expected Modifier 'Win', got '%s'", cfg.Modifier)
	}
	if !cfg.CopySelector {
		t.Errorf("Expected CopySelector override to true")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected LogLevel 'warn', got '%s'", cfg.LogLevel)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	envPath := filepath.Join(t.TempDir(), "scraper.env")
	content := "START_URL=https://news.ycombinator.com\nHOTKEY_MODIFIER=Ctrl\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	os.Setenv(EnvFileEnvVar, envPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.EnvPath != envPath {
		t.Errorf("Expected EnvPath %q, got %q", envPath, cfg.EnvPath)
	}
	if cfg.StartURL != "https://news.ycombinator.com" {
		t.Errorf("Expected StartURL from env file, got '%s'", cfg.StartURL)
	}
	if cfg.Modifier != "Ctrl" {
		t.Errorf("Expected Modifier from env file, got '%s'", cfg.Modifier)
	}
}

func TestLoadMissingEnvFileOverride(t *testing.T) {
	clearEnv(t)

	_, err := LoadWithOptions(LoadOptions{EnvPathOverride: filepath.Join(t.TempDir(), "missing.env")})
	if err == nil {
		t.Fatal("Expected error for missing explicit env file")
	}
}
