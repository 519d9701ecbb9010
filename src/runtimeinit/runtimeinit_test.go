package runtimeinit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interactive-scraper/src/browser"
	"interactive-scraper/src/browser/browsertest"
	"interactive-scraper/src/config"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	for _, k := range []string{"BROWSER_URL", "START_URL", "HEADLESS", "ENABLE_FILE_LOGGING", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return path
}

func TestBootstrapNavigatesToStartPage(t *testing.T) {
	env := writeEnv(t, "BROWSER_URL=http://127.0.0.1:9333\nSTART_URL=http://example.com/\n")
	page := browsertest.NewPage()
	var got browser.Options

	rt, err := Bootstrap(context.Background(), Options{
		LoadOptions: config.LoadOptions{EnvPathOverride: env},
		LogConsole:  &bytes.Buffer{},
		Connect: func(ctx context.Context, opts browser.Options) (browser.Session, error) {
			got = opts
			return page, nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9333", got.URL)
	assert.Equal(t, []string{"http://example.com/"}, page.Navigations())

	require.NoError(t, rt.Close())
	assert.True(t, page.Closed())
}

func TestBootstrapKeepsConnectError(t *testing.T) {
	env := writeEnv(t, "BROWSER_URL=http://127.0.0.1:1\n")

	_, err := Bootstrap(context.Background(), Options{
		LoadOptions: config.LoadOptions{EnvPathOverride: env},
		LogConsole:  &bytes.Buffer{},
		Connect: func(ctx context.Context, opts browser.Options) (browser.Session, error) {
			return nil, browser.ErrConnect
		},
	})
	assert.ErrorIs(t, err, browser.ErrConnect)
}

func TestBootstrapClosesSessionWhenStartPageFails(t *testing.T) {
	env := writeEnv(t, "START_URL=http://example.com/\n")
	page := browsertest.NewPage()
	boom := errors.New("net::ERR_NAME_NOT_RESOLVED")
	page.FailOn("navigate", boom)

	_, err := Bootstrap(context.Background(), Options{
		LoadOptions: config.LoadOptions{EnvPathOverride: env},
		LogConsole:  &bytes.Buffer{},
		Connect: func(ctx context.Context, opts browser.Options) (browser.Session, error) {
			return page, nil
		},
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, page.Closed())
}

func TestBootstrapMissingEnvFile(t *testing.T) {
	_, err := Bootstrap(context.Background(), Options{
		LoadOptions: config.LoadOptions{EnvPathOverride: filepath.Join(t.TempDir(), "missing.env")},
	})
	assert.Error(t, err)
}
