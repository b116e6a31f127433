package paths

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlatform swaps the platform hooks for the duration of a test.
func fakePlatform(t *testing.T, goos, home, userConfig string) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.goos = goos
	platformDir.homeDir = func() (string, error) { return home, nil }
	platformDir.userConfigDir = func() (string, error) { return userConfig, nil }
}

func TestDefaultDirs_Linux(t *testing.T) {
	fakePlatform(t, "linux", "/home/ana", "/unused")

	t.Run("XDG variables win", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-config/serbaguna", got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/serbaguna", got)
	})

	t.Run("home fallbacks", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("XDG_DATA_HOME", "")

		got, err := DefaultConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/ana/.config/serbaguna", got)

		got, err = DefaultDataDir()
		require.NoError(t, err)
		assert.Equal(t, "/home/ana/.local/share/serbaguna", got)
	})
}

func TestDefaultDirs_Darwin(t *testing.T) {
	fakePlatform(t, "darwin", "/Users/ana", "/Users/ana/Library/Application Support")

	cfg, err := DefaultConfigDir()
	require.NoError(t, err)
	data, err := DefaultDataDir()
	require.NoError(t, err)

	assert.Equal(t, "/Users/ana/Library/Application Support/serbaguna", cfg)
	assert.Equal(t, cfg, data)
}

func TestDefaultDirs_Error(t *testing.T) {
	fakePlatform(t, "windows", "", "")
	platformDir.userConfigDir = func() (string, error) { return "", errors.New("no APPDATA") }

	_, err := DefaultConfigDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	fakePlatform(t, "linux", "/home/ana", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string
	}{
		{"flag wins over env", "/explicit/config", "/env/config", "/explicit/config"},
		{"env wins when flag empty", "", "/env/config", "/env/config"},
		{"platform default when both empty", "", "", "/home/ana/.config/serbaguna"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDataDir(t *testing.T) {
	fakePlatform(t, "linux", "/home/ana", "")
	t.Setenv("XDG_DATA_HOME", "")

	tests := []struct {
		name       string
		flag       string
		envVal     string
		configured string
		want       string
	}{
		{"flag wins over all", "/flag/data", "/env/data", "/config/data", "/flag/data"},
		{"env wins over config file", "", "/env/data", "/config/data", "/env/data"},
		{"config file when flag and env empty", "", "", "/config/data", "/config/data"},
		{"platform default when all empty", "", "", "", "/home/ana/.local/share/serbaguna"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVal)
			got, err := ResolveDataDir(tt.flag, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	t.Setenv(EnvConfigDir, "relative/env")
	got, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)

	t.Setenv(EnvDataDir, "")
	got, err = ResolveDataDir("", "relative/config")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
}

func TestFiles(t *testing.T) {
	assert.Equal(t, filepath.Join("/cfg", "config.yaml"), ConfigFile("/cfg"))
	assert.Equal(t, filepath.Join("/cfg", "prefs.yaml"), PrefsFile("/cfg"))
}
