package platform

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithEnvOverrides_EnvWins(t *testing.T) {
	t.Setenv(EnvConfigDir, "/tmp/doom-config")
	t.Setenv(EnvDataDir, "/tmp/doom-data")

	d := WithEnvOverrides(Static{Config: "/a", Data: "/b"})
	cfg, err := d.ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/doom-config", cfg)

	data, err := d.DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/doom-data", data)
}

func TestWithEnvOverrides_FallsBackToBase(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvDataDir, "  ")

	d := WithEnvOverrides(Static{Config: "/a", Data: "/b"})
	cfg, err := d.ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/a", cfg)

	data, err := d.DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/b", data)
}

func TestStatic_EmptyIsError(t *testing.T) {
	_, err := Static{}.ConfigDir()
	assert.Error(t, err)
	_, err = Static{}.DataDir()
	assert.Error(t, err)
}

func TestSystem_UsesAppName(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir, err := System{}.ConfigDir()
	if err != nil {
		t.Skipf("no user config dir on this host: %v", err)
	}
	assert.Equal(t, AppName, filepath.Base(dir))
}
