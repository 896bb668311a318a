package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}
	home := t.TempDir()
	homeDir = func() (string, error) { return home, nil }
	t.Cleanup(func() { homeDir = os.UserHomeDir })

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	got, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-config/docket", got)

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err = DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "docket"), got)

	homeDir = func() (string, error) { return "", errors.New("no home") }
	_, err = DefaultConfigDir()
	assert.Error(t, err)
}

func TestResolveConfigDir(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "flag wins over env", flag: "/explicit/config", env: "/env/config", want: "/explicit/config"},
		{name: "env when no flag", env: "/env/config", want: "/env/config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.env)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative values become absolute", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "relative/env")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got), got)
		assert.Equal(t, "env", filepath.Base(got))
	})

	t.Run("platform default", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		got, err := ResolveConfigDir("")
		require.NoError(t, err)
		assert.Equal(t, "docket", filepath.Base(got))
	})
}

func TestResolve(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		o    Overrides
		env  string
		want Layout
	}{
		{
			name: "flag wins over config and env",
			o:    Overrides{DataFlag: "/flag/data", DataConfig: "/config/data"},
			env:  "/env/data",
			want: Layout{Data: "/flag/data", Cases: "/flag/data/cases", Templates: "/etc/docket/templates"},
		},
		{
			name: "config.yaml wins over env",
			o:    Overrides{DataConfig: "/config/data"},
			env:  "/env/data",
			want: Layout{Data: "/config/data", Cases: "/config/data/cases", Templates: "/etc/docket/templates"},
		},
		{
			name: "env when flag and config are empty",
			env:  "/env/data",
			want: Layout{Data: "/env/data", Cases: "/env/data/cases", Templates: "/etc/docket/templates"},
		},
		{
			name: "working directory by default",
			want: Layout{
				Data:      filepath.Join(cwd, DefaultDataDirName),
				Cases:     filepath.Join(cwd, DefaultDataDirName, DefaultCasesDirName),
				Templates: "/etc/docket/templates",
			},
		},
		{
			name: "cases and templates relocated",
			o:    Overrides{DataFlag: "/data", CasesConfig: "/srv/expedientes", TemplatesConfig: "/srv/plantillas"},
			want: Layout{Data: "/data", Cases: "/srv/expedientes", Templates: "/srv/plantillas"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.env)
			got, err := Resolve("/etc/docket", tt.o)
			require.NoError(t, err)
			tt.want.Config = "/etc/docket"
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("relative overrides become absolute", func(t *testing.T) {
		t.Setenv(EnvDataDir, "")
		got, err := Resolve("/etc/docket", Overrides{DataConfig: "rel/data", TemplatesConfig: "plantillas"})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "rel", "data"), got.Data)
		assert.Equal(t, filepath.Join(cwd, "plantillas"), got.Templates)
	})
}
