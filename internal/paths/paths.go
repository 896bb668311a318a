// Package paths resolves the configuration, data, cases and templates
// directories.
//
// Each directory is taken from the first source that names it:
//
//	config:    --config-dir, DOCKET_CONFIG_DIR, platform config dir
//	data:      --data-dir, data_dir in config.yaml, DOCKET_DATA_DIR, ./.docket-db
//	cases:     cases_dir in config.yaml, <data>/cases
//	templates: templates_dir in config.yaml, <config>/templates
//
// Every returned path is absolute.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "docket"

// Default directory names.
const (
	DefaultDataDirName      = ".docket-db"
	DefaultCasesDirName     = "cases"
	DefaultTemplatesDirName = "templates"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DOCKET_CONFIG_DIR"
	EnvDataDir   = "DOCKET_DATA_DIR"
)

// userConfigDir and homeDir are replaced in tests.
var (
	userConfigDir = os.UserConfigDir
	homeDir       = os.UserHomeDir
)

// Layout is the resolved set of directories docket works in.
type Layout struct {
	Config    string
	Data      string
	Cases     string
	Templates string
}

// Overrides are the values that may relocate the directories below the
// config directory. Empty fields fall through to the next source.
type Overrides struct {
	DataFlag        string // --data-dir
	DataConfig      string // data_dir
	CasesConfig     string // cases_dir
	TemplatesConfig string // templates_dir
}

// DefaultConfigDir returns the platform configuration directory:
// $XDG_CONFIG_HOME/docket or ~/.config/docket on Linux, and
// os.UserConfigDir()/docket elsewhere.
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	}
	dir, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// ResolveConfigDir returns the configuration directory. It is resolved on
// its own because config.yaml, which holds the other overrides, lives there.
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok, err := firstAbs(flag, os.Getenv(EnvConfigDir)); ok || err != nil {
		return dir, err
	}
	return DefaultConfigDir()
}

// Resolve lays out the data, cases and templates directories around an
// already resolved config directory.
func Resolve(configDir string, o Overrides) (Layout, error) {
	l := Layout{Config: configDir}

	data, ok, err := firstAbs(o.DataFlag, o.DataConfig, os.Getenv(EnvDataDir))
	if err != nil {
		return Layout{}, err
	}
	if !ok {
		cwd, err := os.Getwd()
		if err != nil {
			return Layout{}, err
		}
		data = filepath.Join(cwd, DefaultDataDirName)
	}
	l.Data = data

	if l.Cases, err = under(o.CasesConfig, l.Data, DefaultCasesDirName); err != nil {
		return Layout{}, err
	}
	if l.Templates, err = under(o.TemplatesConfig, l.Config, DefaultTemplatesDirName); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// under returns value as an absolute path, or base/name when it is empty.
func under(value, base, name string) (string, error) {
	if dir, ok, err := firstAbs(value); ok || err != nil {
		return dir, err
	}
	return filepath.Join(base, name), nil
}

// firstAbs returns the first non-empty candidate made absolute, and false
// when every candidate is empty.
func firstAbs(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		return abs, true, err
	}
	return "", false, nil
}
