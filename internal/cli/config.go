package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/docket/internal/agreement"
	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/internal/paths"
	"github.com/mesh-intelligence/docket/internal/reformulate"
	"github.com/mesh-intelligence/docket/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "DOCKET"
)

// Config keys.
const (
	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyCasesDir     = "cases_dir"
	cfgKeyTemplatesDir = "templates_dir"
	cfgKeyFirmName     = "firm.name"
	cfgKeyFirmLawyer   = "firm.lawyer"
	cfgKeyCurSingular  = "currency.singular"
	cfgKeyCurPlural    = "currency.plural"
	cfgKeyCurSuffix    = "currency.suffix"
	cfgKeyCurSymbol    = "currency.symbol"
	cfgKeyAIKey        = "ai.api_key"
	cfgKeyAIModel      = "ai.model"
	cfgKeyAITimeout    = "ai.timeout"
	cfgKeyLogLevel     = "log.level"
)

// envKeys are the keys DOCKET_* variables may set. data_dir is resolved
// by internal/paths, where config.yaml wins over DOCKET_DATA_DIR.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyCasesDir,
	cfgKeyTemplatesDir,
	cfgKeyFirmName,
	cfgKeyFirmLawyer,
	cfgKeyAIKey,
	cfgKeyAIModel,
	cfgKeyAITimeout,
	cfgKeyLogLevel,
}

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# docket configuration

backend: sqlite

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Case folders and Word templates. Relative to the data and config
# directories when empty.
# cases_dir:
# templates_dir:

firm:
  name: ""
  lawyer: ""

currency:
  singular: peso
  plural: pesos
  suffix: M.N.
  symbol: $

ai:
  # Gemini API key; DOCKET_AI_API_KEY also works.
  api_key: ""
  model: gemini-2.5-flash
  timeout: 60s

log:
  level: warn
`

// settings is the resolved configuration of one command run.
type settings struct {
	ConfigDir    string
	Backend      string
	DataDir      string
	CasesDir     string
	TemplatesDir string
	Firm         agreement.Firm
	Currency     convert.Currency
	AIKey        string
	AIModel      string
	AITimeout    time.Duration
	LogLevel     string
}

// loadConfig reads config.yaml from the config directory using Viper.
// It creates the directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyCurSingular, convert.DefaultCurrency.Singular)
	v.SetDefault(cfgKeyCurPlural, convert.DefaultCurrency.Plural)
	v.SetDefault(cfgKeyCurSuffix, convert.DefaultCurrency.Suffix)
	v.SetDefault(cfgKeyCurSymbol, convert.DefaultCurrency.Symbol)
	v.SetDefault(cfgKeyAIModel, reformulate.DefaultModel)
	v.SetDefault(cfgKeyAITimeout, reformulate.DefaultTimeout)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolveSettings applies the directory precedence rules to v.
func resolveSettings(v *viper.Viper, configDir, dataDirFlag string) (settings, error) {
	dirs, err := paths.Resolve(configDir, paths.Overrides{
		DataFlag:        dataDirFlag,
		DataConfig:      v.GetString(cfgKeyDataDir),
		CasesConfig:     v.GetString(cfgKeyCasesDir),
		TemplatesConfig: v.GetString(cfgKeyTemplatesDir),
	})
	if err != nil {
		return settings{}, fmt.Errorf("resolve directories: %w", err)
	}

	return settings{
		ConfigDir:    dirs.Config,
		Backend:      v.GetString(cfgKeyBackend),
		DataDir:      dirs.Data,
		CasesDir:     dirs.Cases,
		TemplatesDir: dirs.Templates,
		Firm: agreement.Firm{
			Name:   v.GetString(cfgKeyFirmName),
			Lawyer: v.GetString(cfgKeyFirmLawyer),
		},
		Currency: convert.Currency{
			Singular: v.GetString(cfgKeyCurSingular),
			Plural:   v.GetString(cfgKeyCurPlural),
			Suffix:   v.GetString(cfgKeyCurSuffix),
			Symbol:   v.GetString(cfgKeyCurSymbol),
		},
		AIKey:     v.GetString(cfgKeyAIKey),
		AIModel:   v.GetString(cfgKeyAIModel),
		AITimeout: v.GetDuration(cfgKeyAITimeout),
		LogLevel:  v.GetString(cfgKeyLogLevel),
	}, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o600)
}
