package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/serbaguna/internal/dispatch"
	"github.com/mesh-intelligence/serbaguna/internal/paths"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SERBAGUNA"

	cfgKeyBackend      = "backend"
	cfgKeyDataDir      = "data_dir"
	cfgKeyRemoteURL    = "remote.url"
	cfgKeyRemoteAPIKey = "remote.api_key"
	cfgKeyRemoteTO     = "remote.timeout"
	cfgKeyLogLevel     = "log.level"
	cfgKeyDispatchTO   = "dispatch.timeout"
	cfgKeyMaxInFlight  = "dispatch.max_in_flight"
	cfgKeyServeAddr    = "serve.addr"

	defaultServeAddr = "localhost:8080"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# serbaguna configuration

# Backend selection: sqlite (embedded) or postgrest (Supabase or compatible)
backend: sqlite

# Data directory for the sqlite backend (optional; --data-dir overrides)
# data_dir:

# remote:
#   url: https://<project>.supabase.co
#   api_key: <anon key>
#   timeout: 5s

log:
  level: warn

dispatch:
  timeout: 10s
  max_in_flight: 8

serve:
  addr: localhost:8080
`

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run. SERBAGUNA_* environment variables override
// file values, with dots mapped to underscores (SERBAGUNA_REMOTE_URL).
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyRemoteTO, types.DefaultRemoteTimeout)
	v.SetDefault(cfgKeyDispatchTO, 10*time.Second)
	v.SetDefault(cfgKeyMaxInFlight, 8)
	v.SetDefault(cfgKeyServeAddr, defaultServeAddr)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// backendConfig builds the Cupboard configuration. dataDirFlag wins over
// the configured data_dir.
func backendConfig(v *viper.Viper, dataDirFlag string) (types.Config, error) {
	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		Remote: types.RemoteConfig{
			URL:     v.GetString(cfgKeyRemoteURL),
			APIKey:  v.GetString(cfgKeyRemoteAPIKey),
			Timeout: v.GetDuration(cfgKeyRemoteTO),
		},
	}
	if cfg.Backend == types.BackendSQLite {
		dir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	return cfg, cfg.Validate()
}

func dispatchOptions(v *viper.Viper) dispatch.Options {
	return dispatch.Options{
		Timeout:     v.GetDuration(cfgKeyDispatchTO),
		MaxInFlight: v.GetInt(cfgKeyMaxInFlight),
	}
}
