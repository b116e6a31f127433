package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Cupboard.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Remote is used by the postgrest backend only.
	Remote RemoteConfig `json:"remote" yaml:"remote"`
}

// RemoteConfig describes a PostgREST-compatible endpoint such as Supabase.
type RemoteConfig struct {
	URL     string        `json:"url" yaml:"url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Supported backend names.
const (
	BackendSQLite    = "sqlite"
	BackendPostgREST = "postgrest"
)

// DefaultRemoteTimeout bounds a single remote call when RemoteConfig.Timeout is zero.
const DefaultRemoteTimeout = 5 * time.Second

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrRemoteURLEmpty = errors.New("remote url must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:    true,
	BackendPostgREST: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendPostgREST && c.Remote.URL == "" {
		return ErrRemoteURLEmpty
	}
	return nil
}

// GetTimeout returns the per-call timeout, falling back to DefaultRemoteTimeout.
func (r RemoteConfig) GetTimeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultRemoteTimeout
	}
	return r.Timeout
}
