package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/serbaguna/internal/dispatch"
	"github.com/mesh-intelligence/serbaguna/internal/logging"
	"github.com/mesh-intelligence/serbaguna/internal/notes"
	"github.com/mesh-intelligence/serbaguna/internal/paths"
	"github.com/mesh-intelligence/serbaguna/internal/prefs"
	"github.com/mesh-intelligence/serbaguna/pkg/backend"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// app carries per-invocation state shared by subcommands. The cupboard
// and dispatcher are opened lazily so commands that never touch storage
// do not need a reachable backend.
type app struct {
	flags rootFlags

	configDir string
	config    *viper.Viper
	logger    *zap.Logger

	cupboard   types.Cupboard
	dispatcher *dispatch.Dispatcher
}

func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr("resolve config dir: %w", err)
	}
	a.configDir = dir

	cfg, err := loadConfig(dir)
	if err != nil {
		return sysErr("%w", err)
	}
	a.config = cfg

	level := a.flags.logLevel
	if level == "" {
		level = cfg.GetString(cfgKeyLogLevel)
	}
	logger, err := logging.New(level, a.flags.debug)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	a.logger = logger
	return nil
}

// open attaches the configured backend.
func (a *app) open() (types.Cupboard, error) {
	if a.cupboard != nil {
		return a.cupboard, nil
	}
	cfg, err := backendConfig(a.config, a.flags.dataDir)
	if err != nil {
		return nil, err
	}
	c, err := backend.Open(cfg)
	if err != nil {
		return nil, sysErr("%w", err)
	}
	a.logger.Debug("attached backend", zap.String("backend", cfg.Backend), zap.String("data_dir", cfg.DataDir))
	a.cupboard = c
	return c, nil
}

// todos returns a dispatcher hydrated from the store.
func (a *app) todos(ctx context.Context) (*dispatch.Dispatcher, error) {
	if a.dispatcher != nil {
		return a.dispatcher, nil
	}
	c, err := a.open()
	if err != nil {
		return nil, err
	}
	store, err := c.Todos()
	if err != nil {
		return nil, sysErr("%w", err)
	}
	d := dispatch.New(store, a.logger, dispatchOptions(a.config))
	if err := d.Reload(ctx).Wait(ctx); err != nil {
		return nil, sysErr("load todos: %w", err)
	}
	a.dispatcher = d
	return d, nil
}

// notes returns a notes service refreshed from the store.
func (a *app) notes(ctx context.Context) (*notes.Service, error) {
	c, err := a.open()
	if err != nil {
		return nil, err
	}
	store, err := c.Notes()
	if err != nil {
		return nil, sysErr("%w", err)
	}
	svc := notes.New(store)
	if err := svc.Refresh(ctx); err != nil {
		return nil, sysErr("%w", err)
	}
	return svc, nil
}

func (a *app) prefs() (*prefs.Store, error) {
	s, err := prefs.Load(paths.PrefsFile(a.configDir))
	if err != nil {
		return nil, sysErr("%w", err)
	}
	return s, nil
}

// close drains outstanding remote calls and detaches the backend.
func (a *app) close() error {
	var err error
	if a.dispatcher != nil {
		err = multierr.Append(err, a.dispatcher.Drain(context.Background()))
		a.dispatcher = nil
	}
	if a.cupboard != nil {
		err = multierr.Append(err, a.cupboard.Detach())
		a.cupboard = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		return sysErr("shutdown: %w", err)
	}
	return nil
}

// emit writes v as indented JSON in --json mode, otherwise calls text.
func (a *app) emit(w io.Writer, v any, text func(io.Writer)) error {
	if a.flags.jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
