package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and initialize storage",
		Long: "Init writes a default config.yaml on first run and attaches the configured\n" +
			"backend once, which creates the sqlite database and schema.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			// Reaching the tables proves the backend is usable.
			if _, err := c.Todos(); err != nil {
				return sysErr("initialize storage: %w", err)
			}

			cfg, err := backendConfig(a.config, a.flags.dataDir)
			if err != nil {
				return err
			}
			out := map[string]string{
				"config":  paths.ConfigFile(a.configDir),
				"backend": cfg.Backend,
			}
			if cfg.DataDir != "" {
				out["data"] = cfg.DataDir
			}
			if cfg.Remote.URL != "" {
				out["remote"] = cfg.Remote.URL
			}
			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintln(w, "serbaguna initialized successfully")
				fmt.Fprintln(w, "  config: ", out["config"])
				fmt.Fprintln(w, "  backend:", out["backend"])
				if v, ok := out["data"]; ok {
					fmt.Fprintln(w, "  data:   ", v)
				}
				if v, ok := out["remote"]; ok {
					fmt.Fprintln(w, "  remote: ", v)
				}
			})
		},
	}
}
