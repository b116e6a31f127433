package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured store over HTTP in the PostgREST dialect",
		Long: "Serve exposes the todos, notes and categories tables under /rest/v1/,\n" +
			"so another serbaguna can use this one as its postgrest backend.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.config.GetString(cfgKeyServeAddr)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := server.New(c, a.logger).ListenAndServe(ctx, addr); err != nil {
				return sysErr("%w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: serve.addr from config)")
	return cmd
}
