package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/internal/sqlite"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// snapshotter is implemented by backends that can dump and load JSONL.
type snapshotter interface {
	ExportJSONL(ctx context.Context, dir string) error
	ImportJSONL(ctx context.Context, dir string) ([]sqlite.ImportStats, error)
}

func (a *app) snapshotter() (snapshotter, error) {
	c, err := a.open()
	if err != nil {
		return nil, err
	}
	s, ok := c.(snapshotter)
	if !ok {
		return nil, fmt.Errorf("%w: snapshots need the %s backend", errUsage, types.BackendSQLite)
	}
	return s, nil
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table as JSON Lines into dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.snapshotter()
			if err != nil {
				return err
			}
			if err := s.ExportJSONL(cmd.Context(), args[0]); err != nil {
				return sysErr("%w", err)
			}
			return a.emit(cmd.OutOrStdout(), map[string]string{"exported": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "exported to %s\n", args[0])
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSON Lines tables from dir, replacing rows with the same ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.snapshotter()
			if err != nil {
				return err
			}
			stats, err := s.ImportJSONL(cmd.Context(), args[0])
			if err != nil {
				return sysErr("%w", err)
			}
			return a.emit(cmd.OutOrStdout(), stats, func(w io.Writer) {
				for _, st := range stats {
					fmt.Fprintf(w, "%-12s loaded %d, skipped %d\n", st.Table, st.Loaded, st.Skipped)
				}
			})
		},
	}
}
