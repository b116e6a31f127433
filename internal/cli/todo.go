package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/internal/dispatch"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

func newTodoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage the ordered todo list",
		Long: "Items are addressed by their 1-based list number or by ID.\n" +
			"Changes are applied locally and persisted in the background.",
	}
	cmd.AddCommand(
		newTodoAddCmd(a),
		newTodoListCmd(a),
		newTodoToggleCmd(a),
		newTodoDeleteCmd(a),
		newTodoMoveCmd(a),
		newTodoCompactCmd(a),
	)
	return cmd
}

func newTodoAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an item at the head of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.todos(ctx)
			if err != nil {
				return err
			}
			if err := d.Add(ctx, strings.Join(args, " ")).Wait(ctx); err != nil {
				return remoteErr("add", err)
			}
			item := d.Items()[0]
			return a.emit(cmd.OutOrStdout(), item, func(w io.Writer) {
				fmt.Fprintf(w, "added %s\n", item.ID)
			})
		},
	}
}

func newTodoListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items in position order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.todos(cmd.Context())
			if err != nil {
				return err
			}
			items := d.Items()
			return a.emit(cmd.OutOrStdout(), items, func(w io.Writer) {
				printItems(w, items)
			})
		},
	}
}

func newTodoToggleCmd(a *app) *cobra.Command {
	var done, undone bool
	cmd := &cobra.Command{
		Use:   "toggle <ref>",
		Short: "Flip an item's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.todos(ctx)
			if err != nil {
				return err
			}
			id, err := resolveRef(d.Items(), args[0])
			if err != nil {
				return err
			}
			var c *dispatch.Command
			switch {
			case done:
				c = d.SetCompleted(ctx, id, true)
			case undone:
				c = d.SetCompleted(ctx, id, false)
			default:
				c = d.Toggle(ctx, id)
			}
			item, _ := d.Get(id)
			if err := c.Wait(ctx); err != nil {
				return remoteErr("toggle", err)
			}
			return a.emit(cmd.OutOrStdout(), item, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", checkbox(item.Completed), item.Text)
			})
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "mark completed instead of toggling")
	cmd.Flags().BoolVar(&undone, "undone", false, "mark not completed instead of toggling")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")
	return cmd
}

func newTodoDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete an item; remaining positions are not compacted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.todos(ctx)
			if err != nil {
				return err
			}
			id, err := resolveRef(d.Items(), args[0])
			if err != nil {
				return err
			}
			if err := d.Delete(ctx, id).Wait(ctx); err != nil {
				return remoteErr("delete", err)
			}
			return a.emit(cmd.OutOrStdout(), map[string]string{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %s\n", id)
			})
		},
	}
}

func newTodoMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <source-ref> <dest-ref>",
		Short: "Move an item to another item's place, as a drag and drop would",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.todos(ctx)
			if err != nil {
				return err
			}
			items := d.Items()
			src, err := resolveRef(items, args[0])
			if err != nil {
				return err
			}
			dst, err := resolveRef(items, args[1])
			if err != nil {
				return err
			}
			if err := d.Reorder(ctx, src, dst).Wait(ctx); err != nil {
				return remoteErr("move", err)
			}
			return a.listAfter(cmd, d)
		},
	}
}

func newTodoCompactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Renumber positions densely without changing the order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := a.todos(ctx)
			if err != nil {
				return err
			}
			if err := d.Compact(ctx).Wait(ctx); err != nil {
				return remoteErr("compact", err)
			}
			return a.listAfter(cmd, d)
		},
	}
}

func (a *app) listAfter(cmd *cobra.Command, d *dispatch.Dispatcher) error {
	items := d.Items()
	return a.emit(cmd.OutOrStdout(), items, func(w io.Writer) {
		printItems(w, items)
	})
}

// resolveRef maps a 1-based list number or an ID to an ID.
func resolveRef(items []types.Item, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", types.ErrInvalidID
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return items[n-1].ID, nil
	}
	for _, it := range items {
		if it.ID == ref {
			return it.ID, nil
		}
	}
	return "", fmt.Errorf("%w: todo %q", types.ErrNotFound, ref)
}

func printItems(w io.Writer, items []types.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no todos")
		return
	}
	for i, it := range items {
		fmt.Fprintf(w, "%3d. %s %s  (pos %d, %s)\n", i+1, checkbox(it.Completed), it.Text, it.Position, it.ID)
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// remoteErr reports a failed background call. Local state already reflects
// the action; the store may disagree until the next listing.
func remoteErr(action string, err error) error {
	return fmt.Errorf("%s not persisted: %w", action, err)
}
