package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/internal/notes"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}
	cmd.AddCommand(
		newNoteAddCmd(a),
		newNoteEditCmd(a),
		newNoteListCmd(a),
		newNotePinCmd(a),
		newNoteDeleteCmd(a),
	)
	return cmd
}

// noteFlags are shared by add and edit.
type noteFlags struct {
	title    string
	content  string
	category string
	color    string
}

func (f *noteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "note title")
	cmd.Flags().StringVarP(&f.content, "content", "c", "", "note content")
	cmd.Flags().StringVar(&f.category, "category", "", "category name or ID")
	cmd.Flags().StringVar(&f.color, "color", types.DefaultNoteColor, "color as #rrggbb (presets: "+strings.Join(types.DefaultColorPresets, " ")+")")
}

// draft builds a Draft, resolving the category by name or ID.
func (f *noteFlags) draft(svc *notes.Service, id string) (notes.Draft, error) {
	d := notes.Draft{ID: id, Title: f.title, Content: f.content, Color: f.color}
	if f.category == "" {
		return d, nil
	}
	for _, c := range svc.Categories() {
		if c.ID == f.category || strings.EqualFold(c.Name, f.category) {
			d.CategoryID = &c.ID
			return d, nil
		}
	}
	return d, fmt.Errorf("%w: category %q", types.ErrNotFound, f.category)
}

func newNoteAddCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.notes(ctx)
			if err != nil {
				return err
			}
			d, err := f.draft(svc, "")
			if err != nil {
				return err
			}
			if err := svc.Save(ctx, d); err != nil {
				return err
			}
			return a.printGroups(cmd, svc)
		},
	}
	f.register(cmd)
	return cmd
}

func newNoteEditCmd(a *app) *cobra.Command {
	var f noteFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a note's title, content, category and color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.notes(ctx)
			if err != nil {
				return err
			}
			existing, ok := findNote(svc, args[0])
			if !ok {
				return fmt.Errorf("%w: note %q", types.ErrNotFound, args[0])
			}
			if !cmd.Flags().Changed("title") {
				f.title = existing.Title
			}
			if !cmd.Flags().Changed("content") {
				f.content = existing.Content
			}
			if !cmd.Flags().Changed("color") {
				f.color = existing.Color
			}
			d, err := f.draft(svc, existing.ID)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("category") {
				d.CategoryID = existing.CategoryID
			}
			if err := svc.Save(ctx, d); err != nil {
				return err
			}
			return a.printGroups(cmd, svc)
		},
	}
	f.register(cmd)
	return cmd
}

func newNoteListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes grouped by category, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.notes(cmd.Context())
			if err != nil {
				return err
			}
			return a.printGroups(cmd, svc)
		},
	}
}

func newNotePinCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle a note's pinned flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.notes(ctx)
			if err != nil {
				return err
			}
			if err := svc.TogglePin(ctx, args[0]); err != nil {
				return err
			}
			return a.printGroups(cmd, svc)
		},
	}
}

func newNoteDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.notes(ctx)
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, args[0]); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %s\n", args[0])
			})
		},
	}
}

func findNote(svc *notes.Service, id string) (types.Note, bool) {
	for _, n := range svc.Notes() {
		if n.ID == id {
			return n, true
		}
	}
	return types.Note{}, false
}

func (a *app) printGroups(cmd *cobra.Command, svc *notes.Service) error {
	groups := svc.Grouped()
	return a.emit(cmd.OutOrStdout(), groups, func(w io.Writer) {
		if len(groups) == 0 {
			fmt.Fprintln(w, "no notes")
			return
		}
		for _, g := range groups {
			fmt.Fprintf(w, "== %s ==\n", g.Name)
			for _, n := range g.Notes {
				pin := " "
				if n.Pinned {
					pin = "*"
				}
				fmt.Fprintf(w, "%s %s %s  (%s)\n", pin, n.Color, n.Title, n.ID)
				if n.Content != "" {
					fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(n.Content, "\n", "\n    "))
				}
			}
		}
	})
}

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage note categories",
	}

	add := &cobra.Command{
		Use:   "add <name...>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.notes(ctx)
			if err != nil {
				return err
			}
			cat, err := svc.AddCategory(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), cat, func(w io.Writer) {
				fmt.Fprintf(w, "added category %s (%s)\n", cat.Name, cat.ID)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.notes(cmd.Context())
			if err != nil {
				return err
			}
			cats := svc.Categories()
			return a.emit(cmd.OutOrStdout(), cats, func(w io.Writer) {
				for _, c := range cats {
					fmt.Fprintf(w, "%s  (%s)\n", c.Name, c.ID)
				}
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category no note uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.notes(ctx)
			if err != nil {
				return err
			}
			if err := svc.DeleteCategory(ctx, args[0]); err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted category %s\n", args[0])
			})
		},
	}

	cmd.AddCommand(add, list, del)
	return cmd
}
