package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/internal/prefs"
	"github.com/mesh-intelligence/serbaguna/internal/tools"
)

func newToolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List tools and manage pinned tools",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tools, pinned first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.prefs()
			if err != nil {
				return err
			}
			pinned, others := tools.Partition(p.Get().Pinned)
			out := struct {
				Pinned []tools.Tool `json:"pinned"`
				Others []tools.Tool `json:"others"`
			}{pinned, others}
			return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				if len(pinned) > 0 {
					fmt.Fprintln(w, "Pinned:")
					printTools(w, pinned)
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, "All tools:")
				printTools(w, others)
			})
		},
	}

	cmd.AddCommand(list, newPinCmd(a, "pin", true), newPinCmd(a, "unpin", false))
	return cmd
}

func newPinCmd(a *app, use string, pin bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tool>",
		Short: fmt.Sprintf("%s a tool on the home page", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, err := tools.Lookup(args[0])
			if err != nil {
				return err
			}
			p, err := a.prefs()
			if err != nil {
				return err
			}
			if p.IsPinned(tool.Name) == pin {
				return a.emit(cmd.OutOrStdout(), p.Get(), func(w io.Writer) {
					fmt.Fprintf(w, "%s already %sned\n", tool.Name, use)
				})
			}
			if err := p.SetPinned(tool.Name, pin); err != nil {
				return sysErr("%w", err)
			}
			return a.emit(cmd.OutOrStdout(), p.Get(), func(w io.Writer) {
				fmt.Fprintf(w, "%sned %s\n", use, tool.Name)
			})
		},
	}
}

func printTools(w io.Writer, list []tools.Tool) {
	for _, t := range list {
		status := ""
		if !t.Available() {
			status = " [" + t.Status() + "]"
		}
		fmt.Fprintf(w, "  %-20s %s%s\n", t.Name, t.Description, status)
	}
}

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the light/dark theme",
	}

	show := func(cmd *cobra.Command, p *prefs.Store) error {
		theme := p.Get().Theme
		return a.emit(cmd.OutOrStdout(), map[string]string{"theme": theme}, func(w io.Writer) {
			fmt.Fprintln(w, theme)
		})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current theme",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.prefs()
				if err != nil {
					return err
				}
				return show(cmd, p)
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.prefs()
				if err != nil {
					return err
				}
				if _, err := p.ToggleTheme(); err != nil {
					return sysErr("%w", err)
				}
				return show(cmd, p)
			},
		},
		&cobra.Command{
			Use:       "set <light|dark>",
			Short:     "Set the theme",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{prefs.ThemeLight, prefs.ThemeDark},
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.prefs()
				if err != nil {
					return err
				}
				if err := p.SetTheme(args[0]); err != nil {
					return err
				}
				return show(cmd, p)
			},
		},
	)
	return cmd
}
