// Package cli implements the serbaguna command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
	debug     bool
}

// NewRootCmd creates the top-level "serbaguna" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRoot(&app{})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "serbaguna",
		Short: "Serbaguna is a personal multi-tool",
		Long: "Serbaguna keeps a reorderable todo list and categorized notes in a\n" +
			"local SQLite store or a PostgREST-compatible service such as Supabase.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory for the sqlite backend")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newTodoCmd(a),
		newNoteCmd(a),
		newCategoryCmd(a),
		newToolsCmd(a),
		newThemeCmd(a),
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns its exit code. Storage is
// released even when the command fails.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := newRoot(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// userErrors are failures caused by the invocation rather than the system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrEmptyText,
	types.ErrEmptyNote,
	types.ErrEmptyName,
	types.ErrInvalidColor,
	types.ErrCategoryInUse,
	types.ErrUnknownTool,
	types.ErrInvalidTheme,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	types.ErrRemoteURLEmpty,
	errUsage,
}

var errUsage = errors.New("usage")

var systemErrors = []error{
	types.ErrRemoteUnavailable,
	types.ErrMalformed,
	types.ErrCupboardDetached,
}

func exitCode(err error) int {
	for _, u := range userErrors {
		if errors.Is(err, u) {
			return exitUserError
		}
	}
	var sys *systemError
	if errors.As(err, &sys) {
		return exitSysError
	}
	for _, s := range systemErrors {
		if errors.Is(err, s) {
			return exitSysError
		}
	}
	// Cobra argument and flag errors are plain errors.
	return exitUserError
}

// systemError marks failures of storage, network or the filesystem.
type systemError struct{ err error }

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func sysErr(format string, args ...any) error {
	return &systemError{err: fmt.Errorf(format, args...)}
}
