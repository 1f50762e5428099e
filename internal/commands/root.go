package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dori/kanbo/internal/app"
	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errNotLoggedIn is returned by commands that would change a board nobody owns
var errNotLoggedIn = errors.New("not logged in: the demo board is not saved, run `kanbo register` or `kanbo login` first")

// runtime carries the global flags and the hooks tests replace
type runtime struct {
	configFile string
	dataDir    string
	backend    string

	// configPaths lists the files merged under --config
	configPaths func() []string
	// setup runs on every app right after it starts
	setup func(*app.App)
	// tui runs the interactive board
	tui func(ctx context.Context, a *app.App, s *board.Session) error
}

func newRuntime() *runtime {
	return &runtime{
		configPaths: func() []string {
			return []string{config.GlobalConfigPath(), config.ProjectConfigPath()}
		},
		tui: runTUI,
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the kanbo command tree
func NewRootCommand() *cobra.Command {
	return newRootCommand(newRuntime())
}

func newRootCommand(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "kanbo",
		Short: "A kanban board for the terminal",
		Long: `kanbo keeps a three-column kanban board (To Do, In Progress, Completed)
per local account. Run it without arguments to open the interactive board,
or use the subcommands to script it.`,
		Args:          cobra.NoArgs,
		RunE:          rt.runBoard,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rt.configFile, "config", "", "extra config file merged over the global and project ones")
	root.PersistentFlags().StringVar(&rt.dataDir, "data-dir", "", "override data_dir")
	root.PersistentFlags().StringVar(&rt.backend, "backend", "", "override storage.backend (sqlite, redis, memory)")

	root.AddCommand(newBoardCmd(rt))
	root.AddCommand(newAddCmd(rt))
	root.AddCommand(newListCmd(rt))
	root.AddCommand(newShowCmd(rt))
	root.AddCommand(newEditCmd(rt))
	root.AddCommand(newMoveCmd(rt))
	root.AddCommand(newRemoveCmd(rt))
	root.AddCommand(newClearCmd(rt))
	root.AddCommand(newExportCmd(rt))
	root.AddCommand(newRegisterCmd(rt))
	root.AddCommand(newLoginCmd(rt))
	root.AddCommand(newLogoutCmd(rt))
	root.AddCommand(newWhoamiCmd(rt))
	root.AddCommand(newSettingsCmd(rt))
	root.AddCommand(newConfigCmd(rt))
	root.AddCommand(newVersionCmd())

	return root
}

// loadConfig merges the config files and applies flag overrides
func (rt *runtime) loadConfig() (*config.Config, error) {
	paths := rt.configPaths()
	if rt.configFile != "" {
		if _, err := os.Stat(rt.configFile); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", rt.configFile, err)
		}
		paths = append(paths, rt.configFile)
	}
	cfg, err := config.LoadFrom(paths...)
	if err != nil {
		return nil, err
	}
	if rt.dataDir != "" {
		cfg.DataDir = rt.dataDir
	}
	if rt.backend != "" {
		cfg.Storage.Backend = rt.backend
	}
	return cfg, cfg.Validate()
}

// openApp starts the application for one command
func (rt *runtime) openApp(cmd *cobra.Command, interactive bool) (*app.App, error) {
	cfg, err := rt.loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), cfg, app.Options{
		Interactive: interactive,
		LogOutput:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	if rt.setup != nil {
		rt.setup(a)
	}
	return a, nil
}

// withApp wraps a command function with app startup and shutdown
func (rt *runtime) withApp(fn func(*cobra.Command, []string, *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := rt.openApp(cmd, false)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args, a)
	}
}

// withBoard also opens the board of whoever is logged in
func (rt *runtime) withBoard(fn func(*cobra.Command, []string, *board.Session) error) func(*cobra.Command, []string) error {
	return rt.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
		return fn(cmd, args, a.OpenBoard(cmd.Context()))
	})
}

// withOwnedBoard refuses to run on the unsaved demo board
func (rt *runtime) withOwnedBoard(fn func(*cobra.Command, []string, *board.Session) error) func(*cobra.Command, []string) error {
	return rt.withBoard(func(cmd *cobra.Command, args []string, s *board.Session) error {
		if !s.Persistent() {
			return errNotLoggedIn
		}
		return fn(cmd, args, s)
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kanbo %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
