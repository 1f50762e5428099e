package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dori/kanbo/internal/app"
	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/ui"
)

func newBoardCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board",
		Args:  cobra.NoArgs,
		RunE:  rt.runBoard,
	}
}

func (rt *runtime) runBoard(cmd *cobra.Command, args []string) (err error) {
	a, err := rt.openApp(cmd, true)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	session := a.OpenBoard(cmd.Context())
	return rt.tui(cmd.Context(), a, session)
}

func runTUI(ctx context.Context, a *app.App, session *board.Session) error {
	p := tea.NewProgram(
		ui.NewRootModel(session, a),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
