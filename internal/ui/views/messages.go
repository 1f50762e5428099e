package views

import tea "github.com/charmbracelet/bubbletea"

// StatusMsg carries a short confirmation for the footer
type StatusMsg struct {
	Message string
}

// ErrorMsg carries an error for the footer
type ErrorMsg struct {
	Err error
}

func statusCmd(message string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Message: message} }
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}
