package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/ui/theme"
	"github.com/dori/kanbo/internal/ui/views"
)

// headerHeight is the number of lines above the board
const headerHeight = 1

// SettingsApplier receives settings changed from the UI
type SettingsApplier interface {
	ApplySettings(settings model.Settings)
}

// RootModel is the main application model. It owns the chrome around the
// board: header, status line, help and theme switching.
type RootModel struct {
	session *board.Session
	applier SettingsApplier
	keys    KeyMap
	help    help.Model
	width   int
	height  int

	boardView   views.BoardView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model. applier may be nil.
func NewRootModel(session *board.Session, applier SettingsApplier) RootModel {
	h := help.New()
	h.ShowAll = false

	if t, ok := theme.ByName(session.Settings().Theme); ok {
		theme.SetTheme(t)
	}

	return RootModel{
		session:   session,
		applier:   applier,
		keys:      DefaultKeyMap(),
		help:      h,
		boardView: views.NewBoardView(session),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return m.boardView.Init()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.boardView = m.boardView.SetSize(m.width, m.contentHeight())
		return m, nil

	case tea.MouseMsg:
		if m.helpVisible {
			return m, nil
		}
		msg.Y -= headerHeight
		return m.delegate(msg)

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.boardView.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil
		}

		if isInputMode {
			break
		}

		if key.Matches(msg, m.keys.Help) {
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil
		}
		if m.helpVisible {
			if key.Matches(msg, m.keys.Cancel) {
				m.helpVisible = false
				m.help.ShowAll = false
			}
			return m, nil
		}

	case views.ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Message
		return m, nil
	}

	return m.delegate(msg)
}

func (m RootModel) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	newBoard, cmd := m.boardView.Update(msg)
	m.boardView = newBoard.(views.BoardView)
	return m, cmd
}

// contentHeight reserves the header, the status line and the hint line
func (m RootModel) contentHeight() int {
	return m.height - headerHeight - 2
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentHeight := m.contentHeight()

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.boardView.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}

	return strings.Join([]string{m.renderHeader(), content, m.renderFooter()}, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("kanbo")

	subtle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)

	identity := m.session.Identity()
	who := identity.DisplayName()
	if !m.session.Persistent() {
		who += " (demo, not saved)"
	}
	userIndicator := subtle.Render(who)
	themeIndicator := subtle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, userIndicator)
	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(themeIndicator)
	if gap < 0 {
		gap = 0
	}
	return leftSide + strings.Repeat(" ", gap) + themeIndicator
}

// renderFooter renders the status line and the short help
func (m RootModel) renderFooter() string {
	t := theme.Current.Theme

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	m.help.ShowAll = false
	return statusLine + "\n" + m.help.View(m.keys)
}

// renderHelp renders the full keybinding reference
func (m RootModel) renderHelp() string {
	styles := theme.Current.Styles

	full := m.help
	full.ShowAll = true

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("Keyboard"))
	b.WriteString("\n\n")
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(styles.PanelTitle.Render("Mouse"))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpDesc.Render("Press a card, drag it over a column and release to move it."))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpDesc.Render("Press ? or esc to close"))

	return styles.Panel.Render(b.String())
}

// cycleTheme switches to the next theme and stores it in the user's settings
func (m *RootModel) cycleTheme() {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)

	settings := m.session.Settings()
	settings.Theme = next.Name
	m.session.SetSettings(context.Background(), settings)
	if m.applier != nil {
		m.applier.ApplySettings(settings)
	}
	m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
}
