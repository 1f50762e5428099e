package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/kanbo/internal/model"
)

// Theme defines the color scheme and styles for the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Column accents, also used for status badges
	ColumnTodo  lipgloss.Color
	ColumnDoing lipgloss.Color
	ColumnDone  lipgloss.Color
	DropTarget  lipgloss.Color
}

// StatusColor returns the accent for a column
func (t Theme) StatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusDoing:
		return t.ColumnDoing
	case model.StatusDone:
		return t.ColumnDone
	default:
		return t.ColumnTodo
	}
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	// Board
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnDrop    lipgloss.Style
	Card          lipgloss.Style
	CardFocused   lipgloss.Style
	CardDragging  lipgloss.Style
	CardDone      lipgloss.Style
	EmptyColumn   lipgloss.Style

	// Card parts
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Tag      lipgloss.Style
	Avatar   lipgloss.Style
	Counter  lipgloss.Style
	DueDate  lipgloss.Style

	// Input styles
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Placeholder  lipgloss.Style

	// Dialogs
	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	// Help styles
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	column := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	card := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Padding(0, 1)

	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		Column:        column,
		ColumnFocused: column.BorderForeground(t.Primary),
		ColumnDrop: column.
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(t.DropTarget),

		Card: card,
		CardFocused: card.
			Background(t.Highlight).
			Bold(true),
		CardDragging: card.
			Foreground(t.DropTarget).
			Background(t.Highlight).
			Italic(true),
		CardDone: card.
			Foreground(t.Subtle).
			Strikethrough(true),
		EmptyColumn: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(1, 1),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Tag: lipgloss.NewStyle().
			Foreground(t.Info),

		Avatar: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Secondary).
			Bold(true),

		Counter: lipgloss.NewStyle().
			Foreground(t.Subtle),

		DueDate: lipgloss.NewStyle().
			Foreground(t.Warning),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(1, 2),

		PanelTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),
	}
}

// TagStyle colors recommended tags with their vocabulary color
func (s Styles) TagStyle(name string) lipgloss.Style {
	if c := model.TagColor(name); c != "" {
		return s.Tag.Foreground(lipgloss.Color(c))
	}
	return s.Tag
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Names returns the names of all available themes
func Names() []string {
	var names []string
	for _, t := range Available() {
		names = append(names, t.Name)
	}
	return names
}

// Next returns the theme after name in Available order, wrapping around
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
