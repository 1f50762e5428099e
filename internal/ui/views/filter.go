package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/kanbo/internal/board"
	"github.com/dori/kanbo/internal/ui/theme"
)

type filterItemKind int

const (
	filterItemTag filterItemKind = iota
	filterItemAssignee
	filterItemCompleted
)

type filterItem struct {
	kind  filterItemKind
	value string
}

// FilterDialog edits a copy of the board criteria. The board only sees the
// result when the dialog is applied.
type FilterDialog struct {
	criteria board.Criteria
	items    []filterItem
	cursor   int
}

// NewFilterDialog lists the given tags and assignees as toggles
func NewFilterDialog(current board.Criteria, tags, assignees []string) FilterDialog {
	d := FilterDialog{criteria: current}
	for _, tag := range tags {
		d.items = append(d.items, filterItem{kind: filterItemTag, value: tag})
	}
	for _, a := range assignees {
		d.items = append(d.items, filterItem{kind: filterItemAssignee, value: a})
	}
	d.items = append(d.items, filterItem{kind: filterItemCompleted})
	return d
}

// Criteria returns the criteria as currently edited
func (d FilterDialog) Criteria() board.Criteria {
	return d.criteria
}

// Update handles a key while the dialog is open
func (d FilterDialog) Update(msg tea.KeyMsg) (FilterDialog, FormResult) {
	switch msg.String() {
	case "j", "down":
		if d.cursor < len(d.items)-1 {
			d.cursor++
		}
	case "k", "up":
		if d.cursor > 0 {
			d.cursor--
		}
	case " ", "x":
		d = d.toggle(d.items[d.cursor])
	case "r":
		search := d.criteria.SearchQuery
		d.criteria = board.DefaultCriteria()
		d.criteria.SearchQuery = search
	case "enter":
		return d, FormSubmitted
	case "esc", "q":
		return d, FormCancelled
	}
	return d, FormEditing
}

func (d FilterDialog) toggle(item filterItem) FilterDialog {
	switch item.kind {
	case filterItemTag:
		d.criteria = d.criteria.ToggleTag(item.value)
	case filterItemAssignee:
		d.criteria = d.criteria.ToggleAssignee(item.value)
	case filterItemCompleted:
		d.criteria.ShowCompleted = !d.criteria.ShowCompleted
	}
	return d
}

func (d FilterDialog) checked(item filterItem) bool {
	switch item.kind {
	case filterItemTag:
		return contains(d.criteria.Tags, item.value)
	case filterItemAssignee:
		return contains(d.criteria.Assignees, item.value)
	default:
		return d.criteria.ShowCompleted
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// View renders the dialog
func (d FilterDialog) View() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	titleStyle := lipgloss.NewStyle().
		Foreground(t.Primary).
		Bold(true)
	sectionStyle := lipgloss.NewStyle().
		Foreground(t.Secondary).
		Bold(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Filter tasks"))
	b.WriteString("\n")

	lastKind := filterItemKind(-1)
	for i, item := range d.items {
		if item.kind != lastKind {
			lastKind = item.kind
			switch item.kind {
			case filterItemTag:
				b.WriteString("\n" + sectionStyle.Render("Tags") + "\n")
			case filterItemAssignee:
				b.WriteString("\n" + sectionStyle.Render("Assignees") + "\n")
			case filterItemCompleted:
				b.WriteString("\n")
			}
		}

		cursor := "  "
		if i == d.cursor {
			cursor = "> "
		}
		check := "[ ]"
		if d.checked(item) {
			check = "[x]"
		}

		name := item.value
		style := lipgloss.NewStyle().Foreground(t.Foreground)
		switch item.kind {
		case filterItemTag:
			style = styles.TagStyle(item.value)
		case filterItemCompleted:
			name = "Show completed tasks"
		}
		if i == d.cursor {
			style = style.Bold(true)
		}

		b.WriteString(cursor + check + " " + style.Render(name) + "\n")
	}

	if len(d.items) == 1 {
		b.WriteString(styles.Placeholder.Render("  No tags or assignees on this board") + "\n")
	}

	hintStyle := lipgloss.NewStyle().Foreground(t.Subtle).Italic(true)
	b.WriteString("\n" + hintStyle.Render("(Space to toggle, r to reset, Enter to apply, Esc to cancel)"))

	return styles.Panel.Render(b.String())
}
